package httpapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ragnargulin/jobbigt/internal/model"
)

// snapshotBuffer bounds how many undelivered snapshots a slow SSE
// client may queue. On overflow the oldest queued snapshot is dropped:
// every snapshot is a full record set, so the newest supersedes
// everything before it and must be the one that survives.
const snapshotBuffer = 32

// enqueueSnapshot queues jobs for delivery without blocking the
// publisher. When the buffer is full it evicts the oldest queued
// snapshot, so the latest state is always eventually delivered even to
// a client that stalls through many changes. Reports whether anything
// was evicted.
func enqueueSnapshot(snapshots chan []model.Job, jobs []model.Job) (dropped bool) {
	for {
		select {
		case snapshots <- jobs:
			return dropped
		default:
		}
		select {
		case <-snapshots:
			dropped = true
		default:
		}
	}
}

// streamJobs handles GET /jobs/stream: a Server-Sent Events stream
// that pushes the caller's full record set once immediately and again
// after every change, mirroring the embedded client's subscription
// contract.
func (h *Handler) streamJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	snapshots := make(chan []model.Job, snapshotBuffer)
	unsubscribe, err := h.gw.Subscribe(r.Context(), userID, func(jobs []model.Job) {
		if enqueueSnapshot(snapshots, jobs) {
			log.Printf("[board] stream backlog full for user %s — dropped oldest snapshot", userID)
		}
	})
	if err != nil {
		writeGatewayError(w, "streamJobs", err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case jobs := <-snapshots:
			out := make([]jobJSON, 0, len(jobs))
			for _, j := range jobs {
				out = append(out, toJSON(j))
			}
			payload, err := json.Marshal(out)
			if err != nil {
				log.Printf("[board] stream marshal error: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
