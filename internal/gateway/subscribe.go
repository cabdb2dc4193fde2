package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ragnargulin/jobbigt/internal/model"
)

// Subscribe opens a live per-owner channel. The initial snapshot is
// delivered synchronously before Subscribe returns; afterwards a
// background goroutine re-queries and delivers a fresh snapshot for
// every change event on the owner's Redis channel, in receipt order.
//
// The returned function tears the channel down. It is synchronous: once
// it returns, onChange will not be invoked again, even if a delivery
// was in flight. Calling it more than once is harmless.
//
// If the pub/sub stream itself fails, delivery simply stops; the
// subscriber keeps whatever snapshot it saw last. There is no automatic
// resubscribe loop.
func (s *Service) Subscribe(ctx context.Context, ownerID string, onChange func([]model.Job)) (func(), error) {
	sub := s.rdb.Subscribe(ctx, changeChannel(ownerID))
	// Force the SUBSCRIBE handshake so a dead broker fails here, not
	// silently in the background.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, mapRowErr(err, "subscribe")
	}

	jobs, err := s.listJobs(ctx, ownerID)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	var mu sync.Mutex
	closed := false
	deliver := func(snapshot []model.Job) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		onChange(snapshot)
	}

	deliver(jobs)

	ch := sub.Channel()
	go func() {
		for range ch {
			snapshot, err := s.listJobs(ctx, ownerID)
			if err != nil {
				// Keep the last-known snapshot visible rather than
				// delivering nothing.
				slog.Warn("snapshot refresh failed", "owner", ownerID, "err", err)
				continue
			}
			deliver(snapshot)
		}
	}()

	cancel := func() {
		mu.Lock()
		closed = true
		mu.Unlock()
		// Closing the PubSub closes ch and ends the goroutine.
		_ = sub.Close()
	}
	return cancel, nil
}
