// Package httpapi implements the HTTP surface of the board service for
// clients that do not embed the board core directly.
//
// All routes expect an x-user-id header forwarded by the gateway proxy
// after token verification.
//
// Routes:
//
//	POST   /jobs               → create a job record
//	PUT    /jobs/{id}          → replace a record's editable fields
//	POST   /jobs/{id}/move     → change a record's status
//	DELETE /jobs/{id}          → delete a record
//	GET    /jobs/stream        → SSE stream of record-set snapshots
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ragnargulin/jobbigt/internal/gateway"
	"github.com/ragnargulin/jobbigt/internal/model"
)

// Gateway is the store surface the handlers need: the sync contract
// plus the ownership lookup used as the per-request security rule.
type Gateway interface {
	gateway.Store
	Owner(ctx context.Context, jobID string) (string, error)
}

// ─── Wire types ──────────────────────────────────────────────────────────────

// jobJSON is the JSON shape of a record. Optional fields are omitted
// when absent, never sent as empty strings.
type jobJSON struct {
	ID              string    `json:"id"`
	Company         string    `json:"company"`
	Position        string    `json:"position"`
	Location        *string   `json:"location,omitempty"`
	Salary          *string   `json:"salary,omitempty"`
	Description     *string   `json:"description,omitempty"`
	ApplicationDate *string   `json:"applicationDate,omitempty"`
	ContactPerson   *string   `json:"contactPerson,omitempty"`
	ContactEmail    *string   `json:"contactEmail,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// fieldsJSON is the editable subset accepted on create and update.
type fieldsJSON struct {
	Company         string  `json:"company"`
	Position        string  `json:"position"`
	Location        *string `json:"location"`
	Salary          *string `json:"salary"`
	Description     *string `json:"description"`
	ApplicationDate *string `json:"applicationDate"`
	ContactPerson   *string `json:"contactPerson"`
	ContactEmail    *string `json:"contactEmail"`
	Notes           *string `json:"notes"`
	Status          string  `json:"status"`
}

func (f fieldsJSON) toModel() model.Fields {
	return model.Fields{
		Company:         f.Company,
		Position:        f.Position,
		Location:        f.Location,
		Salary:          f.Salary,
		Description:     f.Description,
		ApplicationDate: f.ApplicationDate,
		ContactPerson:   f.ContactPerson,
		ContactEmail:    f.ContactEmail,
		Notes:           f.Notes,
		Status:          model.Status(f.Status),
	}
}

func toJSON(j model.Job) jobJSON {
	return jobJSON{
		ID:              j.ID,
		Company:         j.Company,
		Position:        j.Position,
		Location:        j.Location,
		Salary:          j.Salary,
		Description:     j.Description,
		ApplicationDate: j.ApplicationDate,
		ContactPerson:   j.ContactPerson,
		ContactEmail:    j.ContactEmail,
		Notes:           j.Notes,
		Status:          string(j.Status),
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	gw Gateway
}

// NewHandler returns a configured Handler.
func NewHandler(gw Gateway) *Handler {
	return &Handler{gw: gw}
}

// RegisterRoutes mounts all board routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJobAction)
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

// handleJobs handles POST /jobs.
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.createJob(w, r)
}

// handleJobAction handles /jobs/{id}, /jobs/{id}/move and /jobs/stream.
func (h *Handler) handleJobAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2 && parts[1] == "stream" && r.Method == http.MethodGet:
		h.streamJobs(w, r)
	case len(parts) == 2 && r.Method == http.MethodPut:
		h.updateJob(w, r, parts[1])
	case len(parts) == 2 && r.Method == http.MethodDelete:
		h.deleteJob(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "move" && r.Method == http.MethodPost:
		h.moveJob(w, r, parts[1])
	default:
		jsonError(w, "not found", http.StatusNotFound)
	}
}

// ─── Individual handlers ─────────────────────────────────────────────────────

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body fieldsJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	id, err := h.gw.Create(r.Context(), userID, body.toModel())
	if err != nil {
		writeGatewayError(w, "createJob", err)
		return
	}
	jsonStatus(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request, jobID string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, r, userID, jobID) {
		return
	}

	var body fieldsJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.gw.Update(r.Context(), jobID, body.toModel()); err != nil {
		writeGatewayError(w, "updateJob", err)
		return
	}
	jsonOK(w, map[string]string{"id": jobID})
}

func (h *Handler) moveJob(w http.ResponseWriter, r *http.Request, jobID string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, r, userID, jobID) {
		return
	}

	var body struct {
		NewStatus string `json:"newStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
		jsonError(w, "body must contain newStatus", http.StatusBadRequest)
		return
	}

	status, err := model.ParseStatus(body.NewStatus)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.gw.UpdateStatus(r.Context(), jobID, status); err != nil {
		writeGatewayError(w, "moveJob", err)
		return
	}
	jsonOK(w, map[string]string{"id": jobID, "status": string(status)})
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request, jobID string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.authorize(w, r, userID, jobID) {
		return
	}

	if err := h.gw.Delete(r.Context(), jobID); err != nil {
		writeGatewayError(w, "deleteJob", err)
		return
	}
	jsonOK(w, map[string]string{"id": jobID})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// authorize enforces the ownership rule: a caller may only address its
// own records. A record owned by someone else reads as "not found" so
// the API does not leak record existence across users.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, userID, jobID string) bool {
	owner, err := h.gw.Owner(r.Context(), jobID)
	if err != nil {
		writeGatewayError(w, "authorize", err)
		return false
	}
	if owner != userID {
		jsonError(w, "job not found", http.StatusNotFound)
		return false
	}
	return true
}

func writeGatewayError(w http.ResponseWriter, op string, err error) {
	var ve *gateway.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, gateway.ErrNotFound):
		jsonError(w, "job not found", http.StatusNotFound)
	case errors.Is(err, gateway.ErrRemoteUnavailable):
		log.Printf("[board] %s: %v", op, err)
		jsonError(w, "store unavailable", http.StatusBadGateway)
	default:
		log.Printf("[board] %s: %v", op, err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
