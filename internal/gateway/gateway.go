// Package gateway is the single place where remote reads and writes
// happen. All mutation is addressed by job id only, and all reads reach
// the rest of the system exclusively through the subscription push
// channel: consumers never trust a local copy as ground truth past the
// initial render.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragnargulin/jobbigt/internal/model"
)

// Store is the remote sync contract. Service implements it against
// PostgreSQL and Redis; tests substitute fakes.
type Store interface {
	// Create persists a new job owned by ownerID and returns its
	// server-assigned id. The server assigns createdAt and updatedAt.
	Create(ctx context.Context, ownerID string, fields model.Fields) (string, error)

	// Update replaces the editable field set of an existing job and
	// refreshes updatedAt. Id and timestamps are never caller-supplied.
	Update(ctx context.Context, jobID string, fields model.Fields) error

	// UpdateStatus changes only status and updatedAt.
	UpdateStatus(ctx context.Context, jobID string, status model.Status) error

	// Delete removes the job permanently.
	Delete(ctx context.Context, jobID string) error

	// Subscribe opens a live channel scoped to ownerID. onChange is
	// invoked once immediately with the current matching set and again
	// after every change to that set, in delivery order. A set with no
	// matching jobs is an empty slice, not an error. The returned
	// function terminates the channel; after it returns, onChange is
	// never invoked again.
	Subscribe(ctx context.Context, ownerID string, onChange func([]model.Job)) (func(), error)
}

// ─── Errors ──────────────────────────────────────────────────────────────────

// ErrNotFound is returned when a job is missing, e.g. deleted in
// another session.
var ErrNotFound = fmt.Errorf("job not found")

// ErrRemoteUnavailable is returned when the persistence layer cannot be
// reached. The operation is not retried automatically.
var ErrRemoteUnavailable = fmt.Errorf("remote store unavailable")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ─── Validation and normalization ────────────────────────────────────────────

// ValidateFields checks the caller-correctable constraints on a field
// set: company and position non-empty, status a known value.
func ValidateFields(f model.Fields) error {
	if strings.TrimSpace(f.Company) == "" {
		return &ValidationError{Msg: "company is required"}
	}
	if strings.TrimSpace(f.Position) == "" {
		return &ValidationError{Msg: "position is required"}
	}
	if _, err := model.ParseStatus(string(f.Status)); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	return nil
}

// Normalize collapses the two "not provided" spellings of an optional
// field (nil pointer, empty or blank string) into nil, so only one
// convention crosses the gateway boundary.
func Normalize(f model.Fields) model.Fields {
	f.Company = strings.TrimSpace(f.Company)
	f.Position = strings.TrimSpace(f.Position)
	f.Location = optional(f.Location)
	f.Salary = optional(f.Salary)
	f.Description = optional(f.Description)
	f.ApplicationDate = optional(f.ApplicationDate)
	f.ContactPerson = optional(f.ContactPerson)
	f.ContactEmail = optional(f.ContactEmail)
	f.Notes = optional(f.Notes)
	return f
}

func optional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
