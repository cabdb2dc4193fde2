// Package model defines the job-application record and its status
// vocabulary. It is pure data: every other package type-checks against
// the shapes here.
//
// Status pipeline (display order, not a transition graph — any status
// may move to any other):
//
//	interesting → applied → interview → offer → rejected
package model

import (
	"fmt"
	"time"
)

// Status values mirror the job_status enum in PostgreSQL.
type Status string

const (
	StatusInteresting Status = "interesting"
	StatusApplied     Status = "applied"
	StatusInterview   Status = "interview"
	StatusOffer       Status = "offer"
	StatusRejected    Status = "rejected"
)

// Statuses lists every status in board display order.
var Statuses = []Status{
	StatusInteresting,
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusInteresting, StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// ─── Job record ──────────────────────────────────────────────────────────────

// Job is one job-application record. Optional text fields use *string:
// nil means "not provided" and is never rendered; the gateway normalizes
// SQL NULL and absent form input to nil so the rest of the system only
// ever sees one convention.
type Job struct {
	ID              string
	Company         string
	Position        string
	Location        *string
	Salary          *string
	Description     *string
	ApplicationDate *string
	ContactPerson   *string
	ContactEmail    *string
	Notes           *string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Fields carries the user-editable subset of a Job: everything except
// ID and the server-assigned timestamps.
type Fields struct {
	Company         string
	Position        string
	Location        *string
	Salary          *string
	Description     *string
	ApplicationDate *string
	ContactPerson   *string
	ContactEmail    *string
	Notes           *string
	Status          Status
}

// ─── Columns ─────────────────────────────────────────────────────────────────

// Column describes one board column. Columns are a derived partition of
// the record set keyed by Status; they carry display metadata only.
type Column struct {
	ID    Status
	Title string
	Color string
}

// Columns is the fixed ordered set of five board columns. Titles match
// the product UI language.
var Columns = []Column{
	{ID: StatusInteresting, Title: "Intressant", Color: "#2b7fff"},
	{ID: StatusApplied, Title: "Sökt", Color: "#10b981"},
	{ID: StatusInterview, Title: "Intervju", Color: "#f59e0b"},
	{ID: StatusOffer, Title: "Erbjudande", Color: "#8b5cf6"},
	{ID: StatusRejected, Title: "Nekad", Color: "#ef4444"},
}

// GroupByStatus partitions jobs into per-status groups, preserving the
// relative order of the input slice. Every status in Statuses gets an
// entry, empty when no job matches, so the result is always a complete
// partition of the input.
func GroupByStatus(jobs []Job) map[Status][]Job {
	groups := make(map[Status][]Job, len(Statuses))
	for _, s := range Statuses {
		groups[s] = []Job{}
	}
	for _, j := range jobs {
		groups[j.Status] = append(groups[j.Status], j)
	}
	return groups
}
