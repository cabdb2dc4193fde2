package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ragnargulin/jobbigt/internal/model"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service implements Store against PostgreSQL (persistence, server
// clocks) and Redis (change notification). It has no dependency on any
// transport or UI layer.
type Service struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool, rdb *redis.Client) *Service {
	return &Service{pool: pool, rdb: rdb}
}

const jobColumns = `id, company, position, location, salary, description,
	application_date, contact_person, contact_email, notes,
	current_status, created_at, updated_at`

// ─── Mutations ───────────────────────────────────────────────────────────────

// Create inserts a new job for ownerID. The database assigns id,
// created_at and updated_at; both timestamps come from the same NOW()
// so they are equal on a fresh record.
func (s *Service) Create(ctx context.Context, ownerID string, fields model.Fields) (string, error) {
	if err := ValidateFields(fields); err != nil {
		return "", err
	}
	f := Normalize(fields)

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (user_id, company, position, location, salary, description,
		                   application_date, contact_person, contact_email, notes, current_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::job_status)
		 RETURNING id`,
		ownerID, f.Company, f.Position, f.Location, f.Salary, f.Description,
		f.ApplicationDate, f.ContactPerson, f.ContactEmail, f.Notes, string(f.Status),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%w: create: %v", ErrRemoteUnavailable, err)
	}

	s.notify(ctx, ownerID, "EVENT_JOB_CREATED", id)
	return id, nil
}

// Update replaces the editable field set of a job and refreshes
// updated_at.
func (s *Service) Update(ctx context.Context, jobID string, fields model.Fields) error {
	if err := ValidateFields(fields); err != nil {
		return err
	}
	f := Normalize(fields)

	var ownerID string
	err := s.pool.QueryRow(ctx,
		`UPDATE jobs
		 SET company = $1, position = $2, location = $3, salary = $4,
		     description = $5, application_date = $6, contact_person = $7,
		     contact_email = $8, notes = $9, current_status = $10::job_status,
		     updated_at = NOW()
		 WHERE id = $11
		 RETURNING user_id`,
		f.Company, f.Position, f.Location, f.Salary, f.Description,
		f.ApplicationDate, f.ContactPerson, f.ContactEmail, f.Notes,
		string(f.Status), jobID,
	).Scan(&ownerID)
	if err != nil {
		return mapRowErr(err, "update")
	}

	s.notify(ctx, ownerID, "EVENT_JOB_UPDATED", jobID)
	return nil
}

// UpdateStatus is the constrained form of Update used by drag-drop: it
// only ever changes current_status and updated_at.
func (s *Service) UpdateStatus(ctx context.Context, jobID string, status model.Status) error {
	if _, err := model.ParseStatus(string(status)); err != nil {
		return &ValidationError{Msg: err.Error()}
	}

	var ownerID string
	err := s.pool.QueryRow(ctx,
		`UPDATE jobs
		 SET current_status = $1::job_status, updated_at = NOW()
		 WHERE id = $2
		 RETURNING user_id`,
		string(status), jobID,
	).Scan(&ownerID)
	if err != nil {
		return mapRowErr(err, "updateStatus")
	}

	s.notify(ctx, ownerID, "EVENT_JOB_MOVED", jobID)
	return nil
}

// Delete removes a job permanently.
func (s *Service) Delete(ctx context.Context, jobID string) error {
	var ownerID string
	err := s.pool.QueryRow(ctx,
		`DELETE FROM jobs WHERE id = $1 RETURNING user_id`,
		jobID,
	).Scan(&ownerID)
	if err != nil {
		return mapRowErr(err, "delete")
	}

	s.notify(ctx, ownerID, "EVENT_JOB_DELETED", jobID)
	return nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// listJobs returns the full record set for one owner, oldest first.
// Only the subscription path calls this: list data never reaches
// consumers except through a snapshot delivery.
func (s *Service) listJobs(ctx context.Context, ownerID string) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listJobs query: %v", ErrRemoteUnavailable, err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		var j model.Job
		var status string
		if err := rows.Scan(
			&j.ID, &j.Company, &j.Position, &j.Location, &j.Salary,
			&j.Description, &j.ApplicationDate, &j.ContactPerson,
			&j.ContactEmail, &j.Notes, &status, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: listJobs scan: %v", ErrRemoteUnavailable, err)
		}
		j.Status = model.Status(status)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listJobs rows: %v", ErrRemoteUnavailable, err)
	}
	return jobs, nil
}

// Owner returns the owning user id of a job. The HTTP surface uses it
// as its security rule: a caller may only address jobs it owns. The
// embedded client core never needs it — its gateway is already scoped
// to one identity.
func (s *Service) Owner(ctx context.Context, jobID string) (string, error) {
	var ownerID string
	err := s.pool.QueryRow(ctx,
		`SELECT user_id FROM jobs WHERE id = $1`,
		jobID,
	).Scan(&ownerID)
	if err != nil {
		return "", mapRowErr(err, "owner")
	}
	return ownerID, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// notify publishes a change event on the owner's channel. Subscribers
// re-query on receipt, so the payload is informational only. Non-fatal:
// a lost publish means a delayed snapshot, not lost data.
func (s *Service) notify(ctx context.Context, ownerID, eventType, jobID string) {
	event, _ := json.Marshal(map[string]string{
		"type":   eventType,
		"jobId":  jobID,
		"userId": ownerID,
	})
	if err := s.rdb.Publish(ctx, changeChannel(ownerID), event).Err(); err != nil {
		slog.Warn("publish change event failed", "type", eventType, "jobId", jobID, "err", err)
	}
}

// changeChannel names the per-owner Redis pub/sub channel.
func changeChannel(ownerID string) string {
	return "jobs.changed." + ownerID
}

// mapRowErr translates a QueryRow scan error from a single-row mutation
// into the gateway taxonomy.
func mapRowErr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, op, err)
}
