// Package janitor wires up the cron job that purges records owned by
// expired guest accounts. The auth service mints guest UIDs with a
// "guest-" prefix; a guest record untouched for the retention window
// belongs to a session nobody can resume, so it is deleted.
package janitor

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// Janitor wraps robfig/cron and manages the purge loop.
type Janitor struct {
	cron          *cron.Cron
	pool          *pgxpool.Pool
	retentionDays int
	spec          string // cron spec, e.g. "@every 24h"
}

// New creates a Janitor that fires every intervalHours hours and purges
// guest records older than retentionDays days.
func New(pool *pgxpool.Pool, retentionDays, intervalHours int) *Janitor {
	return &Janitor{
		cron:          cron.New(cron.WithLogger(cron.DefaultLogger)),
		pool:          pool,
		retentionDays: retentionDays,
		spec:          fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one purge
// immediately so a long interval does not delay the first sweep.
func (j *Janitor) Start(ctx context.Context) error {
	_, err := j.cron.AddFunc(j.spec, func() {
		j.runPurge(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	j.cron.Start()
	log.Printf("[janitor] Cron started — spec: %s, retention: %dd", j.spec, j.retentionDays)

	// Run immediately on startup (non-blocking)
	go j.runPurge(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (j *Janitor) Stop() {
	j.cron.Stop()
	log.Println("[janitor] Cron stopped")
}

// runPurge deletes stale guest-owned records in one statement.
func (j *Janitor) runPurge(ctx context.Context) {
	tag, err := j.pool.Exec(ctx,
		`DELETE FROM jobs
		 WHERE user_id LIKE 'guest-%'
		   AND updated_at < NOW() - make_interval(days => $1)`,
		j.retentionDays,
	)
	if err != nil {
		log.Printf("[janitor] purge error: %v", err)
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		log.Printf("[janitor] purged %d stale guest record(s)", n)
	}
}
