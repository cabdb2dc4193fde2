// Package board holds the live record list for the signed-in user and
// translates user intents into gateway calls. It never mutates the
// list itself: every change is proposed to the gateway and observed
// back through the subscription channel, so the board can never show a
// client-side phantom state.
package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ragnargulin/jobbigt/internal/gateway"
	"github.com/ragnargulin/jobbigt/internal/model"
)

// Notifier receives the brief user-visible acknowledgments for
// successes and failures. Failures never block further interaction.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Confirmer answers the explicit confirmation step required before a
// delete. A declined confirmation is a no-op, not an error.
type Confirmer interface {
	ConfirmDelete(job model.Job) bool
}

// Controller owns the record list for one session.
type Controller struct {
	store   gateway.Store
	notify  Notifier
	confirm Confirmer

	mu          sync.Mutex
	ownerID     string
	unsubscribe func()
	records     []model.Job
	editTarget  *model.Job
	formVisible bool
	onSnapshot  func([]model.Job)
}

// NewController returns a controller with no identity and no records.
func NewController(store gateway.Store, notify Notifier, confirm Confirmer) *Controller {
	return &Controller{store: store, notify: notify, confirm: confirm}
}

// OnSnapshot registers a sink invoked after every applied snapshot,
// with a copy of the new record list. UIs use it to schedule a redraw.
// Must be set before the first SetIdentity.
func (c *Controller) OnSnapshot(fn func([]model.Job)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSnapshot = fn
}

// ─── Identity and subscription ───────────────────────────────────────────────

// SetIdentity reacts to an identity change. A non-empty ownerID opens
// exactly one subscription scoped to it; empty means logout. In both
// cases any previous subscription is torn down first, so at most one
// subscription is live at any time and no record of the previous owner
// survives the switch.
func (c *Controller) SetIdentity(ctx context.Context, ownerID string) error {
	c.mu.Lock()
	if c.ownerID == ownerID && (ownerID == "" || c.unsubscribe != nil) {
		c.mu.Unlock()
		return nil
	}
	prev := c.unsubscribe
	c.unsubscribe = nil
	c.ownerID = ownerID
	c.records = nil
	c.editTarget = nil
	c.formVisible = false
	c.mu.Unlock()

	// Teardown outside the lock: the old subscription may be delivering
	// a snapshot right now, and its delivery path takes c.mu.
	if prev != nil {
		prev()
	}
	if ownerID == "" {
		c.publishSnapshot()
		return nil
	}

	unsub, err := c.store.Subscribe(ctx, ownerID, func(jobs []model.Job) {
		c.applySnapshot(ownerID, jobs)
	})
	if err != nil {
		// Leave whatever was last visible; do not resubscribe in a loop.
		slog.Warn("subscribe failed", "owner", ownerID, "err", err)
		c.notify.Error("Kunde inte öppna liveuppdatering")
		return err
	}

	c.mu.Lock()
	if c.ownerID != ownerID {
		// Identity changed again while we were subscribing.
		c.mu.Unlock()
		unsub()
		return nil
	}
	c.unsubscribe = unsub
	c.mu.Unlock()
	return nil
}

// applySnapshot replaces the record list with one delivered snapshot.
// Snapshots are applied in delivery order, never reordered or coalesced.
func (c *Controller) applySnapshot(ownerID string, jobs []model.Job) {
	c.mu.Lock()
	if c.ownerID != ownerID {
		c.mu.Unlock()
		return
	}
	c.records = jobs
	c.mu.Unlock()
	c.publishSnapshot()
}

func (c *Controller) publishSnapshot() {
	c.mu.Lock()
	fn := c.onSnapshot
	snapshot := append([]model.Job(nil), c.records...)
	c.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// Close tears down the active subscription, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	prev := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// ─── Accessors ───────────────────────────────────────────────────────────────

// Records returns a copy of the current record list in delivery order.
func (c *Controller) Records() []model.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Job(nil), c.records...)
}

// EditTarget returns the record open in the edit form, or nil when the
// form is in "new record" mode or closed.
func (c *Controller) EditTarget() *model.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editTarget == nil {
		return nil
	}
	j := *c.editTarget
	return &j
}

// FormVisible reports whether the create/edit form is open.
func (c *Controller) FormVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formVisible
}

// OpenNew opens the form in "new record" mode.
func (c *Controller) OpenNew() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editTarget = nil
	c.formVisible = true
}

// OpenEdit opens the form pre-filled with an existing record.
func (c *Controller) OpenEdit(job model.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	j := job
	c.editTarget = &j
	c.formVisible = true
}

// CloseForm closes the form and clears the edit target.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editTarget = nil
	c.formVisible = false
}

// ─── Intents ─────────────────────────────────────────────────────────────────

// SubmitNew validates and creates a record. On failure the form stays
// open so the user's input is not lost.
func (c *Controller) SubmitNew(ctx context.Context, fields model.Fields) error {
	c.mu.Lock()
	ownerID := c.ownerID
	c.mu.Unlock()
	if ownerID == "" {
		c.notify.Error("Du är inte inloggad")
		return errors.New("no identity")
	}

	// Pre-validate before hitting the gateway; the gateway validates
	// again on its own side.
	if err := gateway.ValidateFields(fields); err != nil {
		c.notify.Error(friendly(err))
		return err
	}

	if _, err := c.store.Create(ctx, ownerID, fields); err != nil {
		c.notify.Error(friendly(err))
		return err
	}
	c.CloseForm()
	c.notify.Success("Ansökan sparad")
	return nil
}

// SubmitEdit validates and updates the record open in the edit form.
func (c *Controller) SubmitEdit(ctx context.Context, fields model.Fields) error {
	c.mu.Lock()
	target := c.editTarget
	c.mu.Unlock()
	if target == nil {
		c.notify.Error("Ingen ansökan vald")
		return errors.New("no edit target")
	}

	if err := gateway.ValidateFields(fields); err != nil {
		c.notify.Error(friendly(err))
		return err
	}

	if err := c.store.Update(ctx, target.ID, fields); err != nil {
		c.notify.Error(friendly(err))
		return err
	}
	c.CloseForm()
	c.notify.Success("Ansökan uppdaterad")
	return nil
}

// RequestDelete deletes a record after explicit confirmation.
func (c *Controller) RequestDelete(ctx context.Context, jobID string) error {
	job, ok := c.find(jobID)
	if !ok {
		c.notify.Error("Ansökan finns inte längre")
		return gateway.ErrNotFound
	}
	if !c.confirm.ConfirmDelete(job) {
		return nil
	}

	if err := c.store.Delete(ctx, jobID); err != nil {
		c.notify.Error(friendly(err))
		return err
	}
	c.notify.Success("Ansökan borttagen")
	return nil
}

// RequestMove proposes a status change, typically from a drag-drop.
// No confirmation: the move is reversible and low-cost. No local state
// is rolled back on failure because none was mutated; the board simply
// keeps showing the last authoritative snapshot.
func (c *Controller) RequestMove(ctx context.Context, jobID string, status model.Status) error {
	if err := c.store.UpdateStatus(ctx, jobID, status); err != nil {
		c.notify.Error(friendly(err))
		return err
	}
	c.notify.Success("Ansökan flyttad")
	return nil
}

func (c *Controller) find(jobID string) (model.Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, j := range c.records {
		if j.ID == jobID {
			return j, true
		}
	}
	return model.Job{}, false
}

// friendly maps the gateway error taxonomy to a short user-facing
// notice.
func friendly(err error) string {
	var ve *gateway.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.Is(err, gateway.ErrNotFound):
		return "Ansökan finns inte längre"
	case errors.Is(err, gateway.ErrRemoteUnavailable):
		return "Kunde inte nå servern — försök igen"
	default:
		return "Något gick fel — försök igen"
	}
}
