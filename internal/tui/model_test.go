package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragnargulin/jobbigt/internal/board"
	"github.com/ragnargulin/jobbigt/internal/model"
	"github.com/ragnargulin/jobbigt/internal/session"
)

// ─── Fake store ──────────────────────────────────────────────────────────────

type statusCall struct {
	jobID  string
	status model.Status
}

type fakeStore struct {
	jobs   []model.Job
	nextID int

	created     []model.Fields
	statusCalls []statusCall
	deleted     []string

	onChange func([]model.Job)
}

func (f *fakeStore) Create(_ context.Context, _ string, fields model.Fields) (string, error) {
	f.nextID++
	id := fmt.Sprintf("job-%d", f.nextID)
	f.created = append(f.created, fields)
	f.jobs = append(f.jobs, model.Job{
		ID:       id,
		Company:  fields.Company,
		Position: fields.Position,
		Status:   fields.Status,
	})
	f.broadcast()
	return id, nil
}

func (f *fakeStore) Update(_ context.Context, jobID string, fields model.Fields) error {
	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs[i].Company = fields.Company
			f.jobs[i].Position = fields.Position
			f.jobs[i].Status = fields.Status
			f.broadcast()
			return nil
		}
	}
	return fmt.Errorf("update: no job %s", jobID)
}

func (f *fakeStore) UpdateStatus(_ context.Context, jobID string, status model.Status) error {
	f.statusCalls = append(f.statusCalls, statusCall{jobID: jobID, status: status})
	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs[i].Status = status
			f.broadcast()
			return nil
		}
	}
	return fmt.Errorf("move: no job %s", jobID)
}

func (f *fakeStore) Delete(_ context.Context, jobID string) error {
	f.deleted = append(f.deleted, jobID)
	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			f.broadcast()
			return nil
		}
	}
	return fmt.Errorf("delete: no job %s", jobID)
}

func (f *fakeStore) Subscribe(_ context.Context, _ string, onChange func([]model.Job)) (func(), error) {
	f.onChange = onChange
	onChange(f.snapshot())
	return func() { f.onChange = nil }, nil
}

func (f *fakeStore) snapshot() []model.Job {
	out := make([]model.Job, len(f.jobs))
	copy(out, f.jobs)
	return out
}

func (f *fakeStore) broadcast() {
	if f.onChange != nil {
		f.onChange(f.snapshot())
	}
}

// ─── Harness ─────────────────────────────────────────────────────────────────

// harness runs the model without a tea.Program: commands execute inline
// and only this package's own messages are fed back, so cursor blink
// ticks never stall a test.
type harness struct {
	t      *testing.T
	m      Model
	store  *fakeStore
	latest []model.Job
}

func newHarness(t *testing.T, seed ...model.Job) *harness {
	t.Helper()
	store := &fakeStore{jobs: seed}
	confirm := NewConfirm()
	ctrl := board.NewController(store, NewNotices(), confirm)
	h := &harness{t: t, store: store}
	ctrl.OnSnapshot(func(jobs []model.Job) { h.latest = jobs })

	prov := &session.Static{ID: &session.Identity{UID: "u1", Email: "u1@example.com"}}
	h.m = NewModel(ctrl, prov, confirm, NewTheme(true))

	h.feed(h.m.Init()())
	h.sync()
	return h
}

// feed runs messages through Update, executing returned commands inline.
func (h *harness) feed(msgs ...tea.Msg) {
	h.t.Helper()
	for _, msg := range msgs {
		next, cmd := h.m.Update(msg)
		h.m = next.(Model)
		for cmd != nil {
			out := cmd()
			switch out.(type) {
			case mutationResultMsg, snapshotMsg, noticeFadeMsg:
				next, cmd = h.m.Update(out)
				h.m = next.(Model)
			default:
				cmd = nil
			}
		}
	}
}

// sync delivers the controller's latest snapshot to the model, standing
// in for the Notices forwarder that a live program would use.
func (h *harness) sync() {
	h.feed(snapshotMsg{jobs: h.latest})
}

func (h *harness) keys(seq ...tea.KeyMsg) {
	for _, k := range seq {
		h.feed(k)
		h.sync()
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func seedJob(id, company string, status model.Status) model.Job {
	return model.Job{ID: id, Company: company, Position: "Utvecklare", Status: status}
}

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestGrabAndDropMovesCard(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	h.keys(keySpace, runes("l"), keySpace)

	if len(h.store.statusCalls) != 1 {
		t.Fatalf("status calls = %d, want 1", len(h.store.statusCalls))
	}
	got := h.store.statusCalls[0]
	if got.jobID != "job-1" || got.status != model.StatusApplied {
		t.Fatalf("move = %+v, want job-1 to applied", got)
	}
	if n := len(h.m.groups[model.StatusApplied]); n != 1 {
		t.Fatalf("applied column has %d cards after move, want 1", n)
	}
	if h.m.engine.Dragging() != "" {
		t.Fatalf("engine still dragging %q after drop", h.m.engine.Dragging())
	}
}

func TestCancelAbandonsDrag(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	h.keys(keySpace, keyEsc, runes("l"), keySpace)

	if len(h.store.statusCalls) != 0 {
		t.Fatalf("status calls = %d, want 0 after cancelled drag", len(h.store.statusCalls))
	}
}

func TestGrabOnEmptyColumnIsNoop(t *testing.T) {
	h := newHarness(t)

	h.keys(keySpace, keySpace)

	if len(h.store.statusCalls) != 0 {
		t.Fatalf("status calls = %d, want 0", len(h.store.statusCalls))
	}
}

func TestCollapseHidesCards(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	h.keys(runes("c"))
	if view := h.m.View(); strings.Contains(view, "Acme") {
		t.Fatalf("collapsed column still shows its card:\n%s", view)
	}

	h.keys(runes("c"))
	if view := h.m.View(); !strings.Contains(view, "Acme") {
		t.Fatalf("re-expanded column lost its card:\n%s", view)
	}
}

func TestCollapsedColumnStillAcceptsDrop(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	// Collapse the target column, then drop on it.
	h.keys(runes("l"), runes("c"), runes("h"), keySpace, runes("l"), keySpace)

	if len(h.store.statusCalls) != 1 || h.store.statusCalls[0].status != model.StatusApplied {
		t.Fatalf("drop on collapsed column not committed: %+v", h.store.statusCalls)
	}
}

func TestDeleteDeclinedKeepsRecord(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	h.keys(runes("d"))
	if view := h.m.View(); !strings.Contains(view, "Ta bort") {
		t.Fatalf("expected confirmation dialog, got:\n%s", view)
	}

	h.keys(runes("n"))
	if len(h.store.deleted) != 0 {
		t.Fatalf("deleted = %v, want none after declining", h.store.deleted)
	}
	if len(h.store.jobs) != 1 {
		t.Fatalf("store has %d jobs, want 1", len(h.store.jobs))
	}
}

func TestDeleteConfirmedRemovesRecord(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	h.keys(runes("d"), runes("y"))

	if len(h.store.deleted) != 1 || h.store.deleted[0] != "job-1" {
		t.Fatalf("deleted = %v, want [job-1]", h.store.deleted)
	}
	if view := h.m.View(); strings.Contains(view, "Acme") {
		t.Fatalf("deleted card still rendered:\n%s", view)
	}
}

func TestFormCreatesRecord(t *testing.T) {
	h := newHarness(t)

	h.keys(runes("n"))
	if view := h.m.View(); !strings.Contains(view, "Ny ansökan") {
		t.Fatalf("expected create form, got:\n%s", view)
	}

	h.keys(runes("Acme"), keyTab, runes("Utvecklare"), keyEnter)

	if len(h.store.created) != 1 {
		t.Fatalf("created = %d records, want 1", len(h.store.created))
	}
	got := h.store.created[0]
	if got.Company != "Acme" || got.Position != "Utvecklare" || got.Status != model.StatusInteresting {
		t.Fatalf("created fields = %+v", got)
	}
	if h.m.mode != modeBoard {
		t.Fatalf("mode = %d after successful submit, want board", h.m.mode)
	}
}

func TestFormValidationKeepsFormOpen(t *testing.T) {
	h := newHarness(t)

	// Submit with company and position empty.
	h.keys(runes("n"), keyEnter)

	if len(h.store.created) != 0 {
		t.Fatalf("created = %d records, want 0", len(h.store.created))
	}
	if h.m.mode != modeForm {
		t.Fatalf("mode = %d after failed submit, want form", h.m.mode)
	}
}

func TestFormEscCancels(t *testing.T) {
	h := newHarness(t)

	h.keys(runes("n"), keyEsc)

	if h.m.mode != modeBoard {
		t.Fatalf("mode = %d after esc, want board", h.m.mode)
	}
	if len(h.store.created) != 0 {
		t.Fatalf("created = %d records, want 0", len(h.store.created))
	}
}

func TestEditPrefillsAndUpdates(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	h.keys(runes("e"))
	if view := h.m.View(); !strings.Contains(view, "Redigera ansökan") {
		t.Fatalf("expected edit form, got:\n%s", view)
	}
	if got := h.m.form.inputs[fieldCompany].Value(); got != "Acme" {
		t.Fatalf("company prefill = %q, want Acme", got)
	}

	h.keys(runes(" AB"), keyEnter)

	if len(h.store.jobs) != 1 || h.store.jobs[0].Company != "Acme AB" {
		t.Fatalf("store after edit = %+v", h.store.jobs)
	}
	if h.m.mode != modeBoard {
		t.Fatalf("mode = %d after successful edit, want board", h.m.mode)
	}
}

func TestLogoutTearsDownSubscription(t *testing.T) {
	h := newHarness(t, seedJob("job-1", "Acme", model.StatusInteresting))

	h.feed(runes("L"))

	if h.store.onChange != nil {
		t.Fatal("subscription still live after logout")
	}
}
