// Package kanban is the board interaction model: the drag lifecycle
// and the per-column collapse state. It is independent of remote state
// and of the input mechanism — pointer events and keyboard move
// commands drive the same three transitions.
//
// Drag state machine:
//
//	Idle ──DragStart(id)──► Dragging(id) ──DropOn(column)──► Idle  (emits move)
//	                        Dragging(id) ──DragEnd──────────► Idle  (no effect)
package kanban

import (
	"context"

	"github.com/ragnargulin/jobbigt/internal/model"
)

// MoveSink receives the move intent emitted by a committed drop. The
// board controller implements it.
type MoveSink interface {
	RequestMove(ctx context.Context, jobID string, status model.Status) error
}

// Engine tracks one drag interaction and the collapsed-column set.
// Interactions are single-pointer, so at most one record is ever
// dragging; a new DragStart silently abandons the previous drag.
type Engine struct {
	sink      MoveSink
	dragging  string
	collapsed map[model.Status]bool
}

// NewEngine returns an idle engine with all columns expanded.
func NewEngine(sink MoveSink) *Engine {
	return &Engine{sink: sink, collapsed: make(map[model.Status]bool)}
}

// ─── Drag lifecycle ──────────────────────────────────────────────────────────

// DragStart picks up a record. Starting a new drag while one is active
// overwrites the tracked id.
func (e *Engine) DragStart(jobID string) {
	e.dragging = jobID
}

// Dragging returns the id of the record being dragged, or "" when idle.
func (e *Engine) Dragging() string {
	return e.dragging
}

// DropOn commits the drag onto a column and returns to idle. Dropping a
// record onto its current column is permitted: the emitted move is
// idempotent per (id, status) pair, so nothing special-cases it. A drop
// while idle does nothing.
func (e *Engine) DropOn(ctx context.Context, status model.Status) error {
	if e.dragging == "" {
		return nil
	}
	id := e.dragging
	e.dragging = ""
	return e.sink.RequestMove(ctx, id, status)
}

// DragEnd abandons the drag without a drop, e.g. the drag left every
// valid target.
func (e *Engine) DragEnd() {
	e.dragging = ""
}

// ─── Collapse state ──────────────────────────────────────────────────────────

// ToggleColumn flips the collapsed state of one column. Collapse is
// purely presentational: a collapsed column remains a valid drop target
// and its records keep their status.
func (e *Engine) ToggleColumn(id model.Status) {
	if e.collapsed[id] {
		delete(e.collapsed, id)
	} else {
		e.collapsed[id] = true
	}
}

// Expanded reports whether a column's cards are shown.
func (e *Engine) Expanded(id model.Status) bool {
	return !e.collapsed[id]
}
