package tui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragnargulin/jobbigt/internal/model"
)

// noticeFadeDelay is how long an acknowledgment stays in the status bar.
const noticeFadeDelay = 4 * time.Second

// noticeMsg delivers a success/failure acknowledgment to the status bar.
type noticeMsg struct {
	text  string
	isErr bool
}

// noticeFadeMsg clears the status bar notice after a delay.
type noticeFadeMsg struct{}

// snapshotMsg wraps a record-set snapshot from the board controller
// for delivery through the bubbletea message loop.
type snapshotMsg struct {
	jobs []model.Job
}

// mutationResultMsg is sent when an asynchronous controller call
// completes. The user-visible acknowledgment already arrived through
// Notices; this message only drives view-state transitions (e.g.
// leaving the form after a successful submit).
type mutationResultMsg struct {
	err error
}

// Notices routes board.Notifier acknowledgments into the bubbletea
// program as messages. It must be created before the program; call
// SetProgram once the tea.Program exists. Acknowledgments arriving
// before SetProgram are dropped.
type Notices struct {
	program atomic.Pointer[tea.Program]
}

// NewNotices returns an unattached notifier.
func NewNotices() *Notices { return &Notices{} }

// SetProgram attaches the running program.
func (n *Notices) SetProgram(p *tea.Program) { n.program.Store(p) }

// Success implements board.Notifier.
func (n *Notices) Success(msg string) { n.send(noticeMsg{text: msg}) }

// Error implements board.Notifier.
func (n *Notices) Error(msg string) { n.send(noticeMsg{text: msg, isErr: true}) }

func (n *Notices) send(msg tea.Msg) {
	if p := n.program.Load(); p != nil {
		p.Send(msg)
	}
}

// Forward adapts a controller snapshot sink to the program's message
// loop. Wire it with ctrl.OnSnapshot(notices.Forward).
func (n *Notices) Forward(jobs []model.Job) {
	n.send(snapshotMsg{jobs: jobs})
}

// Confirm implements board.Confirmer for the TUI. The confirmation
// dialog is rendered by the model; by the time the controller asks,
// the user has already answered, and Confirm replays that answer.
type Confirm struct {
	mu      sync.Mutex
	granted bool
}

// NewConfirm returns a Confirm that answers "declined" until granted.
func NewConfirm() *Confirm { return &Confirm{} }

// Grant records the user's answer for the next ConfirmDelete.
func (c *Confirm) Grant(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.granted = v
}

// ConfirmDelete implements board.Confirmer.
func (c *Confirm) ConfirmDelete(model.Job) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.granted
}
