package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragnargulin/jobbigt/internal/board"
	"github.com/ragnargulin/jobbigt/internal/kanban"
	"github.com/ragnargulin/jobbigt/internal/model"
	"github.com/ragnargulin/jobbigt/internal/session"
)

type mode int

const (
	modeBoard mode = iota
	modeForm
	modeConfirm
)

// moveIntent is written by the drag engine's sink when a drop commits.
// The engine call itself stays synchronous inside Update; the recorded
// intent is then executed as a tea.Cmd so the remote round trip never
// blocks the event loop.
type moveIntent struct {
	jobID  string
	status model.Status
	set    bool
}

type moveSinkFunc func(ctx context.Context, jobID string, status model.Status) error

func (f moveSinkFunc) RequestMove(ctx context.Context, jobID string, status model.Status) error {
	return f(ctx, jobID, status)
}

// Model is the bubbletea model for the kanban board.
type Model struct {
	ctrl     *board.Controller
	engine   *kanban.Engine
	provider session.Provider
	confirm  *Confirm
	theme    Theme
	keys     KeyMap

	jobs   []model.Job
	groups map[model.Status][]model.Job

	col    int
	cursor []int

	mode      mode
	form      form
	confirmID string
	intent    *moveIntent

	notice    string
	noticeErr bool

	width  int
	height int
}

// NewModel wires the board controller and a fresh drag engine into a
// bubbletea model. The engine's sink records the drop as an intent;
// Update turns it into an asynchronous controller call.
func NewModel(ctrl *board.Controller, provider session.Provider, confirm *Confirm, theme Theme) Model {
	intent := &moveIntent{}
	engine := kanban.NewEngine(moveSinkFunc(func(_ context.Context, jobID string, status model.Status) error {
		*intent = moveIntent{jobID: jobID, status: status, set: true}
		return nil
	}))
	return Model{
		ctrl:     ctrl,
		engine:   engine,
		provider: provider,
		confirm:  confirm,
		theme:    theme,
		keys:     DefaultKeyMap,
		groups:   model.GroupByStatus(nil),
		cursor:   make([]int, len(model.Statuses)),
		intent:   intent,
	}
}

// Init starts the record-set subscription for the current identity.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		id, _ := m.provider.Current()
		uid := ""
		if id != nil {
			uid = id.UID
		}
		return mutationResultMsg{err: m.ctrl.SetIdentity(context.Background(), uid)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case snapshotMsg:
		m.jobs = msg.jobs
		m.groups = model.GroupByStatus(msg.jobs)
		m.clampCursors()
		return m, nil

	case noticeMsg:
		m.notice, m.noticeErr = msg.text, msg.isErr
		return m, tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
			return noticeFadeMsg{}
		})

	case noticeFadeMsg:
		m.notice = ""
		return m, nil

	case mutationResultMsg:
		if msg.err == nil && m.mode == modeForm && !m.ctrl.FormVisible() {
			m.mode = modeBoard
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBoard(msg)
		}
	}

	if m.mode == modeForm {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.col < len(model.Statuses)-1 {
			m.col++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.col] > 0 {
			m.cursor[m.col]--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor[m.col] < len(m.groups[m.focusStatus()])-1 {
			m.cursor[m.col]++
		}
		return m, nil

	case key.Matches(msg, m.keys.Grab):
		if m.engine.Dragging() == "" {
			if job, ok := m.currentJob(); ok {
				m.engine.DragStart(job.ID)
			}
			return m, nil
		}
		return m, m.commitDrop()

	case key.Matches(msg, m.keys.Cancel):
		m.engine.DragEnd()
		return m, nil

	case key.Matches(msg, m.keys.Collapse):
		m.engine.ToggleColumn(m.focusStatus())
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.ctrl.OpenNew()
		m.form = newForm(nil)
		m.mode = modeForm
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		job, ok := m.currentJob()
		if !ok {
			return m, nil
		}
		m.ctrl.OpenEdit(job)
		m.form = newForm(m.ctrl.EditTarget())
		m.mode = modeForm
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		job, ok := m.currentJob()
		if !ok {
			return m, nil
		}
		m.confirmID = job.ID
		m.mode = modeConfirm
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		ctrl, provider := m.ctrl, m.provider
		return m, func() tea.Msg {
			ctx := context.Background()
			provider.Logout(ctx)
			ctrl.SetIdentity(ctx, "")
			return tea.Quit()
		}
	}
	return m, nil
}

// commitDrop finishes an active drag on the focused column and turns
// the recorded intent into an asynchronous move request.
func (m *Model) commitDrop() tea.Cmd {
	m.engine.DropOn(context.Background(), m.focusStatus())
	if !m.intent.set {
		return nil
	}
	jobID, status := m.intent.jobID, m.intent.status
	m.intent.set = false
	ctrl := m.ctrl
	return func() tea.Msg {
		return mutationResultMsg{err: ctrl.RequestMove(context.Background(), jobID, status)}
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.CloseForm()
		m.mode = modeBoard
		return m, nil

	case "tab", "down":
		m.form.next()
		return m, textinput.Blink

	case "shift+tab", "up":
		m.form.prev()
		return m, textinput.Blink

	case "left", "right":
		if m.form.focus == fieldStatus {
			if msg.String() == "left" {
				m.form.cycleStatus(-1)
			} else {
				m.form.cycleStatus(1)
			}
			return m, nil
		}

	case "enter":
		fields := m.form.fields()
		ctrl, editing := m.ctrl, m.form.editing
		return m, func() tea.Msg {
			ctx := context.Background()
			if editing {
				return mutationResultMsg{err: ctrl.SubmitEdit(ctx, fields)}
			}
			return mutationResultMsg{err: ctrl.SubmitNew(ctx, fields)}
		}
	}
	return m, m.form.update(msg)
}

// updateConfirm answers the delete dialog. Both verdicts go through the
// controller: a declined confirmation is a controller no-op, not a
// skipped call.
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var granted bool
	switch msg.String() {
	case "y":
		granted = true
	case "n", "esc":
		granted = false
	default:
		return m, nil
	}
	m.confirm.Grant(granted)
	m.mode = modeBoard
	jobID := m.confirmID
	m.confirmID = ""
	ctrl := m.ctrl
	return m, func() tea.Msg {
		return mutationResultMsg{err: ctrl.RequestDelete(context.Background(), jobID)}
	}
}

func (m Model) focusStatus() model.Status {
	return model.Statuses[m.col]
}

func (m Model) currentJob() (model.Job, bool) {
	jobs := m.groups[m.focusStatus()]
	i := m.cursor[m.col]
	if i < 0 || i >= len(jobs) {
		return model.Job{}, false
	}
	return jobs[i], true
}

func (m *Model) clampCursors() {
	for i, st := range model.Statuses {
		max := len(m.groups[st]) - 1
		if m.cursor[i] > max {
			m.cursor[i] = max
		}
		if m.cursor[i] < 0 {
			m.cursor[i] = 0
		}
	}
}

func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.theme.Overlay.Render(m.form.view(m.theme))
	case modeConfirm:
		prompt := "Ta bort ansökan?"
		for _, j := range m.jobs {
			if j.ID == m.confirmID {
				prompt = fmt.Sprintf("Ta bort %s hos %s?", j.Position, j.Company)
			}
		}
		return m.theme.Overlay.Render(prompt + "\n\n" + m.theme.Help.Render("y ta bort · n avbryt"))
	}
	return m.viewBoard()
}

func (m Model) viewBoard() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Jobbigt"))
	if id, _ := m.provider.Current(); id != nil {
		who := id.Email
		if id.Anonymous {
			who = "gäst"
		}
		b.WriteString("  " + m.theme.Header.Render(who))
	}
	b.WriteString("\n\n")

	cols := make([]string, 0, len(model.Columns))
	for i, col := range model.Columns {
		cols = append(cols, m.viewColumn(i, col))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")

	switch {
	case m.notice != "" && m.noticeErr:
		b.WriteString(m.theme.NoticeErr.Render(m.notice))
	case m.notice != "":
		b.WriteString(m.theme.NoticeOK.Render(m.notice))
	case m.engine.Dragging() != "":
		b.WriteString(m.theme.Help.Render("space släpp · esc avbryt flytt"))
	default:
		b.WriteString(m.theme.Help.Render("h/l kolumn · j/k kort · space grepp · n ny · e redigera · d ta bort · c fäll ihop · L logga ut · q avsluta"))
	}
	return b.String()
}

func (m Model) viewColumn(idx int, col model.Column) string {
	focused := idx == m.col
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(col.Color)).Render(col.Title)
	jobs := m.groups[col.ID]
	count := m.theme.ColumnCount.Render(fmt.Sprintf("(%d)", len(jobs)))
	header := title + " " + count
	if focused {
		header = "» " + header
	}

	if !m.engine.Expanded(col.ID) {
		return m.theme.Column.Render(header + " ▸")
	}

	parts := []string{header}
	for i, job := range jobs {
		style := m.theme.Card
		switch {
		case m.engine.Dragging() == job.ID:
			style = m.theme.CardCarrying
		case focused && i == m.cursor[idx]:
			style = m.theme.CardFocused
		}
		body := m.theme.Title.Render(job.Company) + "\n" + job.Position
		if job.Location != nil {
			body += "\n" + m.theme.Header.Render(*job.Location)
		}
		parts = append(parts, style.Render(body))
	}
	return m.theme.Column.Render(strings.Join(parts, "\n"))
}
