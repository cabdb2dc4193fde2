package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragnargulin/jobbigt/internal/model"
)

// Field indices in the form, in tab order. The status selector comes
// last and is cycled with left/right instead of typed.
const (
	fieldCompany = iota
	fieldPosition
	fieldLocation
	fieldSalary
	fieldDescription
	fieldDate
	fieldContactPerson
	fieldContactEmail
	fieldNotes
	fieldStatus
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Företag *",
	"Tjänst *",
	"Plats",
	"Lön",
	"Beskrivning",
	"Ansökningsdatum",
	"Kontaktperson",
	"Kontaktmail",
	"Anteckningar",
	"Status *",
}

// form is the create/edit overlay. editing is true when the form was
// opened on an existing record.
type form struct {
	inputs    [fieldStatus]textinput.Model
	statusIdx int
	focus     int
	editing   bool
}

func newForm(target *model.Job) form {
	var f form
	for i := range f.inputs {
		in := textinput.New()
		in.CharLimit = 200
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[fieldCompany].Focus()

	if target != nil {
		f.editing = true
		f.inputs[fieldCompany].SetValue(target.Company)
		f.inputs[fieldPosition].SetValue(target.Position)
		f.inputs[fieldLocation].SetValue(deref(target.Location))
		f.inputs[fieldSalary].SetValue(deref(target.Salary))
		f.inputs[fieldDescription].SetValue(deref(target.Description))
		f.inputs[fieldDate].SetValue(deref(target.ApplicationDate))
		f.inputs[fieldContactPerson].SetValue(deref(target.ContactPerson))
		f.inputs[fieldContactEmail].SetValue(deref(target.ContactEmail))
		f.inputs[fieldNotes].SetValue(deref(target.Notes))
		for i, s := range model.Statuses {
			if s == target.Status {
				f.statusIdx = i
			}
		}
	}
	return f
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// next moves focus forward (wrapping); prev moves it back.
func (f *form) next() { f.setFocus((f.focus + 1) % fieldCount) }
func (f *form) prev() { f.setFocus((f.focus + fieldCount - 1) % fieldCount) }

func (f *form) setFocus(idx int) {
	if f.focus < fieldStatus {
		f.inputs[f.focus].Blur()
	}
	f.focus = idx
	if f.focus < fieldStatus {
		f.inputs[f.focus].Focus()
	}
}

// cycleStatus steps the status selector by delta, wrapping.
func (f *form) cycleStatus(delta int) {
	n := len(model.Statuses)
	f.statusIdx = (f.statusIdx + delta + n) % n
}

// update routes a key or blink message into the focused text input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if f.focus >= fieldStatus {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// fields assembles the editable field set from the form's inputs.
// Blank optionals become nil; the gateway normalizes again on its side.
func (f *form) fields() model.Fields {
	opt := func(idx int) *string {
		v := strings.TrimSpace(f.inputs[idx].Value())
		if v == "" {
			return nil
		}
		return &v
	}
	return model.Fields{
		Company:         strings.TrimSpace(f.inputs[fieldCompany].Value()),
		Position:        strings.TrimSpace(f.inputs[fieldPosition].Value()),
		Location:        opt(fieldLocation),
		Salary:          opt(fieldSalary),
		Description:     opt(fieldDescription),
		ApplicationDate: opt(fieldDate),
		ContactPerson:   opt(fieldContactPerson),
		ContactEmail:    opt(fieldContactEmail),
		Notes:           opt(fieldNotes),
		Status:          model.Statuses[f.statusIdx],
	}
}

// view renders the form.
func (f *form) view(t Theme) string {
	var b strings.Builder
	if f.editing {
		b.WriteString(t.Title.Render("Redigera ansökan"))
	} else {
		b.WriteString(t.Title.Render("Ny ansökan"))
	}
	b.WriteString("\n\n")

	for i := 0; i < fieldStatus; i++ {
		b.WriteString(t.FormLabel.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString(t.FormLabel.Render(fieldLabels[fieldStatus]))
	b.WriteString("\n")
	status := model.Columns[f.statusIdx].Title
	if f.focus == fieldStatus {
		b.WriteString(t.Title.Render("‹ " + status + " ›"))
	} else {
		b.WriteString("  " + status)
	}
	b.WriteString("\n\n")
	b.WriteString(t.Help.Render("tab/↓ nästa · shift+tab/↑ föregående · enter spara · esc avbryt"))
	return b.String()
}
