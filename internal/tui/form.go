package tui

import (
	"strings"

	"backoffice-cli/internal/resource"
	"backoffice-cli/internal/validate"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formState is the create/edit modal: one input per schema field, built from
// the resource registry. Values and per-field errors survive a failed submit
// so the operator can fix in place.
type formState struct {
	res    resource.Resource
	editID string // empty => create

	fields []resource.Field
	inputs []textinput.Model
	// optIdx tracks the selected option of select fields (-1 = none).
	optIdx []int

	focus int // index into fields; len(fields) = save, len+1 = cancel
	errs  map[string]string
}

func newFormState(res resource.Resource, editID string, initial map[string]string) *formState {
	f := &formState{
		res:    res,
		editID: editID,
		errs:   map[string]string{},
	}
	for _, fld := range res.Fields {
		if fld.CreateOnly && editID != "" {
			continue
		}
		f.fields = append(f.fields, fld)

		in := textinput.New()
		in.Placeholder = fld.Label
		in.CharLimit = 200
		in.Width = 40
		if fld.Kind == resource.FieldTextarea || fld.Kind == resource.FieldMarkdown {
			in.CharLimit = 0
		}
		if fld.Kind == resource.FieldPassword {
			in.EchoMode = textinput.EchoPassword
		}
		if v, ok := initial[fld.Key]; ok {
			in.SetValue(v)
		}
		f.inputs = append(f.inputs, in)

		idx := -1
		if fld.Kind == resource.FieldSelect {
			for i, opt := range fld.Options {
				if opt == initial[fld.Key] {
					idx = i
				}
			}
		}
		f.optIdx = append(f.optIdx, idx)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *formState) creating() bool { return f.editID == "" }

// values returns the current form content. On edit, untouched empty fields
// are omitted so the server leaves them unchanged.
func (f *formState) values() map[string]string {
	out := map[string]string{}
	for i, fld := range f.fields {
		var v string
		if fld.Kind == resource.FieldSelect {
			if f.optIdx[i] >= 0 && f.optIdx[i] < len(fld.Options) {
				v = fld.Options[f.optIdx[i]]
			}
		} else {
			v = f.inputs[i].Value()
		}
		if !f.creating() && strings.TrimSpace(v) == "" {
			continue
		}
		out[fld.Key] = v
	}
	return out
}

func (f *formState) setErrors(errs []validate.FieldError) {
	f.errs = map[string]string{}
	for _, e := range errs {
		if _, dup := f.errs[e.Field]; !dup {
			f.errs[e.Field] = e.Message
		}
	}
	// Move focus to the first offending field.
	for i, fld := range f.fields {
		if _, bad := f.errs[fld.Key]; bad {
			f.setFocus(i)
			return
		}
	}
}

func (f *formState) onSave() bool   { return f.focus == len(f.fields) }
func (f *formState) onCancel() bool { return f.focus == len(f.fields)+1 }

func (f *formState) setFocus(i int) {
	max := len(f.fields) + 1
	if i < 0 {
		i = max
	}
	if i > max {
		i = 0
	}
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *formState) focusNext() { f.setFocus(f.focus + 1) }
func (f *formState) focusPrev() { f.setFocus(f.focus - 1) }

// cycleOption moves the focused select field's choice by delta. Returns false
// when the focused field is not a select.
func (f *formState) cycleOption(delta int) bool {
	if f.focus >= len(f.fields) {
		return false
	}
	fld := f.fields[f.focus]
	if fld.Kind != resource.FieldSelect || len(fld.Options) == 0 {
		return false
	}
	n := len(fld.Options)
	f.optIdx[f.focus] = ((f.optIdx[f.focus]+delta)%n + n) % n
	return true
}

func (f *formState) update(msg tea.Msg) tea.Cmd {
	if f.focus >= len(f.fields) {
		return nil
	}
	if f.fields[f.focus].Kind == resource.FieldSelect {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *formState) title() string {
	singular := strings.TrimSuffix(f.res.Title, "s")
	if f.creating() {
		return "New " + singular
	}
	return "Edit " + singular
}

// render draws the form modal. serverErr (e.g. a 409 duplicate message) is
// shown verbatim above the fields; values stay in place so the operator can
// fix and retry.
func (f *formState) render(width int, serverErr string) string {
	bodyW := modalBodyWidth(width)
	labelStyle := lipgloss.NewStyle().Foreground(colorChromeMutedFg)
	focusedLabelStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(colorErrorFg)

	var b strings.Builder
	if strings.TrimSpace(serverErr) != "" {
		b.WriteString(errStyle.Width(bodyW).Render(serverErr))
		b.WriteString("\n\n")
	}
	for i, fld := range f.fields {
		label := fld.Label
		if fld.Required && f.creating() {
			label += " *"
		}
		if i == f.focus {
			b.WriteString(focusedLabelStyle.Render(label))
		} else {
			b.WriteString(labelStyle.Render(label))
		}
		b.WriteString("\n")

		if fld.Kind == resource.FieldSelect {
			val := "(none)"
			if f.optIdx[i] >= 0 && f.optIdx[i] < len(fld.Options) {
				val = fld.Options[f.optIdx[i]]
			}
			line := "  " + val + "  "
			if i == f.focus {
				line = "‹ " + val + " ›"
				line = lipgloss.NewStyle().
					Foreground(colorSelectedFg).
					Background(colorSelectedBg).
					Render(line)
			}
			b.WriteString(line)
		} else {
			b.WriteString(renderInputLine(bodyW, f.inputs[i].View()))
		}
		b.WriteString("\n")

		if msg, bad := f.errs[fld.Key]; bad {
			b.WriteString(errStyle.Render(fld.Label + " " + msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	save := btnBase.Render("Save")
	cancel := btnBase.Render("Cancel")
	if f.onSave() {
		save = btnActive.Render("Save")
	}
	if f.onCancel() {
		cancel = btnActive.Render("Cancel")
	}
	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, save, sep, cancel))
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Width(bodyW).Render("tab: next field   ←/→: change option   enter: save   esc: cancel"))

	return renderModalBox(width, f.title(), b.String())
}
