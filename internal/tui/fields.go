package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field is a labelled single-line input.
type field struct {
	key   string // matches auth.FieldErrors keys
	label string
	input textinput.Model
}

// fieldSet is a vertical stack of inputs with one focused.
type fieldSet struct {
	fields []field
	focus  int
	errors map[string]string
}

func newField(key, label, placeholder string, secret bool) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = 256
	in.Width = 40
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return field{key: key, label: label, input: in}
}

func newFieldSet(fields ...field) fieldSet {
	fs := fieldSet{fields: fields, errors: map[string]string{}}
	fs.setFocus(0)
	return fs
}

func (fs *fieldSet) setFocus(i int) tea.Cmd {
	if len(fs.fields) == 0 {
		return nil
	}
	fs.focus = (i + len(fs.fields)) % len(fs.fields)
	var cmd tea.Cmd
	for j := range fs.fields {
		if j == fs.focus {
			cmd = fs.fields[j].input.Focus()
		} else {
			fs.fields[j].input.Blur()
		}
	}
	return cmd
}

func (fs *fieldSet) next() tea.Cmd { return fs.setFocus(fs.focus + 1) }
func (fs *fieldSet) prev() tea.Cmd { return fs.setFocus(fs.focus - 1) }

// update forwards a message to the focused input.
func (fs *fieldSet) update(msg tea.Msg) tea.Cmd {
	if len(fs.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	fs.fields[fs.focus].input, cmd = fs.fields[fs.focus].input.Update(msg)
	return cmd
}

func (fs *fieldSet) value(key string) string {
	for _, f := range fs.fields {
		if f.key == key {
			return f.input.Value()
		}
	}
	return ""
}

func (fs *fieldSet) set(key, value string) {
	for i := range fs.fields {
		if fs.fields[i].key == key {
			fs.fields[i].input.SetValue(value)
			fs.fields[i].input.CursorEnd()
		}
	}
}

func (fs *fieldSet) focused() string {
	if len(fs.fields) == 0 {
		return ""
	}
	return fs.fields[fs.focus].key
}

func (fs *fieldSet) clearErrors() {
	fs.errors = map[string]string{}
}

func (fs *fieldSet) reset() {
	for i := range fs.fields {
		fs.fields[i].input.Reset()
	}
	fs.clearErrors()
	fs.setFocus(0)
}

func (fs fieldSet) render(st styles) string {
	var b strings.Builder
	for i, f := range fs.fields {
		label := st.faint.Render(f.label)
		if i == fs.focus {
			label = st.active.Render(f.label)
		}
		b.WriteString(label + "\n")
		b.WriteString("  " + f.input.View() + "\n")
		if msg := fs.errors[f.key]; msg != "" {
			b.WriteString("  " + st.fieldErr.Render(msg) + "\n")
		}
	}
	return b.String()
}
