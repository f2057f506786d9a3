package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"roadfix/internal/notify"
)

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenRegister:
		body = m.viewRegister()
	default:
		body = m.viewDashboard()
	}

	toasts := m.viewToasts(m.svc.Notes.List())
	if toasts == "" {
		return body
	}
	return toasts + "\n" + body
}

// viewToasts renders live notifications newest last, one per line.
func (m Model) viewToasts(list []notify.Notification) string {
	if len(list) == 0 {
		return ""
	}
	lines := make([]string, 0, len(list))
	for _, n := range list {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(m.theme.ToastColor(n.Kind)).
			Padding(0, 1)
		lines = append(lines, style.Render(toastIcon(n.Kind)+" "+n.Message))
	}
	return strings.Join(lines, "\n")
}

func toastIcon(k notify.Kind) string {
	switch k {
	case notify.KindSuccess:
		return "✓"
	case notify.KindError:
		return "✗"
	case notify.KindWarning:
		return "⚠"
	}
	return "ℹ"
}
