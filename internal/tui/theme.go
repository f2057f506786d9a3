package tui

import (
	"github.com/charmbracelet/lipgloss"

	"roadfix/internal/complaint"
	"roadfix/internal/notify"
)

// Theme is the colour palette. All colours are ANSI 256 codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	StatusPending  lipgloss.Color
	StatusAssigned lipgloss.Color
	StatusResolved lipgloss.Color

	PriorityLow    lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityHigh   lipgloss.Color

	ToastSuccess lipgloss.Color
	ToastError   lipgloss.Color
	ToastWarning lipgloss.Color
	ToastInfo    lipgloss.Color

	BorderColor lipgloss.Color
	HelpText    lipgloss.Color
}

// DefaultTheme is tuned for dark terminals.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Accent:     lipgloss.Color("39"),

	SelectedBackground: lipgloss.Color("237"),
	SelectedForeground: lipgloss.Color("255"),

	StatusPending:  lipgloss.Color("214"),
	StatusAssigned: lipgloss.Color("75"),
	StatusResolved: lipgloss.Color("78"),

	PriorityLow:    lipgloss.Color("78"),
	PriorityMedium: lipgloss.Color("214"),
	PriorityHigh:   lipgloss.Color("203"),

	ToastSuccess: lipgloss.Color("34"),
	ToastError:   lipgloss.Color("160"),
	ToastWarning: lipgloss.Color("172"),
	ToastInfo:    lipgloss.Color("33"),

	BorderColor: lipgloss.Color("240"),
	HelpText:    lipgloss.Color("241"),
}

// StatusColor returns the colour for a complaint status. Unknown values
// render faint.
func (t Theme) StatusColor(s complaint.Status) lipgloss.Color {
	switch s {
	case complaint.StatusPending:
		return t.StatusPending
	case complaint.StatusAssigned:
		return t.StatusAssigned
	case complaint.StatusResolved:
		return t.StatusResolved
	}
	return t.FaintText
}

// PriorityColor returns the colour for a priority.
func (t Theme) PriorityColor(p complaint.Priority) lipgloss.Color {
	switch p {
	case complaint.PriorityLow:
		return t.PriorityLow
	case complaint.PriorityMedium:
		return t.PriorityMedium
	case complaint.PriorityHigh:
		return t.PriorityHigh
	}
	return t.NormalText
}

// ToastColor returns the background for a notification kind.
func (t Theme) ToastColor(k notify.Kind) lipgloss.Color {
	switch k {
	case notify.KindSuccess:
		return t.ToastSuccess
	case notify.KindError:
		return t.ToastError
	case notify.KindWarning:
		return t.ToastWarning
	}
	return t.ToastInfo
}

type styles struct {
	title    lipgloss.Style
	faint    lipgloss.Style
	help     lipgloss.Style
	selected lipgloss.Style
	banner   lipgloss.Style
	fieldErr lipgloss.Style
	panel    lipgloss.Style
	sidebar  lipgloss.Style
	active   lipgloss.Style
	card     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		faint:    lipgloss.NewStyle().Foreground(t.FaintText),
		help:     lipgloss.NewStyle().Foreground(t.HelpText),
		selected: lipgloss.NewStyle().Background(t.SelectedBackground).Foreground(t.SelectedForeground),
		banner:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(t.ToastError).Padding(0, 1),
		fieldErr: lipgloss.NewStyle().Foreground(t.ToastError),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderColor).Padding(0, 1),
		sidebar:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(t.BorderColor).PaddingRight(1),
		active:   lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderColor).Padding(0, 2).MarginRight(1),
	}
}
