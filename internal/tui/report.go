package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"roadfix/internal/complaint"
	"roadfix/internal/report"
)

type reportScreen struct {
	fields    fieldSet
	priority  complaint.Priority
	latitude  float64
	longitude float64
	locStatus string
	photo     *report.Photo
	locating  bool
	busy      bool
}

func newReportScreen() reportScreen {
	desc := newField("description", "Description", "Describe the damage", false)
	desc.input.CharLimit = 1000
	desc.input.Width = 60
	return reportScreen{
		fields: newFieldSet(
			newField("location", "Location", "Street, landmark or area", false),
			desc,
			newField("photo", "Photo (path, enter to attach)", "~/Pictures/pothole.jpg", false),
		),
		priority: complaint.PriorityMedium,
	}
}

func (r *reportScreen) clear() {
	fresh := newReportScreen()
	*r = fresh
}

// apply fills the location fields from a resolved location.
func (r *reportScreen) apply(loc report.Location, status string) {
	r.fields.set("location", loc.Name)
	r.latitude = loc.Latitude
	r.longitude = loc.Longitude
	r.locStatus = status
}

// form builds the submission from the current input.
func (r reportScreen) form() report.Form {
	f := report.NewForm()
	f.ApplyLocation(report.Location{
		Name:      r.fields.value("location"),
		Latitude:  r.latitude,
		Longitude: r.longitude,
	})
	f.Description = r.fields.value("description")
	f.Priority = r.priority
	f.Photo = r.photo
	return f
}

func (m Model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.report.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.selectView(m.session.Role.DefaultView())
	case key.Matches(msg, m.keys.NextField):
		return m, m.report.fields.next()
	case key.Matches(msg, m.keys.PrevField):
		return m, m.report.fields.prev()
	case key.Matches(msg, m.keys.CyclePriority):
		for i, p := range complaint.Priorities {
			if p == m.report.priority {
				m.report.priority = complaint.Priorities[(i+1)%len(complaint.Priorities)]
				break
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Locate):
		if m.report.locating {
			return m, nil
		}
		m.report.locating = true
		m.report.locStatus = "Getting location..."
		return m, m.locate()
	case key.Matches(msg, m.keys.SendReport):
		m.report.busy = true
		form := m.report.form()
		sub := m.svc.Submitter
		return m, func() tea.Msg {
			ctx, cancel := m.ctx()
			defer cancel()
			return submitDoneMsg{err: sub.Submit(ctx, form)}
		}
	case key.Matches(msg, m.keys.Submit):
		if m.report.fields.focused() == "photo" {
			return m, m.attachPhoto()
		}
		return m, m.report.fields.next()
	}
	return m, m.report.fields.update(msg)
}

func (m Model) locate() tea.Cmd {
	locator, geocoder, fallback := m.svc.Locator, m.svc.Geocoder, m.svc.FallbackLocation
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		loc, status := report.ResolveLocation(ctx, locator, geocoder, fallback)
		return locationMsg{loc: loc, status: status}
	}
}

func (m Model) attachPhoto() tea.Cmd {
	path := expandHome(strings.TrimSpace(m.report.fields.value("photo")))
	if path == "" {
		return nil
	}
	opts := m.svc.PhotoOptions
	return func() tea.Msg {
		p, err := report.LoadPhoto(path, opts)
		return photoMsg{photo: p, err: err}
	}
}

func (m Model) viewReport(width int) string {
	st := m.styles
	r := m.report
	var b strings.Builder
	b.WriteString(st.title.Render("Report Road Damage") + "\n\n")
	b.WriteString(r.fields.render(st))

	if r.locStatus != "" {
		b.WriteString(st.faint.Render(r.locStatus) + "\n")
	}
	if r.latitude != 0 || r.longitude != 0 {
		b.WriteString(st.faint.Render(fmt.Sprintf("Lat: %.4f, Long: %.4f", r.latitude, r.longitude)) + "\n")
	}

	prio := lipgloss.NewStyle().Bold(true).Foreground(m.theme.PriorityColor(r.priority)).Render(string(r.priority))
	b.WriteString("\nPriority: " + prio + "\n")

	if r.photo != nil {
		b.WriteString(fmt.Sprintf("Photo: %s (%s)\n", r.photo.Name, humanBytes(len(r.photo.Data))))
	} else {
		b.WriteString(st.faint.Render("Photo: none attached") + "\n")
	}

	if r.busy {
		b.WriteString("\n" + st.faint.Render("Submitting...") + "\n")
	}
	b.WriteString("\n" + helpLine(st, m.keys.NextField, m.keys.Locate, m.keys.CyclePriority, m.keys.SendReport, m.keys.Back))
	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
