package tui

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"roadfix/internal/complaint"
	"roadfix/internal/dashboard"
	"roadfix/internal/role"
	"roadfix/internal/summary"
)

// boardState is the dashboard screen's local UI state.
type boardState struct {
	cursor       int
	picker       *picker
	busy         string
	translations map[string]string
}

func newBoardState() boardState {
	return boardState{translations: map[string]string{}}
}

func (b *boardState) clampCursor(n int) {
	if b.cursor >= n {
		b.cursor = n - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// picker is a small modal list (status choices or workers).
type picker struct {
	title  string
	labels []string
	cursor int
	choose func(i int) tea.Cmd
}

var viewLabels = map[role.View]string{
	role.CitizenDashboard:  "Dashboard",
	role.CitizenReport:     "Report Damage",
	role.CitizenComplaints: "My Complaints",
	role.WorkerAssigned:    "Assigned",
	role.WorkerPending:     "Pending",
	role.WorkerResolved:    "Resolved",
	role.AdminDashboard:    "Dashboard",
	role.AdminComplaints:   "All Complaints",
	role.AdminAssign:       "Assign Work",
	role.AdminUsers:        "Workers",
}

func viewLabel(v role.View) string {
	if l, ok := viewLabels[v]; ok {
		return l
	}
	return v.Tag()
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.board.picker != nil {
		return m.updatePicker(msg)
	}
	if m.svc.Dashboard.View() == role.CitizenReport {
		return m.updateReport(msg)
	}

	snap := m.svc.Dashboard.Snapshot()
	visible := snap.Visible()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Logout):
		m.leave()
		m.svc.Notes.Success("Logged out successfully.")
		return m, nil

	case key.Matches(msg, m.keys.NextView), key.Matches(msg, m.keys.PrevView):
		step := 1
		if key.Matches(msg, m.keys.PrevView) {
			step = -1
		}
		views := m.session.Role.Views()
		i := indexOfView(views, snap.View)
		next := views[(i+step+len(views))%len(views)]
		m.board.cursor = 0
		return m, m.selectView(next)

	case key.Matches(msg, m.keys.Up):
		if m.board.cursor > 0 {
			m.board.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.board.cursor < len(visible)-1 {
			m.board.cursor++
		}

	case key.Matches(msg, m.keys.Refresh):
		d := m.svc.Dashboard
		return m, func() tea.Msg {
			ctx, cancel := m.ctx()
			defer cancel()
			return fetchDoneMsg{err: d.Refresh(ctx)}
		}

	case key.Matches(msg, m.keys.Dismiss):
		if list := m.svc.Notes.List(); len(list) > 0 {
			m.svc.Notes.Dismiss(list[len(list)-1].ID)
		}

	case key.Matches(msg, m.keys.ChangeState):
		if c, ok := m.selected(visible); ok {
			m.board.picker = m.statusPicker(c)
		}

	case key.Matches(msg, m.keys.Assign):
		if c, ok := m.selected(visible); ok && m.session.Role.Kind() == role.KindAdmin {
			m.board.picker = m.workerPicker(c, snap)
		}

	case key.Matches(msg, m.keys.Export):
		if m.session.Role.Kind() != role.KindAdmin || m.board.busy != "" {
			return m, nil
		}
		m.board.busy = "Generating report..."
		return m, m.export(snap)
	}
	return m, nil
}

func (m Model) selected(visible []complaint.Complaint) (complaint.Complaint, bool) {
	if m.board.cursor < 0 || m.board.cursor >= len(visible) {
		return complaint.Complaint{}, false
	}
	return visible[m.board.cursor], true
}

func (m Model) statusPicker(c complaint.Complaint) *picker {
	k := m.session.Role.Kind()
	if k != role.KindWorker && k != role.KindAdmin {
		return nil
	}
	choices := c.Status.NextChoices()
	if len(choices) == 0 {
		m.svc.Notes.Info(fmt.Sprintf("Complaint #%s is already resolved", c.ID))
		return nil
	}
	labels := make([]string, len(choices))
	for i, s := range choices {
		labels[i] = string(s)
	}
	d := m.svc.Dashboard
	return &picker{
		title:  fmt.Sprintf("Update status of #%s", c.ID),
		labels: labels,
		choose: func(i int) tea.Cmd {
			status := choices[i]
			return func() tea.Msg {
				ctx, cancel := m.ctx()
				defer cancel()
				return mutationDoneMsg{err: d.UpdateStatus(ctx, c.ID, status)}
			}
		},
	}
}

func (m Model) workerPicker(c complaint.Complaint, snap dashboard.Snapshot) *picker {
	if c.Status == complaint.StatusResolved {
		m.svc.Notes.Info(fmt.Sprintf("Complaint #%s is already resolved", c.ID))
		return nil
	}
	workers := snap.Workers.Data
	if len(workers) == 0 {
		m.svc.Notes.Warning("No workers available")
		return nil
	}
	labels := make([]string, len(workers))
	for i, w := range workers {
		labels[i] = fmt.Sprintf("%s (#%s)", w.Name, w.ID)
	}
	d := m.svc.Dashboard
	return &picker{
		title:  fmt.Sprintf("Assign #%s to", c.ID),
		labels: labels,
		choose: func(i int) tea.Cmd {
			workerID := workers[i].ID
			return func() tea.Msg {
				ctx, cancel := m.ctx()
				defer cancel()
				return mutationDoneMsg{err: d.Assign(ctx, c.ID, workerID)}
			}
		},
	}
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := *m.board.picker
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.board.picker = nil
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if p.cursor < len(p.labels)-1 {
			p.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		m.board.picker = nil
		m.board.busy = "Saving..."
		return m, p.choose(p.cursor)
	}
	m.board.picker = &p
	return m, nil
}

// export renders the PNG summary, saves it and shares it over Telegram
// when configured.
func (m Model) export(snap dashboard.Snapshot) tea.Cmd {
	dir := m.svc.ReportDir
	tg := m.svc.Telegram
	now := m.now()
	return func() tea.Msg {
		path, err := summary.Export(dir, snap.Complaints.Data, snap.StatsOrZero(), now)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if tg != nil {
			png, err := os.ReadFile(path)
			if err == nil {
				ctx, cancel := m.ctx()
				defer cancel()
				caption := fmt.Sprintf("📊 Road complaint report, %s", now.Format("02 Jan 2006"))
				err = tg.SendPhoto(ctx, caption, filepath.Base(path), png)
			}
			if err != nil {
				log.Printf("  ⚠️  Could not share report on Telegram: %v\n", err)
			}
		}
		return exportDoneMsg{path: path}
	}
}

func indexOfView(views []role.View, v role.View) int {
	for i, x := range views {
		if x == v {
			return i
		}
	}
	return 0
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// viewDashboard renders header, sidebar, the active panel and status bar.
func (m Model) viewDashboard() string {
	st := m.styles
	snap := m.svc.Dashboard.Snapshot()

	header := st.title.Render("🚧 RoadFix") + "  " +
		m.session.DisplayName() + " " + st.active.Render("["+m.session.Role.Title()+"]")

	var side strings.Builder
	for _, v := range m.session.Role.Views() {
		label := viewLabel(v)
		if v == snap.View {
			side.WriteString(st.active.Render("▸ "+label) + "\n")
		} else {
			side.WriteString("  " + label + "\n")
		}
	}
	sidebar := st.sidebar.Render(side.String())

	panelWidth := m.width - lipgloss.Width(sidebar) - 2
	if panelWidth < 40 {
		panelWidth = 80
	}

	var panel string
	switch snap.View {
	case role.CitizenReport:
		panel = m.viewReport(panelWidth)
	case role.AdminUsers:
		panel = m.viewWorkers(snap)
	case role.CitizenDashboard, role.AdminDashboard:
		panel = m.viewStats(snap)
		if snap.View == role.AdminDashboard {
			panel += "\n" + m.viewComplaints(snap, 5)
		}
	default:
		panel = m.viewComplaints(snap, 0)
	}
	if m.board.picker != nil {
		panel += "\n" + m.viewPicker(*m.board.picker)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", panel)

	status := m.svc.Monitor.GetStatus().Line()
	if snap.Loading() {
		status = "loading… · " + status
	}
	if m.board.busy != "" {
		status = m.board.busy + " · " + status
	}

	help := helpLine(st, m.keys.NextView, m.keys.Up, m.keys.Down, m.keys.Refresh, m.keys.Logout, m.keys.Quit)
	switch m.session.Role.Kind() {
	case role.KindWorker:
		help += st.help.Render(" · " + bindingHelp(m.keys.ChangeState))
	case role.KindAdmin:
		help += st.help.Render(" · " + bindingHelp(m.keys.ChangeState) + " · " + bindingHelp(m.keys.Assign) + " · " + bindingHelp(m.keys.Export))
	}

	return header + "\n\n" + body + "\n\n" + st.faint.Render(status) + "\n" + help
}

func bindingHelp(b key.Binding) string {
	return b.Help().Key + " " + b.Help().Desc
}

type statCard struct {
	label string
	value int
}

func (m Model) viewStats(snap dashboard.Snapshot) string {
	if snap.Stats.Data == nil {
		if snap.Stats.Loading {
			return m.styles.faint.Render("Loading statistics...")
		}
		if snap.Stats.Err != nil {
			return m.styles.fieldErr.Render("Could not load statistics")
		}
	}
	s := snap.StatsOrZero()
	cards := []statCard{
		{"Total", s.Total},
		{"Pending", s.Pending},
		{"Resolved", s.Resolved},
		{"High Priority", s.HighPriority},
	}
	switch snap.Role.(type) {
	case role.Admin:
		cards = append(cards, statCard{"Assigned", s.Assigned}, statCard{"With Photos", s.WithPhotos})
	case role.Worker:
		cards = append(cards, statCard{"My Assigned", s.MyAssigned})
	}

	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, m.styles.card.Render(fmt.Sprintf("%s\n%d", m.styles.faint.Render(c.label), c.value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// viewComplaints renders the visible list. limit > 0 shows only the
// first limit rows.
func (m Model) viewComplaints(snap dashboard.Snapshot, limit int) string {
	st := m.styles
	visible := snap.Visible()
	if len(visible) == 0 {
		switch {
		case snap.Complaints.Loading:
			return st.faint.Render("Loading complaints...")
		case snap.Complaints.Err != nil:
			return st.fieldErr.Render("Could not load complaints")
		}
		return st.faint.Render("No complaints")
	}

	var b strings.Builder
	for i, c := range visible {
		if limit > 0 && i >= limit {
			b.WriteString(st.faint.Render(fmt.Sprintf("… %d more", len(visible)-limit)) + "\n")
			break
		}
		status := lipgloss.NewStyle().Foreground(m.theme.StatusColor(c.Status)).Render(fmt.Sprintf("%-9s", c.Status))
		prio := lipgloss.NewStyle().Foreground(m.theme.PriorityColor(c.Priority)).Render(fmt.Sprintf("%-6s", c.Priority))
		line := fmt.Sprintf("#%-5s %s %s %-28s %s", c.ID, status, prio, truncate(c.Location, 28), truncate(c.Description, 40))
		if i == m.board.cursor && limit == 0 {
			line = st.selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if limit == 0 {
		if c, ok := m.selected(visible); ok {
			b.WriteString("\n" + m.viewDetail(c, snap))
		}
	}
	return b.String()
}

func (m Model) viewDetail(c complaint.Complaint, snap dashboard.Snapshot) string {
	st := m.styles
	var b strings.Builder
	fmt.Fprintf(&b, "Complaint #%s · %s\n", c.ID, c.Date)
	fmt.Fprintf(&b, "Reporter:  %s\n", c.ReporterName)
	fmt.Fprintf(&b, "Location:  %s (%.4f, %.4f)\n", c.Location, c.Latitude, c.Longitude)
	fmt.Fprintf(&b, "Details:   %s\n", c.Description)
	if tr, ok := m.board.translations[c.Description]; ok {
		fmt.Fprintf(&b, "           %s\n", st.faint.Render("↳ "+tr))
	}
	assignee := c.AssigneeLabel()
	if name, ok := snap.WorkerName(c.AssignedTo); ok {
		assignee = name
	}
	fmt.Fprintf(&b, "Assigned:  %s\n", assignee)
	if c.HasPhoto() {
		fmt.Fprintf(&b, "Photo:     %s\n", c.Photo)
	}
	return st.panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) viewWorkers(snap dashboard.Snapshot) string {
	st := m.styles
	if len(snap.Workers.Data) == 0 {
		if snap.Workers.Loading {
			return st.faint.Render("Loading workers...")
		}
		return st.faint.Render("No workers")
	}
	var b strings.Builder
	b.WriteString(m.viewStats(snap) + "\n\n")
	for _, w := range snap.Workers.Data {
		fmt.Fprintf(&b, "  #%-5s %-24s %-28s %s\n", w.ID, truncate(w.Name, 24), truncate(w.Email, 28), w.Phone)
	}
	return b.String()
}

func (m Model) viewPicker(p picker) string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.title.Render(p.title) + "\n")
	for i, l := range p.labels {
		if i == p.cursor {
			b.WriteString(st.selected.Render("▸ "+l) + "\n")
		} else {
			b.WriteString("  " + l + "\n")
		}
	}
	b.WriteString(helpLine(st, m.keys.Submit, m.keys.Back))
	return st.panel.Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
