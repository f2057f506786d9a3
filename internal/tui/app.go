// Package tui is the bubbletea front end: login and registration screens,
// the role dashboards and the citizen report form.
//
// The bubbletea loop is the only goroutine that touches Model. Every
// network call runs inside a tea.Cmd and reports back with a message;
// the dashboard view model, notification queue and session store it
// calls into are safe for concurrent use.
package tui

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"roadfix/internal/auth"
	"roadfix/internal/dashboard"
	apperrors "roadfix/internal/errors"
	"roadfix/internal/geo"
	"roadfix/internal/health"
	"roadfix/internal/notify"
	"roadfix/internal/report"
	"roadfix/internal/role"
	"roadfix/internal/session"
	"roadfix/internal/telegram"
	"roadfix/internal/translate"
)

// Authenticator logs in and registers. *auth.Service implements it.
type Authenticator interface {
	Login(ctx context.Context, form auth.LoginForm) (*auth.Result, error)
	Register(ctx context.Context, form auth.RegisterForm) (*auth.Result, error)
}

// Services are the collaborators the UI drives. Translator and Telegram
// may be nil.
type Services struct {
	Auth      Authenticator
	Sessions  *session.Store
	Dashboard *dashboard.Model
	Notes     *notify.Queue
	Submitter *report.Submitter
	Monitor   *health.Monitor

	Locator          geo.Locator
	Geocoder         report.Geocoder
	FallbackLocation report.Location
	PhotoOptions     report.PhotoOptions

	Translator *translate.Translator
	Telegram   *telegram.Client
	ReportDir  string

	// RequestTimeout bounds every command's context. Zero means 30s.
	RequestTimeout time.Duration
}

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenDashboard
)

// Model is the root tea.Model.
type Model struct {
	svc    Services
	keys   KeyMap
	theme  Theme
	styles styles

	screen        screen
	width, height int

	login    loginScreen
	register registerScreen
	report   reportScreen
	board    boardState

	session *session.Session
	now     func() time.Time
}

// NewModel builds the UI. A stored, unexpired session skips the login
// screen and greets the user back.
func NewModel(svc Services) Model {
	if svc.RequestTimeout <= 0 {
		svc.RequestTimeout = 30 * time.Second
	}
	m := Model{
		svc:      svc,
		keys:     DefaultKeyMap,
		theme:    DefaultTheme,
		styles:   newStyles(DefaultTheme),
		login:    newLoginScreen(),
		register: newRegisterScreen(),
		report:   newReportScreen(),
		board:    newBoardState(),
		now:      time.Now,
	}

	if email, ok := svc.Sessions.RememberedEmail(); ok {
		m.login.fields.set("email", email)
		m.login.remember = true
		m.login.fields.setFocus(1)
	}

	if s, ok := svc.Sessions.Restore(); ok {
		m.enter(s)
		svc.Notes.Success(fmt.Sprintf("Welcome back, %s!", s.DisplayName()))
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{listenForNotes(m.svc.Notes.Changes()), textinput.Blink}
	if m.screen == screenDashboard {
		cmds = append(cmds, m.selectView(m.svc.Dashboard.View()))
	}
	return tea.Batch(cmds...)
}

// Messages produced by commands.
type (
	notesChangedMsg struct{}

	authDoneMsg struct {
		res      *auth.Result
		err      error
		register bool
	}

	fetchDoneMsg struct{ err error }

	mutationDoneMsg struct{ err error }

	submitDoneMsg struct{ err error }

	locationMsg struct {
		loc    report.Location
		status string
	}

	photoMsg struct {
		photo *report.Photo
		err   error
	}

	exportDoneMsg struct {
		path string
		err  error
	}

	translatedMsg struct {
		originals    []string
		translations []string
	}
)

// listenForNotes blocks until the notification queue changes.
func listenForNotes(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return notesChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case notesChangedMsg:
		return m, listenForNotes(m.svc.Notes.Changes())

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case fetchDoneMsg:
		return m.handleFetchDone(msg)

	case mutationDoneMsg:
		m.board.busy = ""
		if apperrors.IsSessionExpired(msg.err) {
			return m.expire()
		}
		return m, m.translateVisible()

	case submitDoneMsg:
		m.report.busy = false
		if msg.err != nil {
			if apperrors.IsSessionExpired(msg.err) || apperrors.IsUnauthorized(msg.err) {
				return m.expire()
			}
			return m, nil
		}
		m.report.clear()
		return m, m.selectView(role.CitizenComplaints)

	case locationMsg:
		m.report.locating = false
		m.report.apply(msg.loc, msg.status)
		return m, nil

	case photoMsg:
		if msg.err != nil {
			m.report.fields.errors["photo"] = bannerText(msg.err)
			m.report.photo = nil
			return m, nil
		}
		delete(m.report.fields.errors, "photo")
		m.report.photo = msg.photo
		return m, nil

	case exportDoneMsg:
		m.board.busy = ""
		if msg.err != nil {
			log.Printf("  ✗ Report export failed: %v\n", msg.err)
			m.svc.Notes.Error("Failed to generate report")
			return m, nil
		}
		m.svc.Notes.Success("Report saved to " + msg.path)
		return m, nil

	case translatedMsg:
		for i, orig := range msg.originals {
			if i < len(msg.translations) && msg.translations[i] != orig {
				m.board.translations[orig] = msg.translations[i]
			}
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenRegister:
			return m.updateRegister(msg)
		default:
			return m.updateDashboard(msg)
		}
	}

	// Cursor blink and other input plumbing.
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		cmd = m.login.fields.update(msg)
	case screenRegister:
		cmd = m.register.fields.update(msg)
	default:
		if m.svc.Dashboard.View() == role.CitizenReport {
			cmd = m.report.fields.update(msg)
		}
	}
	return m, cmd
}

func (m Model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if msg.register {
		m.register.busy = false
	} else {
		m.login.busy = false
	}

	if msg.err != nil {
		if fe, ok := msg.err.(auth.FieldErrors); ok {
			target := &m.login.fields
			if msg.register {
				target = &m.register.fields
			}
			for _, e := range fe {
				target.errors[e.Field] = e.Message
			}
		}
		if msg.register {
			m.register.banner = auth.RegisterBanner(msg.err)
		} else {
			m.login.banner = bannerText(msg.err)
		}
		return m, nil
	}

	m.login.reset(m.svc.Sessions)
	m.register.reset()
	m.enter(msg.res.Session)
	m.svc.Notes.Success(msg.res.Welcome)
	return m, m.selectView(msg.res.Landing)
}

func (m Model) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	if apperrors.IsSessionExpired(msg.err) {
		return m.expire()
	}
	m.board.clampCursor(len(m.svc.Dashboard.Filtered()))
	return m, m.translateVisible()
}

// enter switches to the dashboard for s.
func (m *Model) enter(s *session.Session) {
	m.session = s
	m.screen = screenDashboard
	m.board = newBoardState()
	m.report.clear()
	m.svc.Dashboard.Reset(s.Role)
}

// leave ends the session and returns to the login screen.
func (m *Model) leave() {
	if err := m.svc.Sessions.Logout(); err != nil {
		log.Printf("  ⚠️  Could not clear stored session: %v\n", err)
	}
	m.svc.Dashboard.Reset(nil)
	m.session = nil
	m.screen = screenLogin
	m.login.reset(m.svc.Sessions)
}

// expire handles a token the server no longer accepts.
func (m Model) expire() (tea.Model, tea.Cmd) {
	log.Println("  ⚠️  Session expired, returning to login")
	m.leave()
	m.svc.Notes.Warning("Session expired. Please log in again.")
	return m, nil
}

// selectView switches the dashboard synchronously and returns the fetch
// as a command.
func (m Model) selectView(v role.View) tea.Cmd {
	f, err := m.svc.Dashboard.Begin(context.Background(), v)
	if err != nil {
		log.Printf("  ✗ %v\n", err)
		return nil
	}
	if f.Coalesced {
		return nil
	}
	if f.Plan().Empty() {
		_ = f.Run()
		return nil
	}
	return func() tea.Msg {
		return fetchDoneMsg{err: f.Run()}
	}
}

// ctx returns a context bounded by the request timeout.
func (m Model) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.svc.RequestTimeout)
}

// translateVisible translates descriptions that are not cached yet.
func (m Model) translateVisible() tea.Cmd {
	if !m.svc.Translator.Enabled() || m.screen != screenDashboard {
		return nil
	}
	var pending []string
	seen := map[string]bool{}
	for _, c := range m.svc.Dashboard.Filtered() {
		if c.Description == "" || seen[c.Description] {
			continue
		}
		if _, ok := m.board.translations[c.Description]; ok {
			continue
		}
		seen[c.Description] = true
		pending = append(pending, c.Description)
	}
	if len(pending) == 0 {
		return nil
	}
	tr := m.svc.Translator
	timeout := m.svc.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := tr.Translate(ctx, pending)
		if err != nil {
			log.Printf("  ⚠️  Translation failed: %v\n", err)
		}
		return translatedMsg{originals: pending, translations: out}
	}
}

// bannerText is the user-facing text for an error shown on a form.
func bannerText(err error) string {
	switch e := err.(type) {
	case *apperrors.AuthError:
		return e.Banner()
	case *apperrors.ValidationError:
		return e.Message
	case auth.FieldErrors:
		if len(e) > 0 {
			return e[0].Message
		}
	}
	return err.Error()
}
