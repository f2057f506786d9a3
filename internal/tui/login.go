package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"roadfix/internal/auth"
	"roadfix/internal/role"
	"roadfix/internal/session"
)

type loginScreen struct {
	fields   fieldSet
	remember bool
	demo     int // next demo account for DemoFill
	banner   string
	busy     bool
}

func newLoginScreen() loginScreen {
	return loginScreen{
		fields: newFieldSet(
			newField("email", "Email", "you@example.com", false),
			newField("password", "Password", "••••••", true),
		),
	}
}

// reset clears the form, keeping a remembered e-mail.
func (l *loginScreen) reset(store *session.Store) {
	l.fields.reset()
	l.banner = ""
	l.busy = false
	l.remember = false
	if email, ok := store.RememberedEmail(); ok {
		l.fields.set("email", email)
		l.remember = true
		l.fields.setFocus(1)
	}
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextField):
		return m, m.login.fields.next()
	case key.Matches(msg, m.keys.PrevField):
		return m, m.login.fields.prev()
	case key.Matches(msg, m.keys.ToggleRemember):
		m.login.remember = !m.login.remember
		return m, nil
	case key.Matches(msg, m.keys.DemoFill):
		cred := auth.DemoCredentials[m.login.demo%len(auth.DemoCredentials)]
		m.login.demo++
		m.login.fields.set("email", cred.Email)
		m.login.fields.set("password", cred.Password)
		m.login.fields.clearErrors()
		m.login.banner = ""
		return m, nil
	case key.Matches(msg, m.keys.SwitchForm):
		m.screen = screenRegister
		m.register.banner = ""
		return m, m.register.fields.setFocus(0)
	case key.Matches(msg, m.keys.Submit):
		if m.login.fields.focused() == "email" {
			return m, m.login.fields.next()
		}
		return m.submitLogin()
	}
	return m, m.login.fields.update(msg)
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	form := auth.LoginForm{
		Email:      m.login.fields.value("email"),
		Password:   m.login.fields.value("password"),
		RememberMe: m.login.remember,
	}
	m.login.fields.clearErrors()
	m.login.banner = ""
	m.login.busy = true

	svc := m.svc.Auth
	return m, func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		res, err := svc.Login(ctx, form)
		return authDoneMsg{res: res, err: err}
	}
}

func (m Model) viewLogin() string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.title.Render("🚧 RoadFix · Sign in") + "\n\n")
	if m.login.banner != "" {
		b.WriteString(st.banner.Render(m.login.banner) + "\n\n")
	}
	b.WriteString(m.login.fields.render(st))

	check := "[ ]"
	if m.login.remember {
		check = "[x]"
	}
	b.WriteString("\n" + check + " Remember me\n")
	if m.login.busy {
		b.WriteString("\n" + st.faint.Render("Signing in...") + "\n")
	}

	b.WriteString("\n" + st.faint.Render("Demo accounts:") + "\n")
	for _, c := range auth.DemoCredentials {
		b.WriteString(st.faint.Render(fmt.Sprintf("  %-8s %s / %s", c.Label, c.Email, c.Password)) + "\n")
	}
	b.WriteString("\n" + helpLine(st, m.keys.Submit, m.keys.NextField, m.keys.DemoFill, m.keys.ToggleRemember, m.keys.SwitchForm, m.keys.ForceQuit))
	return b.String()
}

type registerScreen struct {
	fields fieldSet
	role   role.Kind
	banner string
	busy   bool
}

var registerRoles = []role.Kind{role.KindCitizen, role.KindWorker, role.KindAdmin}

func newRegisterScreen() registerScreen {
	return registerScreen{
		fields: newFieldSet(
			newField("name", "Full name", "", false),
			newField("email", "Email", "you@example.com", false),
			newField("phone", "Phone", "", false),
			newField("address", "Address", "", false),
			newField("password", "Password", "at least 6 characters", true),
			newField("confirmPassword", "Confirm password", "", true),
		),
		role: role.KindCitizen,
	}
}

func (r *registerScreen) reset() {
	r.fields.reset()
	r.role = role.KindCitizen
	r.banner = ""
	r.busy = false
}

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.register.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextField):
		return m, m.register.fields.next()
	case key.Matches(msg, m.keys.PrevField):
		return m, m.register.fields.prev()
	case key.Matches(msg, m.keys.CycleRole):
		for i, k := range registerRoles {
			if k == m.register.role {
				m.register.role = registerRoles[(i+1)%len(registerRoles)]
				break
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.SwitchForm), key.Matches(msg, m.keys.Back):
		m.screen = screenLogin
		return m, m.login.fields.setFocus(m.login.fields.focus)
	case key.Matches(msg, m.keys.Submit):
		if m.register.fields.focus < len(m.register.fields.fields)-1 {
			return m, m.register.fields.next()
		}
		return m.submitRegister()
	}
	return m, m.register.fields.update(msg)
}

func (m Model) submitRegister() (tea.Model, tea.Cmd) {
	f := m.register.fields
	form := auth.RegisterForm{
		Name:            strings.TrimSpace(f.value("name")),
		Email:           f.value("email"),
		Phone:           strings.TrimSpace(f.value("phone")),
		Address:         strings.TrimSpace(f.value("address")),
		Role:            string(m.register.role),
		Password:        f.value("password"),
		ConfirmPassword: f.value("confirmPassword"),
	}
	m.register.fields.clearErrors()
	m.register.banner = ""
	m.register.busy = true

	svc := m.svc.Auth
	return m, func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		res, err := svc.Register(ctx, form)
		return authDoneMsg{res: res, err: err, register: true}
	}
}

func (m Model) viewRegister() string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.title.Render("🚧 RoadFix · Create account") + "\n\n")
	if m.register.banner != "" {
		b.WriteString(st.banner.Render(m.register.banner) + "\n\n")
	}
	b.WriteString(m.register.fields.render(st))
	b.WriteString("\nRole: " + st.active.Render(strings.ToUpper(string(m.register.role))) + "\n")
	if m.register.busy {
		b.WriteString("\n" + st.faint.Render("Creating account...") + "\n")
	}
	b.WriteString("\n" + helpLine(st, m.keys.Submit, m.keys.NextField, m.keys.CycleRole, m.keys.Back, m.keys.ForceQuit))
	return b.String()
}

// helpLine renders bindings as "key desc · key desc".
func helpLine(st styles, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return st.help.Render(strings.Join(parts, " · "))
}
