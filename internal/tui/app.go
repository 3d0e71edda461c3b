package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arcitech/arcdash/internal/access"
	"github.com/arcitech/arcdash/internal/browser"
	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/session"
	"github.com/arcitech/arcdash/internal/tokenstore"
	"github.com/arcitech/arcdash/pkg/client"
	"github.com/arcitech/arcdash/pkg/domain"
)

// RegisterPath is the account creation surface.
const RegisterPath = "/auth/register"

// ProfileAPI loads the signed-in user's profile.
type ProfileAPI interface {
	GetProfile(ctx context.Context) (*domain.UserProfile, error)
}

// Deps are the collaborators the dashboard runs on. Watcher and Profiles
// may be nil.
type Deps struct {
	Session    *session.Service
	Profiles   ProfileAPI
	Bus        *nav.Bus
	Router     *nav.Router
	Guard      *access.Guard
	Watcher    *tokenstore.Watcher
	WebBaseURL string
	Version    string
	Logger     *slog.Logger
}

// signalMsg carries a navigation signal drained from the bus.
type signalMsg nav.Signal

// storeChangedMsg reports a token store change made by any process.
type storeChangedMsg tokenstore.Change

type loginResultMsg struct {
	data *domain.SessionData
	err  error
}

type registerResultMsg struct {
	res *domain.RegistrationResult
	err error
}

type profileLoadedMsg struct {
	profile *domain.UserProfile
	err     error
}

type copyResultMsg struct{ err error }

type openResultMsg struct {
	url string
	err error
}

// App is the root Bubbletea model. It is the single listener for navigation
// signals and the only place that moves the router.
type App struct {
	session  *session.Service
	profiles ProfileAPI
	bus      *nav.Bus
	router   *nav.Router
	eval     *access.Evaluator
	watcher  *tokenstore.Watcher
	webBase  string
	version  string
	logger   *slog.Logger

	copyText func(string) error
	openURL  func(string) error
	now      func() time.Time

	login      formModel
	register   formModel
	dash       dashboardModel
	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int
	initCmd    tea.Cmd
}

// NewApp restores the persisted session and positions the router on the
// surface the session is allowed to see.
func NewApp(d Deps) App {
	if d.Router == nil {
		d.Router = nav.NewRouter(nav.DashboardPath)
	}
	if d.Bus == nil {
		d.Bus = nav.NewBus()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	a := App{
		session:  d.Session,
		profiles: d.Profiles,
		bus:      d.Bus,
		router:   d.Router,
		eval:     access.NewEvaluator(access.NewGuard(nil)),
		watcher:  d.Watcher,
		webBase:  strings.TrimRight(d.WebBaseURL, "/"),
		version:  d.Version,
		logger:   d.Logger,
		copyText: clipboard.WriteAll,
		openURL:  browser.Open,
		now:      time.Now,
		login:    newLoginForm(),
		register: newRegisterForm(),
	}
	if d.Guard != nil {
		a.eval = access.NewEvaluator(d.Guard)
	}
	a.session.Restore()
	a.initCmd = a.syncRoute()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.initCmd, shimmerTickCmd(), listenSignals(a.bus), listenStore(a.watcher))
}

func listenSignals(bus *nav.Bus) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-bus.Signals()
		if !ok {
			return nil
		}
		return signalMsg(s)
	}
}

func listenStore(w *tokenstore.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-w.Events()
		if !ok {
			return nil
		}
		return storeChangedMsg(c)
	}
}

// syncRoute applies the session and the route policy to the current route:
// dashboards need a live session and a permitted role, the bare dashboard
// resolves to the role's landing, and a signed-in user skips the login form.
func (a *App) syncRoute() tea.Cmd {
	path := a.router.Path()
	status := a.session.Status()

	switch {
	case path == nav.DashboardPath || strings.HasPrefix(path, nav.DashboardPath+"/"):
		switch status {
		case session.StatusAuthenticated:
		case session.StatusExpired:
			// The listener moves the router when the signal arrives.
			a.session.Expire()
			return nil
		default:
			a.router.Navigate(nav.LoginPath)
			return nil
		}

		role, ok := a.session.Role()
		if target := access.Resolve(a.router.Current(), role, ok); target != a.router.Current() {
			a.router.Navigate(target)
			if !strings.HasPrefix(nav.PathOf(target), nav.DashboardPath+"/") {
				return nil
			}
		}
		dec, _ := a.eval.Evaluate(a.router.Current(), role, ok)
		if !dec.Allowed {
			a.router.Navigate(dec.Redirect)
			return nil
		}
		if a.dash.profile == nil && !a.dash.loading && a.profiles != nil {
			a.dash.loading = true
			return a.loadProfile()
		}

	case path == nav.LoginPath && status == session.StatusAuthenticated:
		role, ok := a.session.Role()
		if target := access.Landing(role, ok); target != nav.LoginPath {
			a.router.Navigate(target)
			return a.syncRoute()
		}
	}
	return nil
}

func (a App) loadProfile() tea.Cmd {
	p := a.profiles
	return func() tea.Msg {
		profile, err := p.GetProfile(context.Background())
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (a App) submitLogin() tea.Cmd {
	svc := a.session
	req := domain.LoginRequest{Email: a.login.value(0), Password: a.login.fields[1].value}
	return func() tea.Msg {
		data, err := svc.Login(context.Background(), req)
		return loginResultMsg{data: data, err: err}
	}
}

func (a App) submitRegister() tea.Cmd {
	svc := a.session
	req := domain.RegisterRequest{
		FullName:    a.register.value(0),
		Email:       a.register.value(1),
		Password:    a.register.fields[2].value,
		ProgramType: a.register.value(3),
	}
	return func() tea.Msg {
		res, err := svc.Register(context.Background(), req)
		return registerResultMsg{res: res, err: err}
	}
}

// userMessage is what the UI shows for err. Raw transport errors are never
// rendered.
func userMessage(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return client.FriendlyMessage(err)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case signalMsg:
		s := nav.Signal(msg)
		a.bus.Done(s)
		a.logger.Info("navigation signal", "kind", s.Kind.String(), "source", s.Source, "target", s.Target())
		a.router.Handle(s)
		a.eval.Reset()
		if s.Kind != nav.SignalForbidden {
			a.dash = dashboardModel{}
			a.login = newLoginForm()
		}
		cmd := a.syncRoute()
		return a, tea.Batch(listenSignals(a.bus), cmd)

	case storeChangedMsg:
		a.logger.Debug("token store changed", "key", msg.Key, "removed", msg.Removed)
		a.eval.Reset()
		if msg.Key == tokenstore.TokenKey {
			// A write while a fetch is in flight is usually our own login.
			a.dash = dashboardModel{loading: a.dash.loading && !msg.Removed}
		}
		cmd := a.syncRoute()
		return a, tea.Batch(listenStore(a.watcher), cmd)

	case loginResultMsg:
		a.login.submitting = false
		if msg.err != nil {
			a.login.err = userMessage(msg.err)
			return a, nil
		}
		a.login = newLoginForm()
		a.dash = dashboardModel{}
		a.eval.Reset()
		role, ok := a.session.Role()
		a.router.Navigate(access.Landing(role, ok))
		cmd := a.syncRoute()
		return a, cmd

	case registerResultMsg:
		a.register.submitting = false
		if msg.err != nil {
			a.register.err = userMessage(msg.err)
			return a, nil
		}
		email := a.register.value(1)
		a.register = newRegisterForm()
		a.login = newLoginForm()
		a.login.fields[0].value = email
		a.login.focus = 1
		a.login.notice = "Account created. Sign in to continue."
		a.router.Navigate(nav.LoginPath)
		return a, nil

	case profileLoadedMsg:
		a.dash.loading = false
		if msg.err != nil {
			a.dash.err = userMessage(msg.err)
			return a, nil
		}
		a.dash.err = ""
		a.dash.profile = msg.profile
		a.session.UpdateUser(msg.profile.User())
		return a, nil

	case copyResultMsg:
		if msg.err != nil {
			a.dash.status = "copy failed"
		} else {
			a.dash.status = "token copied to clipboard"
		}
		return a, nil

	case openResultMsg:
		if msg.err != nil {
			a.dash.status = "could not open browser"
		} else {
			a.dash.status = "opened " + msg.url
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.helpOpen {
		switch key {
		case "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(helpItems)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			return a, a.open(helpItems[a.helpCursor].route)
		}
		return a, nil
	}

	switch path := a.router.Path(); {
	case path == nav.LoginPath:
		if key == "ctrl+r" {
			a.router.Navigate(RegisterPath)
			return a, nil
		}
		var submitted bool
		a.login, submitted = a.login.Update(msg)
		if submitted {
			return a, a.submitLogin()
		}
		return a, nil

	case path == RegisterPath:
		if key == "esc" || key == "ctrl+r" {
			if !a.router.Back() {
				a.router.Navigate(nav.LoginPath)
			}
			return a, nil
		}
		var submitted bool
		a.register, submitted = a.register.Update(msg)
		if submitted {
			return a, a.submitRegister()
		}
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "h":
		a.helpOpen = true
		a.helpCursor = 0
	case "x":
		// Logout emits a signal; the listener navigates.
		a.session.Logout()
	}

	switch path := a.router.Path(); {
	case path == nav.UnauthorizedPath:
		switch key {
		case "enter":
			role, ok := a.session.Role()
			a.router.Navigate(access.Landing(role, ok))
			cmd := a.syncRoute()
			return a, cmd
		}

	case strings.HasPrefix(path, nav.DashboardPath):
		switch key {
		case "r":
			if a.profiles != nil && !a.dash.loading {
				a.dash.loading = true
				a.dash.status = ""
				return a, a.loadProfile()
			}
		case "c":
			tok, ok := a.session.Token()
			if !ok {
				return a, nil
			}
			copyText := a.copyText
			return a, func() tea.Msg {
				return copyResultMsg{err: copyText(tok)}
			}
		case "o":
			return a, a.open(a.router.Current())
		}
	}
	return a, nil
}

func (a App) open(route string) tea.Cmd {
	if a.webBase == "" {
		return nil
	}
	url, err := browser.URL(a.webBase, route)
	if err != nil {
		return func() tea.Msg { return openResultMsg{err: err} }
	}
	openURL := a.openURL
	return func() tea.Msg {
		return openResultMsg{url: url, err: openURL(url)}
	}
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width)

	st := a.session.State()
	role, hasRole := a.session.Role()
	sub := ""
	if st.User != nil && st.User.Email != "" {
		sub = metaStyle.Render(st.User.Email)
		if hasRole {
			sub += " " + RoleBadge(role)
		}
	}
	header += "\n" + center(sub, a.width)

	var body, help string
	path := a.router.Path()
	switch {
	case a.helpOpen:
		body = helpView(a.helpCursor, a.webBase, a.version)
		help = helpBar([2]string{"j/k", "nav"}, [2]string{"enter", "open"}, [2]string{"esc", "close"})

	case path == nav.LoginPath:
		form := a.login
		if a.router.Query(nav.SessionExpiredParam) == "expired" && form.notice == "" {
			form.notice = "Your session has expired. Please sign in again."
		}
		if st.Authenticated && !hasRole {
			form.notice = "Signed in, but no role is assigned to this account."
		}
		body = form.View(a.width)
		help = helpBar([2]string{"tab", "next"}, [2]string{"enter", "sign in"}, [2]string{"ctrl+r", "register"}, [2]string{"ctrl+c", "quit"})

	case path == RegisterPath:
		body = a.register.View(a.width)
		help = helpBar([2]string{"tab", "next"}, [2]string{"ctrl+s", "submit"}, [2]string{"esc", "sign in"}, [2]string{"ctrl+c", "quit"})

	case path == nav.UnauthorizedPath:
		body = unauthorizedView(role, hasRole)
		help = helpBar([2]string{"enter", "my dashboard"}, [2]string{"x", "logout"}, [2]string{"q", "quit"})

	case strings.HasPrefix(path, nav.DashboardPath):
		claims, _ := a.session.Claims()
		body = a.dash.View(sessionView{
			route:   a.router.Current(),
			state:   st,
			role:    role,
			hasRole: hasRole,
			claims:  claims,
			now:     a.now(),
		})
		help = helpBar([2]string{"r", "refresh"}, [2]string{"c", "copy token"}, [2]string{"o", "open web"}, [2]string{"x", "logout"}, [2]string{"h", "help"}, [2]string{"q", "quit"})

	default:
		body = fmt.Sprintf("\n  %s %s\n", dimStyle.Render("nothing at"), normalStyle.Render(a.router.Current()))
		help = helpBar([2]string{"x", "logout"}, [2]string{"q", "quit"})
	}

	// Chrome budget: header(2) + help(1) = 3 lines + body
	const chrome = 3
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s", header, body, help)
}
