// Package session owns the client-side authentication lifecycle: acquiring a
// token, persisting it, and answering "who is logged in and is it still
// valid".
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/tokenstore"
	"github.com/arcitech/arcdash/pkg/client"
	"github.com/arcitech/arcdash/pkg/domain"
)

// User-facing messages.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidResponse    = "Invalid response from server"
	msgRegistrationFailed = "Registration failed"
	msgNoResponse         = "No response from server. Please check if the server is running."
)

// AuthAPI is the subset of the API client the service needs.
type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegistrationResult, error)
}

// Status is the lifecycle position of the current session.
type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticating
	StatusAuthenticated
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

// State is the UI-facing snapshot of the session.
type State struct {
	Token         string
	User          *domain.User
	Authenticated bool
}

// Service orchestrates login, registration and logout on top of a token
// store. It is safe for concurrent use.
type Service struct {
	api     AuthAPI
	store   tokenstore.Store
	signals nav.Emitter
	logger  *slog.Logger
	now     func() time.Time

	mu             sync.Mutex
	user           *domain.User
	authenticating bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSignals sets where logout and expiry navigation signals go.
func WithSignals(e nav.Emitter) Option {
	return func(s *Service) { s.signals = e }
}

// NewService creates a Service.
func NewService(api AuthAPI, store tokenstore.Store, opts ...Option) *Service {
	s := &Service{
		api:    api,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges credentials for a token, then persists the token and, if
// the server sent one, the role.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.SessionData, error) {
	s.setAuthenticating(true)
	defer s.setAuthenticating(false)

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		s.logger.Warn("login failed", "email", req.Email, "error", err)
		return nil, loginError(err)
	}
	if resp == nil || resp.Token == "" {
		s.logger.Warn("login response without token", "email", req.Email)
		return nil, &AuthError{Code: ErrInvalidResponse, Message: msgInvalidResponse}
	}

	if err := s.store.Set(resp.Token); err != nil {
		return nil, fmt.Errorf("session.Login: persist token: %w", err)
	}
	if resp.Role != "" {
		if err := s.store.SetRole(resp.Role); err != nil {
			return nil, fmt.Errorf("session.Login: persist role: %w", err)
		}
	}

	user := domain.User{
		ID:       resp.ID,
		Email:    resp.Email,
		FullName: resp.FullName,
		Role:     domain.NormalizeRole(resp.Role),
	}
	if user.Email == "" {
		user.Email = req.Email
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.Info("logged in", "email", user.Email, "role", user.Role)
	return &domain.SessionData{Token: resp.Token, User: user}, nil
}

func loginError(err error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message
		if msg == "" {
			msg = msgInvalidCredentials
		}
		return &AuthError{Code: ErrInvalidCredentials, Message: msg, Cause: err}
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return &AuthError{Code: ErrNoResponse, Message: msgNoResponse, Cause: err}
	}
	var respErr *client.ResponseError
	if errors.As(err, &respErr) {
		return &AuthError{Code: ErrInvalidResponse, Message: msgInvalidResponse, Cause: err}
	}
	return &AuthError{Code: ErrInvalidCredentials, Message: msgInvalidCredentials, Cause: err}
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegistrationResult, error) {
	res, err := s.api.Register(ctx, req)
	if err != nil {
		s.logger.Warn("registration failed", "email", req.Email, "error", err)
		return nil, registerError(err)
	}
	s.logger.Info("registered", "email", req.Email)
	return res, nil
}

func registerError(err error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message
		if msg == "" {
			msg = msgRegistrationFailed
		}
		return &AuthError{Code: ErrRegistrationRejected, Message: msg, Cause: err}
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return &AuthError{Code: ErrNoResponse, Message: msgNoResponse, Cause: err}
	}
	cause := err
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) {
		cause = reqErr.Err
	}
	return &AuthError{Code: ErrRequestFailed, Message: "Failed to make request: " + cause.Error(), Cause: err}
}

// Logout discards the token and cached role and asks for the login surface.
// It never fails and is safe to call repeatedly.
func (s *Service) Logout() {
	s.end(nav.SignalLoggedOut, "logout")
}

// Expire ends a session whose token was found expired locally, asking for
// the login surface with the session-expired marker.
func (s *Service) Expire() {
	s.end(nav.SignalSessionExpired, "expiry")
}

func (s *Service) end(kind nav.SignalKind, source string) {
	if err := tokenstore.Purge(s.store); err != nil {
		s.logger.Warn("clear session", "reason", source, "error", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.logger.Info("session ended", "reason", source)
	if s.signals != nil {
		s.signals.Emit(nav.Signal{Kind: kind, Source: source})
	}
}

// Token returns the stored token.
func (s *Service) Token() (string, bool) {
	return s.store.Get()
}

// IsAuthenticated reports whether a token is stored and, if it carries an
// expiry, that expiry is strictly after now. Undecodable tokens are not
// authenticated.
func (s *Service) IsAuthenticated() bool {
	return s.tokenStatus() == StatusAuthenticated
}

// Status evaluates the session at call time.
func (s *Service) Status() Status {
	s.mu.Lock()
	authenticating := s.authenticating
	s.mu.Unlock()
	if authenticating {
		return StatusAuthenticating
	}
	return s.tokenStatus()
}

func (s *Service) tokenStatus() Status {
	tok, ok := s.store.Get()
	if !ok {
		return StatusAnonymous
	}
	claims, err := Decode(tok)
	if err != nil {
		s.logger.Debug("stored token does not decode", "error", err)
		return StatusAnonymous
	}
	if claims.ExpiredAt(s.now()) {
		return StatusExpired
	}
	return StatusAuthenticated
}

// Role returns the role cached at login, normalized. It is never derived
// from the token; see Claims for that.
func (s *Service) Role() (domain.Role, bool) {
	raw, ok := s.store.GetRole()
	if !ok {
		return "", false
	}
	return domain.NormalizeRole(raw), true
}

// Claims decodes the stored token.
func (s *Service) Claims() (*Claims, error) {
	tok, ok := s.store.Get()
	if !ok {
		return nil, ErrNoSession
	}
	return Decode(tok)
}

// Restore rebuilds the in-memory user from persisted state, as done once at
// startup. It returns the resulting state.
func (s *Service) Restore() State {
	if !s.IsAuthenticated() {
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		return s.State()
	}

	s.mu.Lock()
	if s.user == nil {
		u := domain.User{}
		if claims, err := s.Claims(); err == nil {
			u.Email = claims.Email
			u.Role = domain.NormalizeRole(claims.Role)
		}
		if role, ok := s.Role(); ok {
			u.Role = role
		}
		s.user = &u
	}
	s.mu.Unlock()
	return s.State()
}

// State returns a snapshot of the session. The in-memory user is dropped
// once the token is gone, whoever removed it.
func (s *Service) State() State {
	tok, _ := s.store.Get()
	authenticated := s.IsAuthenticated()

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok == "" {
		s.user = nil
	}
	st := State{Token: tok, Authenticated: authenticated}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// UpdateUser replaces the in-memory user, for example after a profile fetch.
func (s *Service) UpdateUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

func (s *Service) setAuthenticating(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticating = v
}
