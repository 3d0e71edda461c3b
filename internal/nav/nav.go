// Package nav carries navigation intents from the session layer to the one
// place that is allowed to change the active route.
//
// Components that detect a session problem (the request pipeline, the
// session service) Emit a Signal. A single listener drains the Bus and
// applies the resulting route through a Router.
package nav

import (
	"net/url"
	"sync"
)

// Surface paths.
const (
	LoginPath        = "/auth/login"
	UnauthorizedPath = "/unauthorized"
	DashboardPath    = "/dashboard"
)

// SessionExpiredParam marks a login redirect caused by a rejected token.
const SessionExpiredParam = "session"

// SignalKind identifies why navigation is requested.
type SignalKind int

const (
	// SignalSessionExpired: the server rejected the token (401).
	SignalSessionExpired SignalKind = iota + 1
	// SignalForbidden: the session lacks permission (403).
	SignalForbidden
	// SignalLoggedOut: the user logged out.
	SignalLoggedOut
)

func (k SignalKind) String() string {
	switch k {
	case SignalSessionExpired:
		return "session_expired"
	case SignalForbidden:
		return "forbidden"
	case SignalLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Signal is a navigation intent.
type Signal struct {
	Kind SignalKind
	// Source is the request path or operation that raised the signal.
	Source string
}

// Target returns the route a signal navigates to.
func (s Signal) Target() string {
	switch s.Kind {
	case SignalSessionExpired:
		return ExpiredLoginPath()
	case SignalForbidden:
		return UnauthorizedPath
	default:
		return LoginPath
	}
}

// ExpiredLoginPath is the login route carrying the session-expired marker.
func ExpiredLoginPath() string {
	q := url.Values{}
	q.Set(SessionExpiredParam, "expired")
	return LoginPath + "?" + q.Encode()
}

// Emitter accepts navigation signals.
type Emitter interface {
	Emit(Signal)
}

// Bus is a buffered Emitter. A signal is dropped while another of the same
// kind is still waiting to be drained, so a burst of concurrent 401s
// produces one forced navigation.
type Bus struct {
	mu      sync.Mutex
	pending map[SignalKind]bool
	ch      chan Signal
}

// NewBus creates a Bus.
func NewBus() *Bus {
	return &Bus{
		pending: make(map[SignalKind]bool),
		ch:      make(chan Signal, 8),
	}
}

// Emit queues s unless a signal of the same kind is already pending.
// It never blocks.
func (b *Bus) Emit(s Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending[s.Kind] {
		return
	}
	select {
	case b.ch <- s:
		b.pending[s.Kind] = true
	default:
	}
}

// Signals is drained by the single navigation listener. Receivers must call
// Done after handling each signal.
func (b *Bus) Signals() <-chan Signal {
	return b.ch
}

// Done re-arms the kind of a handled signal.
func (b *Bus) Done(s Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, s.Kind)
}

// Next returns the next pending signal without blocking.
func (b *Bus) Next() (Signal, bool) {
	select {
	case s := <-b.ch:
		b.Done(s)
		return s, true
	default:
		return Signal{}, false
	}
}
