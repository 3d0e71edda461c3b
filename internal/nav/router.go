package nav

import (
	"net/url"
	"sync"
)

// Router holds the active route. It is the "current route" capability the
// guard and the role router read, and the only thing that changes it.
type Router struct {
	mu      sync.RWMutex
	current string
	history []string
}

// NewRouter creates a Router positioned at start.
func NewRouter(start string) *Router {
	return &Router{current: start}
}

// Current returns the active route, including any query string.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Path returns the active route without its query string.
func (r *Router) Path() string {
	return PathOf(r.Current())
}

// Navigate replaces the active route. It reports whether the route changed.
func (r *Router) Navigate(route string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route == r.current {
		return false
	}
	r.history = append(r.history, r.current)
	r.current = route
	return true
}

// Back returns to the previous route, if any.
func (r *Router) Back() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return false
	}
	r.current = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	return true
}

// Handle applies a signal and returns the new route.
func (r *Router) Handle(s Signal) string {
	target := s.Target()
	r.Navigate(target)
	return target
}

// Query returns a query parameter of the active route.
func (r *Router) Query(key string) string {
	u, err := url.Parse(r.Current())
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

// PathOf strips the query string and fragment from a route.
func PathOf(route string) string {
	u, err := url.Parse(route)
	if err != nil {
		return route
	}
	return u.Path
}
