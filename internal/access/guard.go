package access

import (
	"sync"

	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/pkg/domain"
)

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool
	// Redirect is set when Allowed is false.
	Redirect string
	// Guarded reports whether a policy rule applied to the route.
	Guarded bool
}

// Guard checks routes against a Policy.
type Guard struct {
	policy *Policy
}

// NewGuard creates a Guard. A nil policy uses DefaultPolicy.
func NewGuard(p *Policy) *Guard {
	if p == nil {
		p = DefaultPolicy()
	}
	return &Guard{policy: p}
}

// Check decides whether role may open route. Unguarded routes are always
// allowed; an absent role is never allowed on a guarded one.
func (g *Guard) Check(route string, role domain.Role, ok bool) Decision {
	rule, guarded := g.policy.Lookup(nav.PathOf(route))
	if !guarded {
		return Decision{Allowed: true}
	}
	if ok && rule.allows(role) {
		return Decision{Allowed: true, Guarded: true}
	}
	return Decision{Guarded: true, Redirect: nav.UnauthorizedPath}
}

// Authorize reports whether role is in allowed. It is the contract of a
// single guarded surface without a policy lookup.
func Authorize(allowed []domain.Role, role domain.Role, ok bool) bool {
	return ok && Rule{Roles: allowed}.allows(role)
}

// Evaluator re-runs a Guard only when the route or role changed since the
// previous call.
type Evaluator struct {
	guard *Guard

	mu    sync.Mutex
	last  evalKey
	dec   Decision
	valid bool
	runs  int
}

type evalKey struct {
	route string
	role  domain.Role
	ok    bool
}

// NewEvaluator creates an Evaluator over g.
func NewEvaluator(g *Guard) *Evaluator {
	return &Evaluator{guard: g}
}

// Evaluate returns the decision for the inputs and whether it was
// recomputed.
func (e *Evaluator) Evaluate(route string, role domain.Role, ok bool) (Decision, bool) {
	key := evalKey{route: route, role: role, ok: ok}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid && e.last == key {
		return e.dec, false
	}
	e.last = key
	e.dec = e.guard.Check(route, role, ok)
	e.valid = true
	e.runs++
	return e.dec, true
}

// Reset forgets the memoized decision.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.valid = false
}
