// Package access decides which surfaces a role may open and where a role
// lands after login.
package access

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arcitech/arcdash/pkg/domain"
)

//go:embed policy.yaml
var builtinPolicy []byte

// Rule allows Roles on Path and every route below it.
type Rule struct {
	Path  string        `yaml:"path"`
	Roles []domain.Role `yaml:"roles"`
}

// Policy is an immutable route to allowed-roles map.
type Policy struct {
	// rules are sorted longest path first so the most specific rule wins.
	rules []Rule
}

type policyFile struct {
	Routes []Rule `yaml:"routes"`
}

// DefaultPolicy returns the policy compiled into the binary. It panics if
// the embedded file is invalid, which a test guards against.
func DefaultPolicy() *Policy {
	p, err := ParsePolicy(builtinPolicy)
	if err != nil {
		panic(fmt.Sprintf("access: embedded policy: %v", err))
	}
	return p
}

// ParsePolicy parses and validates a YAML policy.
func ParsePolicy(data []byte) (*Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	return NewPolicy(f.Routes...)
}

// NewPolicy builds a Policy from rules.
func NewPolicy(rules ...Rule) (*Policy, error) {
	seen := make(map[string]bool, len(rules))
	p := &Policy{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("rule %q: path must start with /", r.Path)
		}
		path := strings.TrimSuffix(r.Path, "/")
		if path == "" {
			path = "/"
		}
		if seen[path] {
			return nil, fmt.Errorf("rule %q: duplicate path", r.Path)
		}
		seen[path] = true
		if len(r.Roles) == 0 {
			return nil, fmt.Errorf("rule %q: no roles", r.Path)
		}
		for _, role := range r.Roles {
			if !role.Known() {
				return nil, fmt.Errorf("rule %q: unknown role %q", r.Path, role)
			}
		}
		p.rules = append(p.rules, Rule{Path: path, Roles: append([]domain.Role(nil), r.Roles...)})
	}
	sort.SliceStable(p.rules, func(i, j int) bool {
		return len(p.rules[i].Path) > len(p.rules[j].Path)
	})
	return p, nil
}

// Lookup returns the rule guarding route, if any.
func (p *Policy) Lookup(route string) (Rule, bool) {
	for _, r := range p.rules {
		if covers(r.Path, route) {
			return r.clone(), true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the policy's rules.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	for i, r := range p.rules {
		out[i] = r.clone()
	}
	return out
}

func (r Rule) clone() Rule {
	r.Roles = slices.Clone(r.Roles)
	return r
}

func covers(prefix, route string) bool {
	if prefix == "/" {
		return true
	}
	return route == prefix || strings.HasPrefix(route, prefix+"/")
}

func (r Rule) allows(role domain.Role) bool {
	return slices.Contains(r.Roles, role)
}
