// Package tokenstore persists the session token and the cached role.
//
// Stores are mechanical key/value access. They never inspect the token and
// never enforce expiry; that is the session package's job.
package tokenstore

import "errors"

// Keys under which the token and the cached role are persisted.
const (
	TokenKey = "arcitech_token"
	RoleKey  = "user_role"
)

// Store persists the session token and the last-known server role.
// Each key is read and written independently; there is no transaction
// spanning both. Clearing a missing key is a no-op.
type Store interface {
	Set(token string) error
	Get() (string, bool)
	Clear() error
	SetRole(role string) error
	GetRole() (string, bool)
	ClearRole() error
}

// Purge removes both the token and the cached role. Both removals are
// attempted even if the first one fails.
func Purge(s Store) error {
	return errors.Join(s.Clear(), s.ClearRole())
}
