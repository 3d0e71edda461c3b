package domain

// Role is a frontend-facing role alias. Values outside the fixed set are kept
// verbatim so callers can still display them; Kind classifies them.
type Role string

// Frontend role aliases.
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleSubAdmin   Role = "SUB_ADMIN"
	RoleDeveloper  Role = "DEVELOPER"
	RoleUser       Role = "USER"
)

// RoleCustomer is the server-issued name for the USER alias.
const RoleCustomer = "CUSTOMER"

// RoleKind is the exhaustive classification of a Role.
type RoleKind int

const (
	RoleKindUnknown RoleKind = iota
	RoleKindSuperAdmin
	RoleKindSubAdmin
	RoleKindDeveloper
	RoleKindUser
)

func (k RoleKind) String() string {
	switch k {
	case RoleKindSuperAdmin:
		return "super-admin"
	case RoleKindSubAdmin:
		return "sub-admin"
	case RoleKindDeveloper:
		return "developer"
	case RoleKindUser:
		return "user"
	default:
		return "unknown"
	}
}

// serverRoles maps server-issued role strings to their frontend alias.
var serverRoles = map[string]Role{
	"SUPER_ADMIN": RoleSuperAdmin,
	"SUB_ADMIN":   RoleSubAdmin,
	"DEVELOPER":   RoleDeveloper,
	RoleCustomer:  RoleUser,
}

// NormalizeRole maps a server-issued role to its frontend alias.
// Unknown values pass through unchanged.
func NormalizeRole(raw string) Role {
	if r, ok := serverRoles[raw]; ok {
		return r
	}
	return Role(raw)
}

// Kind classifies r. Only normalized aliases are known, so a raw CUSTOMER
// value is RoleKindUnknown until it goes through NormalizeRole.
func (r Role) Kind() RoleKind {
	switch r {
	case RoleSuperAdmin:
		return RoleKindSuperAdmin
	case RoleSubAdmin:
		return RoleKindSubAdmin
	case RoleDeveloper:
		return RoleKindDeveloper
	case RoleUser:
		return RoleKindUser
	default:
		return RoleKindUnknown
	}
}

// Known reports whether r is one of the fixed frontend aliases.
func (r Role) Known() bool {
	return r.Kind() != RoleKindUnknown
}

func (r Role) String() string {
	return string(r)
}
