package access

import (
	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/pkg/domain"
)

// Landing returns the route a role lands on after login or session
// restore. An absent role goes to login; a role outside the fixed set goes
// to the unauthorized surface.
func Landing(role domain.Role, ok bool) string {
	if !ok {
		return nav.LoginPath
	}
	switch role.Kind() {
	case domain.RoleKindSuperAdmin:
		return nav.DashboardPath + "/super-admin"
	case domain.RoleKindSubAdmin:
		return nav.DashboardPath + "/sub-admin"
	case domain.RoleKindDeveloper:
		return nav.DashboardPath + "/developer"
	case domain.RoleKindUser:
		return nav.DashboardPath + "/user"
	case domain.RoleKindUnknown:
		return nav.UnauthorizedPath
	}
	return nav.UnauthorizedPath
}

// Resolve maps the bare dashboard route to the role's landing route and
// leaves every other route unchanged.
func Resolve(route string, role domain.Role, ok bool) string {
	if nav.PathOf(route) != nav.DashboardPath {
		return route
	}
	return Landing(role, ok)
}
