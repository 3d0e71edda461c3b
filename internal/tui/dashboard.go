package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcitech/arcdash/internal/session"
	"github.com/arcitech/arcdash/pkg/domain"
)

// dashboardModel is the role landing surface: who is signed in, which role
// the session carries and when the token runs out.
type dashboardModel struct {
	profile *domain.UserProfile
	loading bool
	err     string
	status  string
}

type sessionView struct {
	route   string
	state   session.State
	role    domain.Role
	hasRole bool
	claims  *session.Claims
	now     time.Time
}

func (m dashboardModel) View(sv sessionView) string {
	var b strings.Builder

	title := "Dashboard"
	if sv.hasRole {
		title = fmt.Sprintf("%s dashboard", strings.ToLower(sv.role.Kind().String()))
	}
	fmt.Fprintf(&b, "\n  %s  %s\n\n", sectionHeaderStyle.Render(title), metaStyle.Render(sv.route))

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s  %s\n", dimStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}

	switch {
	case m.profile != nil:
		row("Name", selectedStyle.Render(m.profile.FullName))
		row("Email", normalStyle.Render(m.profile.Email))
		if m.profile.LastLoginAt != nil {
			row("Last login", normalStyle.Render(m.profile.LastLoginAt.Local().Format("2006-01-02 15:04")))
		}
		if len(m.profile.Permissions) > 0 {
			row("Permissions", normalStyle.Render(strings.Join(m.profile.Permissions, ", ")))
		}
	case sv.state.User != nil && sv.state.User.Email != "":
		row("Email", normalStyle.Render(sv.state.User.Email))
	}

	if sv.hasRole {
		row("Role", RoleBadge(sv.role))
	} else {
		row("Role", dimStyle.Render("none"))
	}

	if sv.claims != nil {
		if sv.claims.Role != "" && domain.NormalizeRole(sv.claims.Role) != sv.role {
			row("Token role", warnStyle.Render(sv.claims.Role))
		}
		if sv.claims.ExpiresAt != nil {
			row("Session", normalStyle.Render("expires "+formatRemaining(*sv.claims.ExpiresAt, sv.now)))
		} else {
			row("Session", normalStyle.Render("no expiry"))
		}
	}

	b.WriteString("\n")
	switch {
	case m.loading:
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render("loading profile..."))
	case m.err != "":
		fmt.Fprintf(&b, "  %s\n", errorStyle.Render(m.err))
	}
	if m.status != "" {
		fmt.Fprintf(&b, "  %s\n", okStyle.Render(m.status))
	}
	return b.String()
}

func unauthorizedView(role domain.Role, hasRole bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", errorStyle.Bold(true).Render("Access denied"))
	fmt.Fprintf(&b, "  %s\n", normalStyle.Render("You don't have permission to view this page."))
	if hasRole {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("Signed in as"), RoleBadge(role))
	}
	return b.String()
}
