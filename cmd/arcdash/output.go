package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/tui"
	"github.com/arcitech/arcdash/pkg/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474"))
)

// printBanner prints the spaced ARCDASH wordmark.
func printBanner(w io.Writer) {
	fmt.Fprintf(w, "\n  %s\n\n", titleStyle.Render("A R C D A S H"))
}

func printRow(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s  %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
}

func printSignedIn(w io.Writer, user domain.User, role domain.Role, hasRole bool, landing string) {
	printBanner(w)
	fmt.Fprintf(w, "  %s\n\n", okStyle.Render("Signed in."))
	printRow(w, "Email", valueStyle.Render(user.Email))
	if user.FullName != "" {
		printRow(w, "Name", valueStyle.Render(user.FullName))
	}
	if hasRole {
		printRow(w, "Role", tui.RoleBadge(role))
	} else {
		printRow(w, "Role", warnStyle.Render("none assigned"))
	}
	printRow(w, "Dashboard", valueStyle.Render(landing))
	fmt.Fprintf(w, "\n  %s\n\n", hintStyle.Render("Run arcdash to open it."))
}

func printSignedOut(w io.Writer, notice string) {
	printBanner(w)
	if notice != "" {
		fmt.Fprintf(w, "  %s\n\n", warnStyle.Render(notice))
	}
	fmt.Fprintf(w, "  %s\n\n", hintStyle.Render("To sign in: arcdash login"))
}

// signalNotice is what a CLI user is told when a navigation signal was
// raised during a command. The CLI has no router, so the target route is
// spelled out as a next step instead.
func signalNotice(s nav.Signal) string {
	switch s.Kind {
	case nav.SignalSessionExpired:
		return "Your session has expired. Please sign in again."
	case nav.SignalForbidden:
		return "You don't have permission to perform this action."
	case nav.SignalLoggedOut:
		return "Logged out."
	default:
		return ""
	}
}

// drainSignals reports every pending signal on the bus and returns the
// kinds it saw.
func drainSignals(w io.Writer, bus *nav.Bus) []nav.SignalKind {
	var kinds []nav.SignalKind
	for {
		s, ok := bus.Next()
		if !ok {
			return kinds
		}
		kinds = append(kinds, s.Kind)
		if msg := signalNotice(s); msg != "" {
			fmt.Fprintf(w, "  %s\n", warnStyle.Render(msg))
		}
	}
}

func formatExpiry(exp *time.Time, now time.Time) string {
	if exp == nil {
		return "no expiry"
	}
	at := exp.Local().Format(time.DateTime)
	if !exp.After(now) {
		return "expired " + at
	}
	d := exp.Sub(now).Round(time.Minute)
	if d < time.Minute {
		return at + " (in under a minute)"
	}
	return fmt.Sprintf("%s (in %s)", at, strings.TrimSuffix(d.String(), "0s"))
}
