package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcitech/arcdash/internal/access"
	"github.com/arcitech/arcdash/internal/browser"
	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/session"
	"github.com/arcitech/arcdash/internal/tui"
)

// openURL is replaced in tests.
var openURL = browser.Open

// webRoute picks the route to open in the browser: the login page without a
// live session, otherwise the requested route (or the role's landing) after
// the route guard has had its say.
func webRoute(e *env, requested string) string {
	e.session.Restore()
	switch e.session.Status() {
	case session.StatusExpired:
		e.session.Expire()
		e.bus.Next()
		return nav.ExpiredLoginPath()
	case session.StatusAuthenticated:
	default:
		return nav.LoginPath
	}

	if requested == "" {
		requested = nav.DashboardPath
	}
	role, ok := e.session.Role()
	route := access.Resolve(requested, role, ok)
	if dec := access.NewGuard(nil).Check(route, role, ok); !dec.Allowed {
		return dec.Redirect
	}
	return route
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "open [route]",
		Short: "Open your dashboard in a browser",
		Long: `Open the web dashboard for your role, or a specific route.

Examples:
  arcdash open
  arcdash open /dashboard/developer
  arcdash open --print`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts.debug)
			if err != nil {
				return err
			}
			defer e.Close() //nolint:errcheck

			var requested string
			if len(args) == 1 {
				requested = args[0]
				if !strings.HasPrefix(requested, "/") {
					requested = "/" + requested
				}
			}
			u, err := browser.URL(e.cfg.WebBaseURL, webRoute(e, requested))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printOnly {
				fmt.Fprintln(out, u)
				return nil
			}
			if err := openURL(u); err != nil {
				e.logger.Warn("open browser", "url", u, "error", err)
				fmt.Fprintf(out, "Could not open browser. Visit this URL manually:\n  %s\n", u)
				return nil
			}
			fmt.Fprintf(out, "Opened %s\n", u)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the URL instead of opening it")
	return cmd
}

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List dashboard routes and the roles allowed on each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(opts.debug)
			if err != nil {
				return err
			}
			defer e.Close() //nolint:errcheck

			role, ok := e.session.Role()
			guard := access.NewGuard(nil)
			out := cmd.OutOrStdout()
			printBanner(out)
			for _, r := range access.DefaultPolicy().Rules() {
				badges := make([]string, len(r.Roles))
				for i, allowed := range r.Roles {
					badges[i] = tui.RoleBadge(allowed)
				}
				mark := " "
				if e.session.IsAuthenticated() && guard.Check(r.Path, role, ok).Allowed {
					mark = okStyle.Render("*")
				}
				fmt.Fprintf(out, "  %s %s  %s\n", mark, valueStyle.Render(fmt.Sprintf("%-24s", r.Path)), strings.Join(badges, " "))
			}
			fmt.Fprintf(out, "\n  %s\n\n", hintStyle.Render("* open to your session"))
			return nil
		},
	}
}
