package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcitech/arcdash/internal/access"
	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/session"
	"github.com/arcitech/arcdash/internal/tui"
	"github.com/arcitech/arcdash/pkg/client"
	"github.com/arcitech/arcdash/pkg/domain"
)

// userError replaces err with the message a user should see. Session errors
// already carry one; anything else goes through the client's friendly text.
func userError(err error) error {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return errors.New(authErr.Message)
	}
	var httpErr *client.HTTPError
	var netErr *client.NetworkError
	var respErr *client.ResponseError
	if errors.As(err, &httpErr) || errors.As(err, &netErr) || errors.As(err, &respErr) {
		return errors.New(client.FriendlyMessage(err))
	}
	return err
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in and store the session token in the state directory.

Missing credentials are prompted for when running in a terminal.

Examples:
  arcdash login
  arcdash login --email dev@arcitech.io`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := promptLogin(&email, &password); err != nil {
				return err
			}
			e, err := newEnv(opts.debug)
			if err != nil {
				return err
			}
			defer e.Close() //nolint:errcheck

			data, err := e.session.Login(cmd.Context(), domain.LoginRequest{Email: email, Password: password})
			if err != nil {
				return userError(err)
			}
			role, ok := e.session.Role()
			printSignedIn(cmd.OutOrStdout(), data.User, role, ok, access.Landing(role, ok))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var in registerInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an Arc-i-Tech account. Registering does not sign you in.

Examples:
  arcdash register
  arcdash register --name "Ada Lovelace" --email ada@arcitech.io --password s3cret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := promptRegister(&in); err != nil {
				return err
			}
			e, err := newEnv(opts.debug)
			if err != nil {
				return err
			}
			defer e.Close() //nolint:errcheck

			res, err := e.session.Register(cmd.Context(), domain.RegisterRequest{
				FullName:    in.fullName,
				Email:       in.email,
				Password:    in.password,
				ProgramType: in.program,
			})
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			printBanner(out)
			fmt.Fprintf(out, "  %s\n", okStyle.Render("Account created."))
			if res != nil && res.Message != "" {
				fmt.Fprintf(out, "  %s\n", labelStyle.Render(res.Message))
			}
			fmt.Fprintf(out, "\n  %s\n\n", hintStyle.Render("Sign in with: arcdash login --email "+in.email))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.fullName, "name", "", "full name")
	cmd.Flags().StringVar(&in.email, "email", "", "account email")
	cmd.Flags().StringVar(&in.password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().StringVar(&in.program, "program", "", "program type (optional)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear your session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(opts.debug)
			if err != nil {
				return err
			}
			defer e.Close() //nolint:errcheck

			out := cmd.OutOrStdout()
			_, hadToken := e.session.Token()
			e.session.Logout()
			if !hadToken {
				e.bus.Next()
				fmt.Fprintln(out, "Already logged out.")
				return nil
			}
			drainSignals(out, e.bus)
			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Long: `Show who is signed in, the cached role and when the token expires.

Unless --offline is set, the session is also checked against the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(opts.debug)
			if err != nil {
				return err
			}
			defer e.Close() //nolint:errcheck

			out := cmd.OutOrStdout()
			st := e.session.Restore()
			switch e.session.Status() {
			case session.StatusExpired:
				e.session.Expire()
				e.bus.Next()
				printSignedOut(out, "Your session has expired. Please sign in again.")
				return nil
			case session.StatusAuthenticated:
			default:
				printSignedOut(out, "Not signed in.")
				return nil
			}

			printBanner(out)
			printSession(out, e, st)

			if offline {
				fmt.Fprintln(out)
				return nil
			}
			profile, err := e.api.GetProfile(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "\n  %s\n", warnStyle.Render(client.FriendlyMessage(err)))
				if slices.Contains(drainSignals(out, e.bus), nav.SignalSessionExpired) {
					fmt.Fprintf(out, "\n  %s\n", hintStyle.Render("To sign in: arcdash login"))
				}
				fmt.Fprintln(out)
				return nil
			}
			e.session.UpdateUser(profile.User())
			printRow(out, "Name", valueStyle.Render(profile.FullName))
			printRow(out, "Verified", okStyle.Render("yes"))
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "do not contact the API")
	return cmd
}

func printSession(w io.Writer, e *env, st session.State) {
	if st.User != nil && st.User.Email != "" {
		printRow(w, "Email", valueStyle.Render(st.User.Email))
	}
	role, ok := e.session.Role()
	if ok {
		printRow(w, "Role", tui.RoleBadge(role))
	} else {
		printRow(w, "Role", warnStyle.Render("none assigned"))
	}
	printRow(w, "Dashboard", valueStyle.Render(access.Landing(role, ok)))

	claims, err := e.session.Claims()
	if err != nil {
		return
	}
	if claims.Role != "" && domain.NormalizeRole(claims.Role) != role {
		printRow(w, "Token role", warnStyle.Render(claims.Role))
	}
	printRow(w, "Expires", valueStyle.Render(formatExpiry(claims.ExpiresAt, time.Now())))
}
