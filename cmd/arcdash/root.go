package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/tui"
)

type rootOptions struct {
	debug bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "arcdash",
		Short: "Arc-i-Tech dashboard in your terminal",
		Long: `arcdash signs you in to Arc-i-Tech and opens the dashboard for your role.

Run without a subcommand to launch the interactive dashboard.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log every API response to the state dir log")

	cmd.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newOpenCmd(opts),
		newRoutesCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func runDashboard(ctx context.Context, opts *rootOptions) error {
	e, err := newEnv(opts.debug)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logout from another terminal reaches the dashboard through the watcher.
	watcher, err := e.store.Watch(e.logger)
	if err != nil {
		e.logger.Warn("token store watcher unavailable", "error", err)
	} else {
		defer watcher.Close() //nolint:errcheck
		go watcher.Run(ctx)
	}

	app := tui.NewApp(tui.Deps{
		Session:    e.session,
		Profiles:   e.api,
		Bus:        e.bus,
		Router:     nav.NewRouter(nav.DashboardPath),
		Watcher:    watcher,
		WebBaseURL: e.cfg.WebBaseURL,
		Version:    version,
		Logger:     e.logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "arcdash "+version)
		},
	}
}
