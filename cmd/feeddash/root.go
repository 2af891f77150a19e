package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thomaskoefod/feeddash/internal/config"
	"github.com/thomaskoefod/feeddash/internal/feed"
	"github.com/thomaskoefod/feeddash/internal/saved"
	"github.com/thomaskoefod/feeddash/internal/scheduler"
	"github.com/thomaskoefod/feeddash/internal/tui"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "feeddash",
		Short:         "Terminal dashboard for an RSS aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "path to config file")

	root.AddCommand(newOPMLCmd(&configPath), newLogoutCmd(&configPath), newConfigCmd(&configPath))
	return root
}

func runDashboard(ctx context.Context, configPath string) error {
	a, err := openApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	set := loadSaved(ctx, a.db, a.log)

	deps := tui.Deps{
		API:     a.client,
		Session: a.session,
		Cache:   a.cache,
		Saved:   set,
		Prefs:   a.db,
		Reader:  feed.NewReader(a.cfg.Feeds.ReaderTimeout),
		UI:      a.cfg.UI,
		Log:     a.log,
	}
	if a.cfg.Feeds.ShouldVerify() {
		deps.Prober = feed.NewFetcher(a.cfg.Feeds.ReaderTimeout)
	}

	p := tea.NewProgram(tui.New(deps),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	sched := scheduler.New(a.log)
	if err := sched.Every(a.cfg.UI.RefreshInterval, "refresh", func() {
		p.Send(tui.RefreshMsg{})
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// loadSaved starts with no bookmarks when the stored ones cannot be read.
// The next toggle overwrites the unreadable value.
func loadSaved(ctx context.Context, store saved.Store, log logrus.FieldLogger) *saved.Set {
	set, err := saved.Load(ctx, store)
	if err != nil {
		log.WithError(err).Warn("ignoring unreadable saved posts")
		return saved.New(store)
	}
	return set
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
