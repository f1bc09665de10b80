// Package cli implements the dashboard command line: the interactive
// dashboard itself, the API proxy and one-shot feed and search commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/dashboard/internal/aggregate"
	"github.com/abelbrown/dashboard/internal/app"
	"github.com/abelbrown/dashboard/internal/config"
	"github.com/abelbrown/dashboard/internal/content"
	"github.com/abelbrown/dashboard/internal/coord"
	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/prefs"
	"github.com/abelbrown/dashboard/internal/sources/movie"
	"github.com/abelbrown/dashboard/internal/sources/news"
	"github.com/abelbrown/dashboard/internal/sources/social"
	"github.com/abelbrown/dashboard/internal/store"
	"github.com/abelbrown/dashboard/internal/ui"
)

// globalOptions are flags shared by every command.
type globalOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command. Without a subcommand it runs the
// interactive dashboard.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Dashboard - news, movies and social posts in one terminal feed",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.dashboard/config.yaml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFeedCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))

	return cmd
}

// path returns the --config value, or the default config file.
func (o *globalOptions) path() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return config.ConfigPath()
}

// load reads the configuration named by --config, or the default file.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.path())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newOrchestrator wires the three source adapters from cfg.
func newOrchestrator(cfg *config.Config) *aggregate.Orchestrator {
	src := cfg.Sources
	return aggregate.New(
		news.New(src.BaseURL, src.Timeout, src.RequestsPerSecond),
		movie.New(src.BaseURL, src.Timeout, src.RequestsPerSecond),
		social.New(src.SocialFetchDelay, src.SocialSearchDelay),
		src.Timeout,
	)
}

// openStore opens the SQLite database, creating its directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.Storage.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return store.Open(path)
}

// runTUI runs the interactive dashboard until the user quits.
func runTUI(parent context.Context, opts *globalOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	// The terminal belongs to the view; logs go to a file.
	if err := logging.Init(cfg.Logging.Dir, cfg.Logging.Level); err != nil {
		return err
	}
	defer logging.Close()

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ps := prefs.Open(db)
	ctrl := app.New(newOrchestrator(cfg), content.NewStore(), ps, app.Options{
		Persister:      db,
		SearchDebounce: cfg.UI.SearchDebounce,
	})
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	coordinator := coord.NewCoordinator(ctrl, cfg.UI.RefreshInterval, func() bool {
		return ps.State().Preferences.AutoRefresh
	})
	coordinator.Start(ctx)

	program := tea.NewProgram(ui.NewApp(ctx, ctrl), tea.WithAltScreen())
	_, err = program.Run()

	// Graceful shutdown
	cancel()
	coordinator.Wait()

	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
