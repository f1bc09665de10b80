package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/proxy"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(global *globalOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the news and movie API proxy",
		Long: `Run the HTTP proxy the dashboard's news and movie sources read from.

Upstream keys come from NEWS_API_KEY and TMDB_API_KEY. Without a key the
proxy serves built-in sample data. Set REDIS_ADDRESS to cache responses.

Examples:
  # Serve on the configured address (default :8080)
  dashboard serve

  # Serve on a specific address
  dashboard serve --addr 127.0.0.1:9090
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides proxy.addr)")
	return cmd
}

func runServe(parent context.Context, global *globalOptions, opts *ServeOptions) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}
	logging.InitWriter(os.Stderr, cfg.Logging.Level)

	if opts.Addr != "" {
		cfg.Proxy.Addr = opts.Addr
	}

	serverOpts, cleanup := proxy.OptionsFromConfig(cfg)
	defer cleanup()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return proxy.NewServer(serverOpts).Run(ctx)
}
