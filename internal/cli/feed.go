package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/model"
)

// FeedOptions holds options for the feed command.
type FeedOptions struct {
	Category string
	Trending bool
	JSON     bool
}

// NewFeedCommand creates the feed command.
func NewFeedCommand(global *globalOptions) *cobra.Command {
	opts := &FeedOptions{}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the default feed, or the trending list",
		Long: `Load the feed once and print it.

Examples:
  # Mixed feed across every category
  dashboard feed

  # Technology news with movies and posts
  dashboard feed --category technology

  # Trending movies as JSON
  dashboard feed --trending --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd.Context(), cmd.OutOrStdout(), global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "c", model.CategoryAll, "news category")
	cmd.Flags().BoolVarP(&opts.Trending, "trending", "t", false, "print the trending list instead")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print JSON")
	return cmd
}

func runFeed(ctx context.Context, out io.Writer, global *globalOptions, opts *FeedOptions) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}
	logging.InitWriter(os.Stderr, cfg.Logging.Level)

	orch := newOrchestrator(cfg)
	var items []model.ContentItem
	if opts.Trending {
		items, err = orch.LoadTrending(ctx)
	} else {
		items, err = orch.LoadDefaultFeed(ctx, opts.Category)
	}
	if err != nil {
		return err
	}
	return printItems(out, items, opts.JSON)
}

// SearchOptions holds options for the search command.
type SearchOptions struct {
	JSON bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(global *globalOptions) *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search news, movies and social posts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd.OutOrStdout(), global, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print JSON")
	return cmd
}

func runSearch(ctx context.Context, out io.Writer, global *globalOptions, query string, opts *SearchOptions) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}
	logging.InitWriter(os.Stderr, cfg.Logging.Level)

	items, err := newOrchestrator(cfg).Search(ctx, query)
	if err != nil {
		return err
	}
	return printItems(out, items, opts.JSON)
}

// printItems writes items as a table, or as indented JSON.
func printItems(out io.Writer, items []model.ContentItem, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCATEGORY\tTITLE\tDETAIL")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.Type, item.Category, item.Title, detail(item))
	}
	return w.Flush()
}

func detail(item model.ContentItem) string {
	switch item.Type {
	case model.TypeMovie:
		return fmt.Sprintf("rating %.1f", item.Rating)
	case model.TypeSocial:
		return fmt.Sprintf("@%s  %d likes", item.Username, item.Likes)
	default:
		return item.Source
	}
}
