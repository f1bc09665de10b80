// Package aggregate fans out to the news, movie and social adapters and
// merges their results into one ordered feed.
//
// Each intent calls its sources concurrently and waits for all of them.
// A failing source is logged and contributes zero items; it never fails
// the intent. Only a failure of the fan-out itself (caller cancellation,
// a panicking branch) is reported, as *OrchestrationError.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/normalize"
	"github.com/abelbrown/dashboard/internal/sources"
	"github.com/abelbrown/dashboard/internal/sources/movie"
	"github.com/abelbrown/dashboard/internal/sources/news"
	"github.com/abelbrown/dashboard/internal/sources/social"
)

// Per-source caps applied before normalization.
const (
	FeedNewsCap   = 8
	FeedMovieCap  = 6
	FeedSocialCap = 4

	TrendingMovieCap = 8
	TrendingNewsCap  = 4

	SearchNewsCap   = 6
	SearchMovieCap  = 6
	SearchSocialCap = 4
)

// TrendingNewsCategory scopes the news half of the trending feed.
const TrendingNewsCategory = "technology"

// DefaultSourceTimeout bounds each source branch.
const DefaultSourceTimeout = 10 * time.Second

// NewsSource is implemented by news.Adapter.
type NewsSource interface {
	FetchDefault(ctx context.Context, category string) ([]news.Article, error)
	Search(ctx context.Context, query string) ([]news.Article, error)
}

// MovieSource is implemented by movie.Adapter.
type MovieSource interface {
	FetchDefault(ctx context.Context, category string) ([]movie.Movie, error)
	FetchTrending(ctx context.Context) ([]movie.Movie, error)
	Search(ctx context.Context, query string) ([]movie.Movie, error)
}

// SocialSource is implemented by social.Adapter.
type SocialSource interface {
	FetchDefault(ctx context.Context, hashtag string) ([]social.Post, error)
	Search(ctx context.Context, query string) ([]social.Post, error)
}

// Op names an orchestrator intent.
type Op string

const (
	OpFeed     Op = "feed"
	OpTrending Op = "trending"
	OpSearch   Op = "search"
)

// OrchestrationError reports a failure of the fan-out itself, as opposed to
// an individual source.
type OrchestrationError struct {
	Op  Op
	Err error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("%s orchestration failed: %v", e.Op, e.Err)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// Orchestrator merges the three sources.
type Orchestrator struct {
	news    NewsSource
	movies  MovieSource
	social  SocialSource
	timeout time.Duration
}

// New creates an Orchestrator. timeout <= 0 uses DefaultSourceTimeout.
func New(n NewsSource, m MovieSource, s SocialSource, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	return &Orchestrator{news: n, movies: m, social: s, timeout: timeout}
}

// LoadDefaultFeed returns [news(≤8), movie(≤6), social(≤4)]. category "all"
// or "" means unscoped news.
func (o *Orchestrator) LoadDefaultFeed(ctx context.Context, category string) ([]model.ContentItem, error) {
	if category == model.CategoryAll {
		category = ""
	}
	var newsItems, movieItems, socialItems []model.ContentItem

	err := o.fanOut(ctx, OpFeed,
		branch{"news", func(ctx context.Context) error {
			articles, err := o.news.FetchDefault(ctx, category)
			if err != nil {
				return err
			}
			newsItems = mapCapped(articles, FeedNewsCap, normalize.News)
			return nil
		}},
		branch{"movie", func(ctx context.Context) error {
			movies, err := o.movies.FetchDefault(ctx, category)
			if err != nil {
				return err
			}
			movieItems = mapCapped(movies, FeedMovieCap, func(m movie.Movie) model.ContentItem {
				return normalize.Movie(m, false)
			})
			return nil
		}},
		branch{"social", func(ctx context.Context) error {
			posts, err := o.social.FetchDefault(ctx, "")
			if err != nil {
				return err
			}
			socialItems = mapCapped(posts, FeedSocialCap, normalize.Social)
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}
	return concat(newsItems, movieItems, socialItems), nil
}

// LoadTrending returns [movies(≤8), technology news(≤4)], all flagged
// trending.
func (o *Orchestrator) LoadTrending(ctx context.Context) ([]model.ContentItem, error) {
	var movieItems, newsItems []model.ContentItem

	err := o.fanOut(ctx, OpTrending,
		branch{"movie", func(ctx context.Context) error {
			movies, err := o.movies.FetchTrending(ctx)
			if err != nil {
				return err
			}
			movieItems = mapCapped(movies, TrendingMovieCap, func(m movie.Movie) model.ContentItem {
				return normalize.Movie(m, true)
			})
			return nil
		}},
		branch{"news", func(ctx context.Context) error {
			articles, err := o.news.FetchDefault(ctx, TrendingNewsCategory)
			if err != nil {
				return err
			}
			newsItems = mapCapped(articles, TrendingNewsCap, func(a news.Article) model.ContentItem {
				item := normalize.News(a)
				item.Trending = true
				return item
			})
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}
	return concat(movieItems, newsItems), nil
}

// Search returns [news(≤6), movie(≤6), social(≤4)]. Blank queries return an
// empty result without calling any source.
func (o *Orchestrator) Search(ctx context.Context, query string) ([]model.ContentItem, error) {
	if sources.BlankQuery(query) {
		return []model.ContentItem{}, nil
	}
	var newsItems, movieItems, socialItems []model.ContentItem

	err := o.fanOut(ctx, OpSearch,
		branch{"news", func(ctx context.Context) error {
			articles, err := o.news.Search(ctx, query)
			if err != nil {
				return err
			}
			newsItems = mapCapped(articles, SearchNewsCap, normalize.News)
			return nil
		}},
		branch{"movie", func(ctx context.Context) error {
			movies, err := o.movies.Search(ctx, query)
			if err != nil {
				return err
			}
			movieItems = mapCapped(movies, SearchMovieCap, func(m movie.Movie) model.ContentItem {
				return normalize.Movie(m, false)
			})
			return nil
		}},
		branch{"social", func(ctx context.Context) error {
			posts, err := o.social.Search(ctx, query)
			if err != nil {
				return err
			}
			socialItems = mapCapped(posts, SearchSocialCap, normalize.Social)
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}
	return concat(newsItems, movieItems, socialItems), nil
}

// branch is one source call within an intent. run writes its result into a
// variable owned by that branch alone, so no locking is needed.
type branch struct {
	source string
	run    func(ctx context.Context) error
}

// errBranchPanic marks a branch that panicked.
var errBranchPanic = errors.New("source branch panicked")

// fanOut runs every branch concurrently and waits for all of them. Branch
// errors are logged and swallowed; siblings are never cancelled.
func (o *Orchestrator) fanOut(ctx context.Context, op Op, branches ...branch) error {
	var g errgroup.Group

	for _, b := range branches {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					logging.Error("Source branch panicked", "op", op, "source", b.source, "panic", r)
					err = fmt.Errorf("%w: %s: %v", errBranchPanic, b.source, r)
				}
			}()

			branchCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			start := time.Now()
			if runErr := b.run(branchCtx); runErr != nil {
				logging.Warn("Source failed, skipping",
					"op", op,
					"source", b.source,
					"upstream", sources.IsUpstream(runErr),
					"error", runErr,
					"duration", time.Since(start))
				return nil // never fail the group - errors reported per-source
			}
			logging.Debug("Source fetched", "op", op, "source", b.source, "duration", time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &OrchestrationError{Op: op, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &OrchestrationError{Op: op, Err: err}
	}
	return nil
}

// mapCapped converts at most limit records, preserving upstream order.
func mapCapped[T any](records []T, limit int, fn func(T) model.ContentItem) []model.ContentItem {
	if len(records) > limit {
		records = records[:limit]
	}
	out := make([]model.ContentItem, 0, len(records))
	for _, r := range records {
		out = append(out, fn(r))
	}
	return out
}

func concat(parts ...[]model.ContentItem) []model.ContentItem {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]model.ContentItem, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
