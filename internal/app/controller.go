// Package app implements the dashboard controller: the single place where
// user intents turn into orchestrator calls and content-store phases.
//
// # Intents
//
// LoadFeed, LoadTrending and Search each run as one async intent. Starting
// an intent cancels the in-flight request of the same intent and takes a
// fresh sequence number from the content store, so a late answer from the
// superseded request is discarded twice over.
//
// # Concurrency
//
// Controller is safe for concurrent use. The blocking methods are meant to
// run off the UI goroutine (a tea.Cmd, a CLI command). Change notifications
// are delivered on Updates, coalesced: a slow reader sees the latest state,
// not every step.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/dashboard/internal/content"
	"github.com/abelbrown/dashboard/internal/debounce"
	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/prefs"
	"github.com/abelbrown/dashboard/internal/sources"
)

// FavoritesKey is the persistence slot for the favorites list.
const FavoritesKey = "dashboard:favorites"

// DefaultSearchDebounce is the quiet period before a typed query is sent.
const DefaultSearchDebounce = 300 * time.Millisecond

// Orchestrator is implemented by aggregate.Orchestrator.
type Orchestrator interface {
	LoadDefaultFeed(ctx context.Context, category string) ([]model.ContentItem, error)
	LoadTrending(ctx context.Context) ([]model.ContentItem, error)
	Search(ctx context.Context, query string) ([]model.ContentItem, error)
}

// inflight is the cancel handle of the running request for one intent.
type inflight struct {
	id     uint64
	cancel context.CancelFunc
}

// Controller dispatches dashboard intents.
type Controller struct {
	orch      Orchestrator
	content   *content.Store
	prefs     *prefs.Store
	persister prefs.Persister // nil disables favorites persistence
	debouncer *debounce.Debouncer

	updates chan struct{}

	mu       sync.Mutex
	inflight map[content.Intent]inflight
	nextID   uint64
	closed   bool
	wg       sync.WaitGroup // debounced searches
}

// Options configures a Controller.
type Options struct {
	// Persister stores favorites; nil keeps them in memory only.
	Persister prefs.Persister
	// SearchDebounce defaults to DefaultSearchDebounce when zero.
	SearchDebounce time.Duration
}

// New creates a Controller over the given stores and restores persisted
// favorites.
func New(orch Orchestrator, cs *content.Store, ps *prefs.Store, opts Options) *Controller {
	delay := opts.SearchDebounce
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	c := &Controller{
		orch:      orch,
		content:   cs,
		prefs:     ps,
		persister: opts.Persister,
		debouncer: debounce.New(delay),
		updates:   make(chan struct{}, 1),
		inflight:  make(map[content.Intent]inflight),
	}
	c.restoreFavorites()
	cs.OnChange(c.notify)
	ps.OnChange(func(prefs.State) { c.notify() })
	return c
}

// Content returns the content store.
func (c *Controller) Content() *content.Store { return c.content }

// Prefs returns the preference store.
func (c *Controller) Prefs() *prefs.Store { return c.prefs }

// Updates signals state changes. At most one signal is buffered.
func (c *Controller) Updates() <-chan struct{} { return c.updates }

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Mount loads the default feed and trending list concurrently.
func (c *Controller) Mount(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Refresh reloads the feed for the selected category and the trending list.
// Both run to completion; the first error is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	category := c.content.Snapshot().SelectedCategory

	var g errgroup.Group
	g.Go(func() error { return c.LoadFeed(ctx, category) })
	g.Go(func() error { return c.LoadTrending(ctx) })
	return g.Wait()
}

// LoadFeed runs the feed intent for category.
func (c *Controller) LoadFeed(ctx context.Context, category string) error {
	return c.run(ctx, content.IntentFeed,
		func(ctx context.Context) ([]model.ContentItem, error) {
			return c.orch.LoadDefaultFeed(ctx, category)
		},
		c.content.FulfillFeed)
}

// LoadTrending runs the trending intent.
func (c *Controller) LoadTrending(ctx context.Context) error {
	return c.run(ctx, content.IntentTrending, c.orch.LoadTrending, c.content.FulfillTrending)
}

// Search records query and runs the search intent immediately. A blank
// query clears the search the same way a blank search box does.
func (c *Controller) Search(ctx context.Context, query string) error {
	if sources.BlankQuery(query) {
		c.abandonSearch()
		return nil
	}
	c.content.SetSearchQuery(query)
	return c.run(ctx, content.IntentSearch,
		func(ctx context.Context) ([]model.ContentItem, error) {
			return c.orch.Search(ctx, query)
		},
		c.content.FulfillSearch)
}

// SearchInput handles one keystroke in the search box. The query text is
// recorded at once; the search itself runs after the debounce quiet period.
// A blank query clears the results instead of searching.
func (c *Controller) SearchInput(query string) {
	c.content.SetSearchQuery(query)
	c.debouncer.Trigger(func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.wg.Add(1)
		c.mu.Unlock()
		defer c.wg.Done()

		if sources.BlankQuery(query) {
			c.abandonSearch()
			return
		}
		if err := c.Search(context.Background(), query); err != nil {
			logging.Debug("Debounced search failed", "query", query, "error", err)
		}
	})
}

// ClearSearch drops any pending or in-flight search and empties the results
// and the query.
func (c *Controller) ClearSearch() {
	c.debouncer.Cancel()
	c.abandonSearch()
}

func (c *Controller) abandonSearch() {
	c.cancel(content.IntentSearch)
	c.content.ClearSearchResults()
}

// SelectCategory switches the category filter, rewinds pagination and
// refetches the feed.
func (c *Controller) SelectCategory(ctx context.Context, category string) error {
	c.content.SetSelectedCategory(category)
	c.content.ResetPagination()
	return c.LoadFeed(ctx, category)
}

// ToggleFavorite flips the favorite flag of id and persists the favorites.
func (c *Controller) ToggleFavorite(id string) bool {
	if !c.content.ToggleFavorite(id) {
		return false
	}
	c.saveFavorites()
	return true
}

// Reorder applies a drag-end in section. Trending is never reorderable, and
// the feed is not reorderable while search results are shown.
func (c *Controller) Reorder(section prefs.Section, from, to int) bool {
	switch section {
	case prefs.SectionFeed:
		if c.content.Snapshot().SearchQuery != "" {
			return false
		}
		return c.content.ReorderItems(from, to)
	case prefs.SectionFavorites:
		if !c.content.ReorderFavorites(from, to) {
			return false
		}
		c.saveFavorites()
		return true
	default:
		return false
	}
}

// Close stops the debouncer, cancels every in-flight request and waits for
// debounced searches to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	pending := c.inflight
	c.inflight = make(map[content.Intent]inflight)
	c.mu.Unlock()

	c.debouncer.Stop()
	for _, f := range pending {
		f.cancel()
	}
	c.wg.Wait()
}

// run executes one intent: supersede, begin, load, then fulfil or reject.
func (c *Controller) run(
	ctx context.Context,
	intent content.Intent,
	load func(ctx context.Context) ([]model.ContentItem, error),
	fulfill func(seq uint64, items []model.ContentItem) bool,
) error {
	ctx, id, seq, err := c.supersede(ctx, intent)
	if err != nil {
		return err
	}
	defer c.release(intent, id)

	items, err := load(ctx)
	if err != nil {
		// A superseded or cleared request fails with context.Canceled;
		// that is not a user-visible failure.
		if !c.current(intent, id) || !c.content.Reject(intent, seq, err) {
			logging.Debug("Discarded superseded failure", "intent", intent, "seq", seq)
		}
		return fmt.Errorf("%s: %w", intent, err)
	}
	if !fulfill(seq, items) {
		logging.Debug("Discarded superseded result", "intent", intent, "seq", seq)
	}
	return nil
}

// ErrClosed is returned by intents issued after Close.
var ErrClosed = errors.New("controller closed")

// supersede cancels the running request for intent and registers a new
// one. The store's sequence number is issued under the same lock, so the
// request holding the in-flight slot always holds the latest sequence.
func (c *Controller) supersede(ctx context.Context, intent content.Intent) (context.Context, uint64, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, 0, 0, ErrClosed
	}
	if prev, ok := c.inflight[intent]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.nextID++
	c.inflight[intent] = inflight{id: c.nextID, cancel: cancel}
	seq := c.content.Begin(intent)
	return ctx, c.nextID, seq, nil
}

func (c *Controller) release(intent content.Intent, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.inflight[intent]; ok && cur.id == id {
		cur.cancel()
		delete(c.inflight, intent)
	}
}

func (c *Controller) current(intent content.Intent, id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.inflight[intent]
	return ok && cur.id == id
}

// cancel abandons the running request for intent and invalidates its
// sequence number.
func (c *Controller) cancel(intent content.Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.inflight[intent]; ok {
		cur.cancel()
		delete(c.inflight, intent)
	}
	c.content.Cancel(intent)
}

func (c *Controller) restoreFavorites() {
	if c.persister == nil {
		return
	}
	data, ok, err := c.persister.Get(FavoritesKey)
	if err != nil {
		logging.Warn("Failed to load favorites", "error", err)
		return
	}
	if !ok {
		return
	}
	var favs []model.ContentItem
	if err := json.Unmarshal(data, &favs); err != nil {
		logging.Warn("Corrupt favorites, starting empty", "error", err)
		return
	}
	c.content.SetFavorites(favs)
	logging.Info("Restored favorites", "count", len(favs))
}

func (c *Controller) saveFavorites() {
	if c.persister == nil {
		return
	}
	data, err := json.Marshal(c.content.Favorites())
	if err != nil {
		logging.Error("Failed to encode favorites", "error", err)
		return
	}
	if err := c.persister.Put(FavoritesKey, data); err != nil {
		logging.Error("Failed to persist favorites", "error", err)
	}
}
