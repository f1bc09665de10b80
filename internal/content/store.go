// Package content holds the dashboard's authoritative item collections:
// feed items, trending, favorites and search results, plus list-level
// state (category, pagination, per-intent status).
//
// # Thread Safety
//
// Store is safe for concurrent use. Every method runs under one mutex, so
// each mutation is atomic with respect to readers. Snapshot returns a deep
// copy; callers never see the live slices.
//
// # Async intents
//
// Feed, trending and search loads go through three phases. Begin marks the
// intent pending and returns a sequence number. The matching Fulfill or
// Reject call is applied only if that number is still the latest issued for
// the intent, so a superseded request can never overwrite a newer one.
package content

import (
	"slices"
	"sync"

	"github.com/abelbrown/dashboard/internal/model"
)

// Intent names an async load.
type Intent string

const (
	IntentFeed     Intent = "feed"
	IntentTrending Intent = "trending"
	IntentSearch   Intent = "search"
)

// Phase is the lifecycle state of one intent.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseDone    Phase = "done"
	PhaseError   Phase = "error"
)

// IntentStatus is the visible state of one intent.
type IntentStatus struct {
	Phase Phase
	Err   string
	Seq   uint64
}

// Fallback messages when a rejection carries no error text.
var rejectMessages = map[Intent]string{
	IntentFeed:     "Failed to fetch content",
	IntentTrending: "Failed to fetch trending content",
	IntentSearch:   "Search failed",
}

// State is a point-in-time copy of the store.
type State struct {
	Items            []model.ContentItem
	Trending         []model.ContentItem
	Favorites        []model.ContentItem
	SearchResults    []model.ContentItem
	SearchQuery      string
	Categories       []string
	SelectedCategory string
	Status           map[Intent]IntentStatus
	Error            string
	Page             int
	HasMore          bool
}

// Loading reports whether any intent is pending.
func (s State) Loading() bool {
	for _, st := range s.Status {
		if st.Phase == PhasePending {
			return true
		}
	}
	return false
}

// Feed returns the list the feed section shows: SearchResults while a query
// is set, otherwise Items.
func (s State) Feed() []model.ContentItem {
	if s.SearchQuery != "" {
		return s.SearchResults
	}
	return s.Items
}

// Store owns the content state.
type Store struct {
	mu       sync.Mutex
	state    State
	onChange func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		state: State{
			Items:            []model.ContentItem{},
			Trending:         []model.ContentItem{},
			Favorites:        []model.ContentItem{},
			SearchResults:    []model.ContentItem{},
			Categories:       model.Categories(),
			SelectedCategory: model.CategoryAll,
			Status: map[Intent]IntentStatus{
				IntentFeed:     {Phase: PhaseIdle},
				IntentTrending: {Phase: PhaseIdle},
				IntentSearch:   {Phase: PhaseIdle},
			},
			Page:    1,
			HasMore: true,
		},
	}
}

// OnChange registers fn to run after every applied mutation. fn runs
// without the store lock held.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// update runs fn under the lock and notifies the listener if fn reports a
// change.
func (s *Store) update(fn func(st *State) bool) bool {
	s.mu.Lock()
	changed := fn(&s.state)
	notify := s.onChange
	s.mu.Unlock()

	if changed && notify != nil {
		notify()
	}
	return changed
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Items = model.CloneItems(s.state.Items)
	st.Trending = model.CloneItems(s.state.Trending)
	st.Favorites = model.CloneItems(s.state.Favorites)
	st.SearchResults = model.CloneItems(s.state.SearchResults)
	st.Categories = slices.Clone(s.state.Categories)
	st.Status = make(map[Intent]IntentStatus, len(s.state.Status))
	for k, v := range s.state.Status {
		st.Status[k] = v
	}
	return st
}

// Favorites returns a copy of the favorites list.
func (s *Store) Favorites() []model.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneItems(s.state.Favorites)
}

// VisibleItems returns what the feed section shows: search results while a
// query is active, otherwise the items as fetched for the selected category.
// The category fetch already scopes the feed, so items are not filtered
// again; movies and posts in a category feed are not tagged with it.
func (s *Store) VisibleItems() []model.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneItems(s.state.Feed())
}

// Begin marks intent pending, clears the error and returns the request's
// sequence number.
func (s *Store) Begin(intent Intent) uint64 {
	var seq uint64
	s.update(func(st *State) bool {
		seq = st.Status[intent].Seq + 1
		st.Status[intent] = IntentStatus{Phase: PhasePending, Seq: seq}
		st.Error = ""
		return true
	})
	return seq
}

// FulfillFeed replaces the feed items. Returns false if seq is stale.
func (s *Store) FulfillFeed(seq uint64, items []model.ContentItem) bool {
	return s.fulfill(IntentFeed, seq, func(st *State) {
		st.Items = markFavorites(items, st.Favorites)
		st.Error = ""
	})
}

// FulfillTrending replaces the trending list. Returns false if seq is stale.
func (s *Store) FulfillTrending(seq uint64, items []model.ContentItem) bool {
	return s.fulfill(IntentTrending, seq, func(st *State) {
		st.Trending = markFavorites(items, st.Favorites)
	})
}

// FulfillSearch replaces the search results. Returns false if seq is stale.
func (s *Store) FulfillSearch(seq uint64, items []model.ContentItem) bool {
	return s.fulfill(IntentSearch, seq, func(st *State) {
		st.SearchResults = markFavorites(items, st.Favorites)
	})
}

func (s *Store) fulfill(intent Intent, seq uint64, apply func(st *State)) bool {
	return s.update(func(st *State) bool {
		cur := st.Status[intent]
		if cur.Seq != seq {
			return false
		}
		apply(st)
		st.Status[intent] = IntentStatus{Phase: PhaseDone, Seq: seq}
		return true
	})
}

// Reject records a failed intent. Lists are left untouched, so a failed
// search keeps the previous results. Returns false if seq is stale.
func (s *Store) Reject(intent Intent, seq uint64, err error) bool {
	msg := rejectMessages[intent]
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return s.update(func(st *State) bool {
		if st.Status[intent].Seq != seq {
			return false
		}
		st.Status[intent] = IntentStatus{Phase: PhaseError, Err: msg, Seq: seq}
		st.Error = msg
		return true
	})
}

// Cancel returns intent to idle and invalidates its current sequence
// number, so a completion of the abandoned request is discarded.
func (s *Store) Cancel(intent Intent) {
	s.update(func(st *State) bool {
		st.Status[intent] = IntentStatus{Phase: PhaseIdle, Seq: st.Status[intent].Seq + 1}
		return true
	})
}

// ToggleFavorite flips the favorite flag of the item with id and keeps the
// favorites list in step. The flag is mirrored onto every list holding the
// same id. The item is looked up in items, then search results, then
// trending, then favorites; an unknown id is a no-op.
func (s *Store) ToggleFavorite(id string) bool {
	return s.update(func(st *State) bool {
		current, ok := findFavoriteState(st, id)
		if !ok {
			return false
		}
		next := !current

		var source *model.ContentItem
		for _, list := range [][]model.ContentItem{st.Items, st.SearchResults, st.Trending} {
			for i := range list {
				if list[i].ID == id {
					list[i].IsFavorite = next
					if source == nil {
						source = &list[i]
					}
				}
			}
		}

		if next {
			if indexOf(st.Favorites, id) < 0 && source != nil {
				fav := source.Clone()
				fav.IsFavorite = true
				st.Favorites = append(st.Favorites, fav)
			}
		} else {
			st.Favorites = slices.DeleteFunc(st.Favorites, func(f model.ContentItem) bool {
				return f.ID == id
			})
		}
		return true
	})
}

func findFavoriteState(st *State, id string) (bool, bool) {
	for _, list := range [][]model.ContentItem{st.Items, st.SearchResults, st.Trending, st.Favorites} {
		if i := indexOf(list, id); i >= 0 {
			return list[i].IsFavorite, true
		}
	}
	return false, false
}

// SetFavorites replaces the favorites list, e.g. when restoring from
// persistence. Every entry is forced to IsFavorite and flags on the other
// lists are re-derived.
func (s *Store) SetFavorites(favs []model.ContentItem) {
	s.update(func(st *State) bool {
		st.Favorites = make([]model.ContentItem, 0, len(favs))
		seen := make(map[string]bool, len(favs))
		for _, f := range favs {
			if f.ID == "" || seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			f = f.Clone()
			f.IsFavorite = true
			st.Favorites = append(st.Favorites, f)
		}
		st.Items = markFavorites(st.Items, st.Favorites)
		st.Trending = markFavorites(st.Trending, st.Favorites)
		st.SearchResults = markFavorites(st.SearchResults, st.Favorites)
		return true
	})
}

// ReorderItems moves the feed item at from to position to.
func (s *Store) ReorderItems(from, to int) bool {
	return s.update(func(st *State) bool {
		return Reorder(st.Items, from, to)
	})
}

// ReorderFavorites moves the favorite at from to position to.
func (s *Store) ReorderFavorites(from, to int) bool {
	return s.update(func(st *State) bool {
		return Reorder(st.Favorites, from, to)
	})
}

// SetSelectedCategory sets the category filter.
func (s *Store) SetSelectedCategory(category string) {
	s.update(func(st *State) bool {
		st.SelectedCategory = category
		return true
	})
}

// SetSearchQuery records the current query text.
func (s *Store) SetSearchQuery(q string) {
	s.update(func(st *State) bool {
		st.SearchQuery = q
		return true
	})
}

// ClearSearchResults empties the results and the query together.
func (s *Store) ClearSearchResults() {
	s.update(func(st *State) bool {
		st.SearchResults = []model.ContentItem{}
		st.SearchQuery = ""
		return true
	})
}

// LoadMore advances the page cursor.
func (s *Store) LoadMore() {
	s.update(func(st *State) bool {
		st.Page++
		return true
	})
}

// ResetPagination rewinds the page cursor.
func (s *Store) ResetPagination() {
	s.update(func(st *State) bool {
		st.Page = 1
		st.HasMore = true
		return true
	})
}

// ClearError drops the last error message.
func (s *Store) ClearError() {
	s.update(func(st *State) bool {
		st.Error = ""
		return true
	})
}

// Reorder moves list[from] to index to in place, shifting the elements in
// between. Equal or out-of-range indices leave list untouched and return
// false; drag gestures can report transient invalid positions.
func Reorder[T any](list []T, from, to int) bool {
	if from == to || from < 0 || to < 0 || from >= len(list) || to >= len(list) {
		return false
	}
	moved := list[from]
	if from < to {
		copy(list[from:to], list[from+1:to+1])
	} else {
		copy(list[to+1:from+1], list[to:from])
	}
	list[to] = moved
	return true
}

// markFavorites copies items, setting IsFavorite from membership in favs.
func markFavorites(items, favs []model.ContentItem) []model.ContentItem {
	ids := make(map[string]bool, len(favs))
	for _, f := range favs {
		ids[f.ID] = true
	}
	out := make([]model.ContentItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
		out[i].IsFavorite = ids[item.ID]
	}
	return out
}

func indexOf(list []model.ContentItem, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
