package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dashboard/internal/app"
	"github.com/abelbrown/dashboard/internal/content"
	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/prefs"
)

// stubOrch serves fixed lists, or fails every call when err is set.
type stubOrch struct {
	err error
}

func (s stubOrch) LoadDefaultFeed(ctx context.Context, category string) ([]model.ContentItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.ContentItem{
		{ID: "n1", Type: model.TypeNews, Title: "Chip shortage eases", Category: "technology", Source: "Wire"},
		{ID: "m1", Type: model.TypeMovie, Title: "Night Train", Category: model.CategoryEntertainment, Rating: 7.5},
		{ID: "s1", Type: model.TypeSocial, Title: "Sunset run", Category: model.CategorySocial, Username: "ana"},
	}, nil
}

func (s stubOrch) LoadTrending(ctx context.Context) ([]model.ContentItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.ContentItem{{ID: "t1", Type: model.TypeMovie, Title: "Big Premiere", Trending: true}}, nil
}

func (s stubOrch) Search(ctx context.Context, query string) ([]model.ContentItem, error) {
	return []model.ContentItem{{ID: "q1", Type: model.TypeNews, Title: "Result " + query}}, nil
}

func newTestApp(t *testing.T, orch stubOrch) (App, *app.Controller) {
	t.Helper()
	ctrl := app.New(orch, content.NewStore(), prefs.Open(nil), app.Options{})
	t.Cleanup(ctrl.Close)

	a := NewApp(context.Background(), ctrl)
	next, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(App), ctrl
}

func mounted(t *testing.T) (App, *app.Controller) {
	t.Helper()
	a, ctrl := newTestApp(t, stubOrch{})
	if err := ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	next, _ := a.Update(StateChanged{})
	return next.(App), ctrl
}

func press(a App, keys ...string) App {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := a.Update(msg)
		a = next.(App)
	}
	return a
}

func TestAppViewBeforeReady(t *testing.T) {
	ctrl := app.New(stubOrch{}, content.NewStore(), prefs.Open(nil), app.Options{})
	defer ctrl.Close()

	a := NewApp(context.Background(), ctrl)
	if got := a.View(); got != "Loading..." {
		t.Errorf("View() = %q, want Loading...", got)
	}
	if a.Init() == nil {
		t.Error("Init should return a command")
	}
}

func TestAppRendersFeed(t *testing.T) {
	a, _ := mounted(t)

	if n := len(a.VisibleItems()); n != 3 {
		t.Fatalf("expected 3 feed items, got %d", n)
	}
	view := a.View()
	for _, want := range []string{"Chip shortage eases", "Feed", "Trending"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppListLayout(t *testing.T) {
	a, _ := mounted(t)
	a = press(a, "v")

	if a.prefs.Layout.ContentLayout != prefs.LayoutList {
		t.Fatalf("layout = %s, want list", a.prefs.Layout.ContentLayout)
	}
	if !strings.Contains(a.View(), "[movie] Night Train") {
		t.Error("list view should show typed rows")
	}
}

func TestAppNavigation(t *testing.T) {
	a, _ := mounted(t)

	a = press(a, "j")
	if a.Cursor() != 1 {
		t.Errorf("after j cursor = %d, want 1", a.Cursor())
	}
	a = press(a, "j", "j", "j")
	if a.Cursor() != 2 {
		t.Errorf("cursor should stop at last item, got %d", a.Cursor())
	}
	a = press(a, "k")
	if a.Cursor() != 1 {
		t.Errorf("after k cursor = %d, want 1", a.Cursor())
	}
	a = press(a, "g")
	if a.Cursor() != 0 {
		t.Errorf("after g cursor = %d, want 0", a.Cursor())
	}
	a = press(a, "G")
	if a.Cursor() != 2 {
		t.Errorf("after G cursor = %d, want 2", a.Cursor())
	}
}

func TestAppSectionSwitching(t *testing.T) {
	a, ctrl := mounted(t)

	a = press(a, "tab")
	if got := ctrl.Prefs().State().ActiveSection; got != prefs.SectionTrending {
		t.Fatalf("section = %s, want trending", got)
	}
	if items := a.VisibleItems(); len(items) != 1 || items[0].ID != "t1" {
		t.Errorf("trending items = %v", items)
	}

	a = press(a, "4")
	if !strings.Contains(a.View(), "Items per page") {
		t.Error("settings view should list preferences")
	}

	a = press(a, "tab")
	if got := ctrl.Prefs().State().ActiveSection; got != prefs.SectionFeed {
		t.Errorf("tab should wrap to feed, got %s", got)
	}
}

func TestAppToggleFavorite(t *testing.T) {
	a, ctrl := mounted(t)

	a = press(a, "j", "f")
	favs := ctrl.Content().Favorites()
	if len(favs) != 1 || favs[0].ID != "m1" {
		t.Fatalf("favorites = %v, want [m1]", favs)
	}

	a = press(a, "3")
	if items := a.VisibleItems(); len(items) != 1 || items[0].ID != "m1" {
		t.Errorf("favorites section shows %v", items)
	}

	press(a, "f")
	if n := len(ctrl.Content().Favorites()); n != 0 {
		t.Errorf("second toggle should unfavorite, %d left", n)
	}
}

func TestAppReorderFeed(t *testing.T) {
	a, ctrl := mounted(t)

	a = press(a, "J")
	if a.Cursor() != 1 {
		t.Errorf("cursor should follow moved item, got %d", a.Cursor())
	}
	got := ctrl.Content().Snapshot().Items
	if got[0].ID != "m1" || got[1].ID != "n1" {
		t.Errorf("order = %s,%s; want m1,n1", got[0].ID, got[1].ID)
	}

	a = press(a, "K")
	if a.Cursor() != 0 {
		t.Errorf("cursor after K = %d, want 0", a.Cursor())
	}
	if ctrl.Content().Snapshot().Items[0].ID != "n1" {
		t.Error("K should move the item back up")
	}
}

func TestAppTrendingNotReorderable(t *testing.T) {
	a, ctrl := mounted(t)
	ctrl.Content().FulfillTrending(ctrl.Content().Begin(content.IntentTrending), []model.ContentItem{
		{ID: "t1", Title: "one"}, {ID: "t2", Title: "two"},
	})
	a = press(a, "2", "J")

	if a.Cursor() != 0 {
		t.Errorf("cursor moved on a rejected reorder: %d", a.Cursor())
	}
	if ctrl.Content().Snapshot().Trending[0].ID != "t1" {
		t.Error("trending order changed")
	}
}

func TestAppCategoryShowsFetchedFeed(t *testing.T) {
	a, ctrl := mounted(t)
	if err := ctrl.SelectCategory(context.Background(), "sports"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	next, _ := a.Update(StateChanged{})
	a = next.(App)

	if n := len(a.VisibleItems()); n != 3 {
		t.Errorf("category feed should show every fetched item, got %d", n)
	}
}

func TestAppSearchMode(t *testing.T) {
	a, ctrl := mounted(t)

	a = press(a, "/")
	if !a.Searching() {
		t.Fatal("/ should focus the search box")
	}
	a = press(a, "g", "o")
	if q := ctrl.Content().Snapshot().SearchQuery; q != "go" {
		t.Errorf("query = %q, want go", q)
	}

	a = press(a, "esc")
	if a.Searching() {
		t.Error("esc should leave search mode")
	}
	st := ctrl.Content().Snapshot()
	if st.SearchQuery != "" || len(st.SearchResults) != 0 {
		t.Errorf("esc should clear search, got query %q and %d results", st.SearchQuery, len(st.SearchResults))
	}
}

func TestAppShowsSearchResults(t *testing.T) {
	a, ctrl := mounted(t)
	if err := ctrl.Search(context.Background(), "rust"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	next, _ := a.Update(StateChanged{})
	a = next.(App)

	items := a.VisibleItems()
	if len(items) != 1 || items[0].ID != "q1" {
		t.Fatalf("feed should show search results, got %v", items)
	}
	if !strings.Contains(a.View(), "results for") {
		t.Error("view should label the active query")
	}

	a = press(a, "esc")
	if n := len(a.VisibleItems()); n != 3 {
		t.Errorf("esc should restore the feed, got %d items", n)
	}
}

func TestAppErrorDismissedOnKey(t *testing.T) {
	a, ctrl := newTestApp(t, stubOrch{err: errors.New("upstream down")})
	if err := ctrl.Mount(context.Background()); err == nil {
		t.Fatal("Mount should fail")
	}
	next, _ := a.Update(StateChanged{})
	a = next.(App)

	if !strings.Contains(a.View(), "upstream down") {
		t.Fatal("error bar should show the failure")
	}
	a = press(a, "j")
	if strings.Contains(a.View(), "upstream down") {
		t.Error("key press should dismiss the error")
	}
	if ctrl.Content().Snapshot().Error != "" {
		t.Error("store error should be cleared too")
	}
}

func TestAppSettingsKeys(t *testing.T) {
	a, ctrl := mounted(t)

	// Settings keys are inert outside the settings section.
	press(a, "+")
	if n := ctrl.Prefs().State().Preferences.ItemsPerPage; n != 12 {
		t.Fatalf("items per page changed outside settings: %d", n)
	}

	a = press(a, "4", "+", "a", "l", "o")
	p := ctrl.Prefs().State().Preferences
	if p.ItemsPerPage != 18 {
		t.Errorf("ItemsPerPage = %d, want 18", p.ItemsPerPage)
	}
	if p.AutoRefresh {
		t.Error("a should toggle auto-refresh off")
	}
	if p.Language != prefs.LanguageHindi {
		t.Errorf("Language = %s, want hi", p.Language)
	}
	if p.Notifications {
		t.Error("o should toggle notifications off")
	}

	press(a, "-", "-", "-")
	if n := ctrl.Prefs().State().Preferences.ItemsPerPage; n != prefs.MinItemsPerPage {
		t.Errorf("ItemsPerPage = %d, want clamp to %d", n, prefs.MinItemsPerPage)
	}
}

func TestAppThemeAndSidebar(t *testing.T) {
	a, ctrl := mounted(t)
	a = press(a, "d", "s")

	st := ctrl.Prefs().State()
	if !st.DarkMode {
		t.Error("d should enable dark mode")
	}
	if !st.Layout.SidebarCollapsed {
		t.Error("s should collapse the sidebar")
	}
	if a.View() == "" {
		t.Error("view should render")
	}
}

func TestAppPageWindow(t *testing.T) {
	a, ctrl := mounted(t)
	many := make([]model.ContentItem, 20)
	for i := range many {
		many[i] = model.ContentItem{ID: string(rune('a' + i)), Title: "item"}
	}
	ctrl.Content().FulfillFeed(ctrl.Content().Begin(content.IntentFeed), many)
	next, _ := a.Update(StateChanged{})
	a = next.(App)

	if n := len(a.VisibleItems()); n != 12 {
		t.Fatalf("first page should show 12 items, got %d", n)
	}
	a = press(a, "m")
	if n := len(a.VisibleItems()); n != 20 {
		t.Errorf("after load more expected 20 items, got %d", n)
	}
}

func TestAppQuit(t *testing.T) {
	a, _ := mounted(t)
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWaitForUpdate(t *testing.T) {
	a, ctrl := newTestApp(t, stubOrch{})
	ctrl.Prefs().ToggleTheme()

	if _, ok := a.waitForUpdate()().(StateChanged); !ok {
		t.Error("a pending update should yield StateChanged")
	}
}
