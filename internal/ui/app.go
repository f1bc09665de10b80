package ui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/dashboard/internal/content"
	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/prefs"
)

// itemsPerPageStep is how far +/- move the items-per-page preference.
const itemsPerPageStep = 6

// Dashboard is what the view drives. *app.Controller satisfies it.
type Dashboard interface {
	Mount(ctx context.Context) error
	Refresh(ctx context.Context) error
	SelectCategory(ctx context.Context, category string) error
	SearchInput(query string)
	ClearSearch()
	ToggleFavorite(id string) bool
	Reorder(section prefs.Section, from, to int) bool
	Content() *content.Store
	Prefs() *prefs.Store
	Updates() <-chan struct{}
}

// App is the root Bubble Tea model.
// App never mutates the stores directly for content; intents go through the
// Dashboard, and the view re-reads snapshots on StateChanged.
type App struct {
	ctx  context.Context
	dash Dashboard

	content content.State
	prefs   prefs.State

	cursor    int
	search    textinput.Model
	searching bool
	spinner   spinner.Model

	width  int
	height int
	ready  bool
}

// NewApp creates the view over dash. ctx bounds every load the view starts.
func NewApp(ctx context.Context, dash Dashboard) App {
	ti := textinput.New()
	ti.Placeholder = "Search news, movies, posts..."
	ti.CharLimit = 120
	ti.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		ctx:     ctx,
		dash:    dash,
		content: dash.Content().Snapshot(),
		prefs:   dash.Prefs().State(),
		search:  ti,
		spinner: sp,
	}
}

// Init mounts the dashboard and starts listening for state changes.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.mount(), a.waitForUpdate(), a.spinner.Tick)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.searching {
			return a.handleSearchKey(msg)
		}
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search.Width = max(msg.Width-6, 10)
		a.ready = true
		return a, nil

	case StateChanged:
		a.refreshState()
		return a, a.waitForUpdate()

	case IntentDone:
		// Failures already landed in the content store's error field.
		if msg.Err != nil {
			logging.Debug("Intent failed", "intent", msg.Intent, "error", msg.Err)
		}
		a.refreshState()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) refreshState() {
	a.content = a.dash.Content().Snapshot()
	a.prefs = a.dash.Prefs().State()
	a.clampCursor()
}

// handleSearchKey routes keys while the search box has focus.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		a.dash.ClearSearch()
		a.cursor = 0
		a.refreshState()
		return a, nil
	case "enter":
		a.searching = false
		a.search.Blur()
		return a, nil
	}

	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if v := a.search.Value(); v != before {
		a.dash.SearchInput(v)
		a.cursor = 0
		a.refreshState()
	}
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear any existing error on key press
	if a.content.Error != "" {
		a.dash.Content().ClearError()
		a.content.Error = ""
	}

	items := a.visibleItems()
	section := a.prefs.ActiveSection

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "tab":
		a.switchSection(1)
	case "shift+tab":
		a.switchSection(-1)
	case "1", "2", "3", "4":
		a.setSection(prefs.Sections()[int(key[0]-'1')])

	case "j", "down":
		if a.cursor < len(items)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "g", "home":
		a.cursor = 0
	case "G", "end":
		if len(items) > 0 {
			a.cursor = len(items) - 1
		}

	case "J", "K":
		delta := 1
		if key == "K" {
			delta = -1
		}
		if a.moveItem(items, delta) {
			a.cursor += delta
		}

	case "f", "enter":
		if a.cursor < len(items) {
			a.dash.ToggleFavorite(items[a.cursor].ID)
		}

	case "/":
		if section == prefs.SectionFeed {
			a.searching = true
			a.search.SetValue(a.content.SearchQuery)
			a.search.CursorEnd()
			return a, a.search.Focus()
		}
	case "esc":
		if a.content.SearchQuery != "" {
			a.search.SetValue("")
			a.dash.ClearSearch()
			a.cursor = 0
		}

	case "r":
		return a, a.refresh()
	case "c":
		return a, a.cycleCategory()
	case "m":
		if a.content.HasMore {
			a.dash.Content().LoadMore()
		}

	case "d":
		a.dash.Prefs().ToggleTheme()
	case "v":
		next := prefs.LayoutList
		if a.prefs.Layout.ContentLayout == prefs.LayoutList {
			next = prefs.LayoutGrid
		}
		a.dash.Prefs().SetLayout(next)
	case "s":
		a.dash.Prefs().ToggleSidebar()

	case "a":
		if section == prefs.SectionSettings {
			on := !a.prefs.Preferences.AutoRefresh
			a.dash.Prefs().UpdatePreferences(prefs.PreferencesPatch{AutoRefresh: &on})
		}
	case "o":
		if section == prefs.SectionSettings {
			on := !a.prefs.Preferences.Notifications
			a.dash.Prefs().UpdatePreferences(prefs.PreferencesPatch{Notifications: &on})
		}
	case "+", "=", "-":
		if section == prefs.SectionSettings {
			n := a.prefs.Preferences.ItemsPerPage + itemsPerPageStep
			if key == "-" {
				n = a.prefs.Preferences.ItemsPerPage - itemsPerPageStep
			}
			a.dash.Prefs().UpdatePreferences(prefs.PreferencesPatch{ItemsPerPage: &n})
		}
	case "l":
		if section == prefs.SectionSettings {
			lang := prefs.LanguageHindi
			if a.prefs.Preferences.Language == prefs.LanguageHindi {
				lang = prefs.LanguageEnglish
			}
			a.dash.Prefs().SetLocale(lang)
		}
	}

	a.refreshState()
	return a, nil
}

func (a *App) switchSection(delta int) {
	sections := prefs.Sections()
	i := slices.Index(sections, a.prefs.ActiveSection)
	n := len(sections)
	a.setSection(sections[((i+delta)%n+n)%n])
}

func (a *App) setSection(s prefs.Section) {
	if s == a.prefs.ActiveSection {
		return
	}
	a.dash.Prefs().SetActiveSection(s)
	a.cursor = 0
}

// moveItem reorders the item under the cursor by delta positions within
// the active section. The visible list may be a page window, so positions
// are mapped back onto the full list by id.
func (a *App) moveItem(visible []model.ContentItem, delta int) bool {
	target := a.cursor + delta
	if a.cursor >= len(visible) || target < 0 || target >= len(visible) {
		return false
	}

	section := a.prefs.ActiveSection
	full := a.content.Favorites
	if section == prefs.SectionFeed {
		full = a.content.Items
	}
	from := indexByID(full, visible[a.cursor].ID)
	to := indexByID(full, visible[target].ID)
	return a.dash.Reorder(section, from, to)
}

// visibleItems returns the items the active section shows, limited to the
// current page window.
func (a App) visibleItems() []model.ContentItem {
	var items []model.ContentItem
	switch a.prefs.ActiveSection {
	case prefs.SectionFeed:
		items = a.content.Feed()
	case prefs.SectionTrending:
		items = a.content.Trending
	case prefs.SectionFavorites:
		items = a.content.Favorites
	default:
		return nil
	}

	limit := a.content.Page * a.prefs.Preferences.ItemsPerPage
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (a *App) clampCursor() {
	n := len(a.visibleItems())
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// mount returns a Cmd that performs the initial load.
func (a App) mount() tea.Cmd {
	ctx, dash := a.ctx, a.dash
	return func() tea.Msg {
		return IntentDone{Intent: "mount", Err: dash.Mount(ctx)}
	}
}

func (a App) refresh() tea.Cmd {
	ctx, dash := a.ctx, a.dash
	return func() tea.Msg {
		return IntentDone{Intent: "refresh", Err: dash.Refresh(ctx)}
	}
}

// cycleCategory selects the next category in the catalog.
func (a App) cycleCategory() tea.Cmd {
	cats := a.content.Categories
	if len(cats) == 0 {
		return nil
	}
	i := slices.Index(cats, a.content.SelectedCategory)
	next := cats[(i+1)%len(cats)]
	ctx, dash := a.ctx, a.dash
	return func() tea.Msg {
		return IntentDone{Intent: "category", Err: dash.SelectCategory(ctx, next)}
	}
}

// waitForUpdate blocks until the dashboard signals a state change.
func (a App) waitForUpdate() tea.Cmd {
	updates := a.dash.Updates()
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return StateChanged{}
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	th := themeFor(a.prefs.DarkMode)

	// Status bar and tabs take one line each; the search bar and the error
	// bar one more when shown.
	bodyHeight := a.height - 2
	if a.searching || a.content.SearchQuery != "" {
		bodyHeight--
	}
	if a.content.Error != "" {
		bodyHeight--
	}

	width := a.width
	sidebar := ""
	if !a.prefs.Layout.SidebarCollapsed && a.width > sidebarWidth*3 {
		sidebar = RenderSidebar(th, a.prefs.ActiveSection, a.content.SelectedCategory, bodyHeight)
		width -= lipgloss.Width(sidebar)
	}

	var body string
	items := a.visibleItems()
	switch {
	case a.prefs.ActiveSection == prefs.SectionSettings:
		body = RenderSettings(th, a.prefs)
	case a.prefs.Layout.ContentLayout == prefs.LayoutList:
		body = RenderList(th, items, a.cursor, width, bodyHeight)
	default:
		body = RenderGrid(th, items, a.cursor, width, bodyHeight)
	}
	if sidebar != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	}

	var b strings.Builder
	b.WriteString(RenderTabs(th, a.prefs.ActiveSection))
	b.WriteString("\n")
	if a.searching {
		b.WriteString(th.SearchBar.Width(a.width).Render(a.search.View()))
		b.WriteString("\n")
	} else if a.content.SearchQuery != "" {
		b.WriteString(th.SearchBar.Width(a.width).Render(
			th.SearchPrompt.Render("results for ") + a.content.SearchQuery + th.MutedText.Render("  (esc to clear)")))
		b.WriteString("\n")
	}
	b.WriteString(body)
	b.WriteString("\n")
	if a.content.Error != "" {
		b.WriteString(th.ErrorStyle.Width(a.width).Render("Error: " + a.content.Error + " (press any key to dismiss)"))
		b.WriteString("\n")
	}

	pos := 0
	if len(items) > 0 {
		pos = a.cursor + 1
	}
	b.WriteString(RenderStatusBar(th, a.spinner.View(), a.content.Loading(), pos, len(items), a.content.Page, a.width))
	return b.String()
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Searching reports whether the search box has focus.
func (a App) Searching() bool {
	return a.searching
}

// VisibleItems returns what the active section currently shows.
func (a App) VisibleItems() []model.ContentItem {
	return a.visibleItems()
}

func indexByID(items []model.ContentItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
