package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/dashboard/internal/model"
	"github.com/abelbrown/dashboard/internal/prefs"
)

// sidebarWidth is the rendered width of the expanded sidebar.
const sidebarWidth = 18

// cardHeight is the number of lines one grid card occupies, borders included.
const cardHeight = 4

// sectionLabels are the display names of the sections.
var sectionLabels = map[prefs.Section]string{
	prefs.SectionFeed:      "Feed",
	prefs.SectionTrending:  "Trending",
	prefs.SectionFavorites: "Favorites",
	prefs.SectionSettings:  "Settings",
}

// RenderList renders items one per line, scrolled so cursor stays visible.
func RenderList(th Theme, items []model.ContentItem, cursor, width, height int) string {
	if len(items) == 0 {
		return th.HelpStyle.Render("Nothing here yet. Press 'r' to refresh.")
	}
	height = max(height, 1)
	offset := scrollOffset(cursor, height, len(items))

	var b strings.Builder
	for i := offset; i < len(items) && i < offset+height; i++ {
		b.WriteString(renderItemLine(th, items[i], i == cursor, width))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderGrid renders items as two-column cards.
func RenderGrid(th Theme, items []model.ContentItem, cursor, width, height int) string {
	if len(items) == 0 {
		return th.HelpStyle.Render("Nothing here yet. Press 'r' to refresh.")
	}
	const cols = 2
	cardWidth := max(width/cols-2, 20)
	rowsVisible := max(height/cardHeight, 1)
	rowOffset := scrollOffset(cursor/cols, rowsVisible, (len(items)+cols-1)/cols)

	var rows []string
	for r := rowOffset; r < rowOffset+rowsVisible; r++ {
		var cards []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(items) {
				break
			}
			cards = append(cards, renderCard(th, items[i], i == cursor, cardWidth))
		}
		if len(cards) == 0 {
			break
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderItemLine(th Theme, item model.ContentItem, selected bool, width int) string {
	line := fmt.Sprintf("%s %s %s", favMark(item), typeLabel(item.Type), item.Title)
	if meta := itemMeta(item); meta != "" {
		line += "  · " + meta
	}
	line = truncateRunes(line, max(width-2, 10))
	if selected {
		return th.SelectedItem.Width(width).Render(line)
	}
	return th.NormalItem.Render(line)
}

func renderCard(th Theme, item model.ContentItem, selected bool, width int) string {
	inner := max(width-4, 10)
	badge := th.Badge[string(item.Type)].Render(typeLabel(item.Type))
	title := truncateRunes(item.Title, inner-4)
	meta := truncateRunes(itemMeta(item), inner)
	body := fmt.Sprintf("%s %s %s\n%s", favMark(item), badge, title, th.MutedText.Render(meta))

	style := th.Card
	if selected {
		style = th.SelectedCard
	}
	return style.Width(width).Render(body)
}

// RenderTabs renders the section tabs with the active one highlighted.
func RenderTabs(th Theme, active prefs.Section) string {
	var tabs []string
	for _, s := range prefs.Sections() {
		if s == active {
			tabs = append(tabs, th.ActiveTab.Render(sectionLabels[s]))
		} else {
			tabs = append(tabs, th.InactiveTab.Render(sectionLabels[s]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// RenderSidebar lists sections and the selected category.
func RenderSidebar(th Theme, active prefs.Section, category string, height int) string {
	var lines []string
	lines = append(lines, th.Header.Render("Dashboard"), "")
	for _, s := range prefs.Sections() {
		marker := "  "
		if s == active {
			marker = "▸ "
		}
		lines = append(lines, marker+sectionLabels[s])
	}
	lines = append(lines, "", th.MutedText.Render("category"), "  "+category)
	return th.Sidebar.Height(max(height, len(lines))).Width(sidebarWidth).Render(strings.Join(lines, "\n"))
}

// RenderSettings renders the preference summary for the settings section.
func RenderSettings(th Theme, st prefs.State) string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	user := "signed out"
	if st.IsAuthenticated && st.User != nil {
		user = fmt.Sprintf("%s <%s>", st.User.Name, st.User.Email)
	}
	lines := []string{
		th.Header.Render("Settings"),
		"",
		fmt.Sprintf("  User            %s", user),
		fmt.Sprintf("  Dark mode       %s        [d]", onOff(st.DarkMode)),
		fmt.Sprintf("  Layout          %s      [v]", st.Layout.ContentLayout),
		fmt.Sprintf("  Language        %s        [l]", st.Preferences.Language),
		fmt.Sprintf("  Auto-refresh    %s        [a]", onOff(st.Preferences.AutoRefresh)),
		fmt.Sprintf("  Notifications   %s        [o]", onOff(st.Preferences.Notifications)),
		fmt.Sprintf("  Items per page  %d        [+/-]", st.Preferences.ItemsPerPage),
		fmt.Sprintf("  Categories      %s", strings.Join(st.Preferences.Categories, ", ")),
	}
	return strings.Join(lines, "\n")
}

// RenderStatusBar renders key hints, loading state and position.
func RenderStatusBar(th Theme, spinnerView string, loading bool, pos, total, page, width int) string {
	hints := []struct{ key, desc string }{
		{"tab", "section"},
		{"/", "search"},
		{"f", "fav"},
		{"J/K", "move"},
		{"c", "category"},
		{"r", "refresh"},
		{"q", "quit"},
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, th.StatusBarKey.Render(h.key)+" "+th.StatusBarText.Render(h.desc))
	}
	left := strings.Join(parts, "  ")

	right := fmt.Sprintf("%d/%d  p%d", pos, total, page)
	if total == 0 {
		right = fmt.Sprintf("0/0  p%d", page)
	}
	if loading {
		right = spinnerView + " loading  " + right
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return th.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func typeLabel(t model.ItemType) string {
	switch t {
	case model.TypeNews:
		return "[news]"
	case model.TypeMovie:
		return "[movie]"
	case model.TypeSocial:
		return "[social]"
	default:
		return "[?]"
	}
}

func favMark(item model.ContentItem) string {
	if item.IsFavorite {
		return "★"
	}
	return "☆"
}

// itemMeta is the secondary line: source, rating or social counters.
func itemMeta(item model.ContentItem) string {
	switch item.Type {
	case model.TypeMovie:
		return fmt.Sprintf("★ %.1f  %s", item.Rating, item.PublishedAt)
	case model.TypeSocial:
		return fmt.Sprintf("@%s  ♥ %d  💬 %d", item.Username, item.Likes, item.Comments)
	default:
		return item.Source
	}
}

// scrollOffset returns the first visible row keeping cursor on screen.
func scrollOffset(cursor, visible, total int) int {
	if total <= visible || cursor < visible/2 {
		return 0
	}
	offset := cursor - visible/2
	return min(offset, total-visible)
}

// truncateRunes shortens s to maxLen runes, adding "…" if truncated.
func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}
