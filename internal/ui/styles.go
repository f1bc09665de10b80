package ui

import "github.com/charmbracelet/lipgloss"

// Theme is one color scheme. The dashboard switches between dark and light
// with the theme toggle.
type Theme struct {
	SelectedItem  lipgloss.Style
	NormalItem    lipgloss.Style
	MutedText     lipgloss.Style
	Header        lipgloss.Style
	ActiveTab     lipgloss.Style
	InactiveTab   lipgloss.Style
	Badge         map[string]lipgloss.Style
	Favorite      lipgloss.Style
	Card          lipgloss.Style
	SelectedCard  lipgloss.Style
	Sidebar       lipgloss.Style
	StatusBar     lipgloss.Style
	StatusBarKey  lipgloss.Style
	StatusBarText lipgloss.Style
	ErrorStyle    lipgloss.Style
	HelpStyle     lipgloss.Style
	SearchBar     lipgloss.Style
	SearchPrompt  lipgloss.Style
}

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorError     = lipgloss.Color("196") // Red
)

func newTheme(fg, bg, barBg lipgloss.Color) Theme {
	badge := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return Theme{
		SelectedItem: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorPrimary).
			Padding(0, 1),
		NormalItem: lipgloss.NewStyle().
			Foreground(fg).
			Padding(0, 1),
		MutedText: lipgloss.NewStyle().
			Foreground(colorSecondary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorPrimary).
			Padding(0, 1),
		InactiveTab: lipgloss.NewStyle().
			Foreground(colorSecondary).
			Padding(0, 1),
		Badge: map[string]lipgloss.Style{
			"news":   badge(colorSuccess),
			"movie":  badge(colorWarning),
			"social": badge(colorHighlight),
		},
		Favorite: lipgloss.NewStyle().
			Foreground(colorWarning),
		Card: lipgloss.NewStyle().
			Foreground(fg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
		SelectedCard: lipgloss.NewStyle().
			Foreground(fg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorHighlight).
			Padding(0, 1),
		Sidebar: lipgloss.NewStyle().
			Foreground(fg).
			Background(bg).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(colorMuted).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(fg).
			Background(barBg).
			Padding(0, 1),
		StatusBarKey: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true),
		StatusBarText: lipgloss.NewStyle().
			Foreground(colorSecondary),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true).
			Padding(0, 1),
		HelpStyle: lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 2),
		SearchBar: lipgloss.NewStyle().
			Foreground(fg).
			Background(barBg).
			Padding(0, 1),
		SearchPrompt: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true),
	}
}

var (
	darkTheme  = newTheme(lipgloss.Color("255"), lipgloss.Color("235"), lipgloss.Color("236"))
	lightTheme = newTheme(lipgloss.Color("235"), lipgloss.Color("255"), lipgloss.Color("254"))
)

// themeFor returns the theme for the dark-mode preference.
func themeFor(dark bool) Theme {
	if dark {
		return darkTheme
	}
	return lightTheme
}
