// Package prefs holds user-level settings and persists them across
// sessions.
package prefs

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/abelbrown/dashboard/internal/logging"
)

// Key is the persistence slot for the preference blob.
const Key = "dashboard:preferences"

// Items-per-page bounds.
const (
	MinItemsPerPage = 6
	MaxItemsPerPage = 24
)

// Section is the active UI section.
type Section string

const (
	SectionFeed      Section = "feed"
	SectionTrending  Section = "trending"
	SectionFavorites Section = "favorites"
	SectionSettings  Section = "settings"
)

// Sections lists every section in display order.
func Sections() []Section {
	return []Section{SectionFeed, SectionTrending, SectionFavorites, SectionSettings}
}

// Language is a supported UI locale.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// ContentLayout selects grid or list rendering.
type ContentLayout string

const (
	LayoutGrid ContentLayout = "grid"
	LayoutList ContentLayout = "list"
)

// Preferences are the content settings.
type Preferences struct {
	Categories    []string `json:"categories"`
	Language      Language `json:"language"`
	AutoRefresh   bool     `json:"autoRefresh"`
	Notifications bool     `json:"notifications"`
	ItemsPerPage  int      `json:"itemsPerPage"`
}

// Profile is the signed-in user.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Layout holds layout flags.
type Layout struct {
	SidebarCollapsed bool          `json:"sidebarCollapsed"`
	ContentLayout    ContentLayout `json:"contentLayout"`
}

// State is the full preference record.
type State struct {
	DarkMode        bool        `json:"darkMode"`
	ActiveSection   Section     `json:"activeSection"`
	Preferences     Preferences `json:"preferences"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *Profile    `json:"user"`
	Layout          Layout      `json:"layout"`
}

// Default returns the initial state with the mock user signed in.
func Default() State {
	return State{
		ActiveSection: SectionFeed,
		Preferences: Preferences{
			Categories:    []string{"technology", "entertainment", "science"},
			Language:      LanguageEnglish,
			AutoRefresh:   true,
			Notifications: true,
			ItemsPerPage:  12,
		},
		IsAuthenticated: true,
		User: &Profile{
			Name:   "John Doe",
			Email:  "john@example.com",
			Avatar: "/diverse-user-avatars.png",
		},
		Layout: Layout{ContentLayout: LayoutGrid},
	}
}

func (s State) clone() State {
	s.Preferences.Categories = slices.Clone(s.Preferences.Categories)
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// PreferencesPatch is a partial Preferences update; nil fields are left
// unchanged.
type PreferencesPatch struct {
	Categories    []string
	Language      *Language
	AutoRefresh   *bool
	Notifications *bool
	ItemsPerPage  *int
}

// ProfilePatch is a partial Profile update; empty fields are left
// unchanged.
type ProfilePatch struct {
	Name   string
	Email  string
	Avatar string
}

// Persister is the durable key-value slot the store writes to.
type Persister interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Store owns the preference state.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	onChange  func(State)
}

// Open restores saved preferences through p, falling back to defaults for
// a missing or unreadable slot. p may be nil for an in-memory store.
func Open(p Persister) *Store {
	s := &Store{state: Default(), persister: p}
	if p == nil {
		return s
	}

	data, ok, err := p.Get(Key)
	switch {
	case err != nil:
		logging.Warn("Failed to load preferences, using defaults", "error", err)
	case !ok:
		logging.Debug("No saved preferences, using defaults")
	default:
		restored := Default()
		if err := json.Unmarshal(data, &restored); err != nil {
			logging.Warn("Corrupt preferences, using defaults", "error", err)
			break
		}
		restored.Preferences.ItemsPerPage = clampItemsPerPage(restored.Preferences.ItemsPerPage)
		s.state = restored
	}
	return s
}

// OnChange registers fn to receive the new state after every mutation.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// ToggleTheme flips dark mode.
func (s *Store) ToggleTheme() {
	s.update(func(st *State) { st.DarkMode = !st.DarkMode })
}

// SetActiveSection switches the visible section.
func (s *Store) SetActiveSection(section Section) {
	s.update(func(st *State) { st.ActiveSection = section })
}

// SetLocale sets the UI language.
func (s *Store) SetLocale(lang Language) {
	s.update(func(st *State) { st.Preferences.Language = lang })
}

// UpdatePreferences merges p into the content preferences. ItemsPerPage is
// clamped to [MinItemsPerPage, MaxItemsPerPage].
func (s *Store) UpdatePreferences(p PreferencesPatch) {
	s.update(func(st *State) {
		if p.Categories != nil {
			st.Preferences.Categories = slices.Clone(p.Categories)
		}
		if p.Language != nil {
			st.Preferences.Language = *p.Language
		}
		if p.AutoRefresh != nil {
			st.Preferences.AutoRefresh = *p.AutoRefresh
		}
		if p.Notifications != nil {
			st.Preferences.Notifications = *p.Notifications
		}
		if p.ItemsPerPage != nil {
			st.Preferences.ItemsPerPage = clampItemsPerPage(*p.ItemsPerPage)
		}
	})
}

// UpdateProfile merges p into the signed-in user. No-op when signed out.
func (s *Store) UpdateProfile(p ProfilePatch) {
	s.update(func(st *State) {
		if st.User == nil {
			return
		}
		if p.Name != "" {
			st.User.Name = p.Name
		}
		if p.Email != "" {
			st.User.Email = p.Email
		}
		if p.Avatar != "" {
			st.User.Avatar = p.Avatar
		}
	})
}

// ToggleSidebar flips the sidebar collapsed flag.
func (s *Store) ToggleSidebar() {
	s.update(func(st *State) { st.Layout.SidebarCollapsed = !st.Layout.SidebarCollapsed })
}

// SetLayout selects grid or list rendering.
func (s *Store) SetLayout(layout ContentLayout) {
	s.update(func(st *State) { st.Layout.ContentLayout = layout })
}

// Login signs in p.
func (s *Store) Login(p Profile) {
	s.update(func(st *State) {
		st.IsAuthenticated = true
		st.User = &p
	})
}

// Logout signs the user out.
func (s *Store) Logout() {
	s.update(func(st *State) {
		st.IsAuthenticated = false
		st.User = nil
	})
}

// update applies fn and persists the result. A persistence failure is
// logged; the in-memory change stands.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	notify := s.onChange
	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		logging.Error("Failed to persist preferences", "error", err)
	}
	if notify != nil {
		notify(snapshot)
	}
}

func (s *Store) saveLocked() error {
	if s.persister == nil {
		return nil
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := s.persister.Put(Key, data); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func clampItemsPerPage(n int) int {
	return min(max(n, MinItemsPerPage), MaxItemsPerPage)
}
