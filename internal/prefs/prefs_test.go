package prefs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	data   map[string][]byte
	putErr error
	getErr error
	puts   int
}

func newMem() *memPersister {
	return &memPersister{data: map[string][]byte{}}
}

func (m *memPersister) Get(key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memPersister) Put(key string, value []byte) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestDefaults(t *testing.T) {
	st := Open(nil).State()
	assert.False(t, st.DarkMode)
	assert.Equal(t, SectionFeed, st.ActiveSection)
	assert.Equal(t, []string{"technology", "entertainment", "science"}, st.Preferences.Categories)
	assert.Equal(t, LanguageEnglish, st.Preferences.Language)
	assert.Equal(t, 12, st.Preferences.ItemsPerPage)
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "John Doe", st.User.Name)
	assert.Equal(t, LayoutGrid, st.Layout.ContentLayout)
}

func TestMutations(t *testing.T) {
	s := Open(nil)

	s.ToggleTheme()
	s.SetActiveSection(SectionFavorites)
	s.SetLocale(LanguageHindi)
	s.ToggleSidebar()
	s.SetLayout(LayoutList)

	st := s.State()
	assert.True(t, st.DarkMode)
	assert.Equal(t, SectionFavorites, st.ActiveSection)
	assert.Equal(t, LanguageHindi, st.Preferences.Language)
	assert.True(t, st.Layout.SidebarCollapsed)
	assert.Equal(t, LayoutList, st.Layout.ContentLayout)
}

func TestUpdatePreferencesMergesPartial(t *testing.T) {
	s := Open(nil)
	s.UpdatePreferences(PreferencesPatch{AutoRefresh: ptr(false)})

	st := s.State()
	assert.False(t, st.Preferences.AutoRefresh)
	assert.True(t, st.Preferences.Notifications, "untouched fields keep their value")
	assert.Equal(t, 12, st.Preferences.ItemsPerPage)

	s.UpdatePreferences(PreferencesPatch{Categories: []string{"sports"}, Notifications: ptr(false)})
	st = s.State()
	assert.Equal(t, []string{"sports"}, st.Preferences.Categories)
	assert.False(t, st.Preferences.Notifications)
}

func TestItemsPerPageClamped(t *testing.T) {
	s := Open(nil)
	for in, want := range map[int]int{1: 6, 6: 6, 18: 18, 24: 24, 100: 24, -3: 6} {
		s.UpdatePreferences(PreferencesPatch{ItemsPerPage: ptr(in)})
		assert.Equal(t, want, s.State().Preferences.ItemsPerPage, "input %d", in)
	}
}

func TestProfileAndAuth(t *testing.T) {
	s := Open(nil)
	s.UpdateProfile(ProfilePatch{Name: "Jane"})
	st := s.State()
	assert.Equal(t, "Jane", st.User.Name)
	assert.Equal(t, "john@example.com", st.User.Email)

	s.Logout()
	st = s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)

	s.UpdateProfile(ProfilePatch{Name: "ignored"})
	assert.Nil(t, s.State().User)

	s.Login(Profile{Name: "Ana", Email: "ana@example.com"})
	st = s.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "Ana", st.User.Name)
}

func TestStateIsCopy(t *testing.T) {
	s := Open(nil)
	st := s.State()
	st.Preferences.Categories[0] = "changed"
	st.User.Name = "changed"

	again := s.State()
	assert.Equal(t, "technology", again.Preferences.Categories[0])
	assert.Equal(t, "John Doe", again.User.Name)
}

func TestPersistRoundTrip(t *testing.T) {
	mem := newMem()
	s := Open(mem)
	s.ToggleTheme()
	s.UpdatePreferences(PreferencesPatch{ItemsPerPage: ptr(18)})
	s.Logout()

	require.Contains(t, mem.data, Key)

	restored := Open(mem).State()
	assert.True(t, restored.DarkMode)
	assert.Equal(t, 18, restored.Preferences.ItemsPerPage)
	assert.False(t, restored.IsAuthenticated)
	assert.Nil(t, restored.User)
}

func TestOpenCorruptSlotUsesDefaults(t *testing.T) {
	mem := newMem()
	mem.data[Key] = []byte("{not json")
	assert.Equal(t, Default(), Open(mem).State())

	failing := newMem()
	failing.getErr = errors.New("disk gone")
	assert.Equal(t, Default(), Open(failing).State())
}

func TestPersistFailureKeepsChange(t *testing.T) {
	mem := newMem()
	mem.putErr = errors.New("read-only")
	s := Open(mem)

	s.ToggleTheme()
	assert.True(t, s.State().DarkMode)
	assert.Equal(t, 1, mem.puts)
}

func TestOnChange(t *testing.T) {
	s := Open(nil)
	var got State
	s.OnChange(func(st State) { got = st })
	s.SetLayout(LayoutList)
	assert.Equal(t, LayoutList, got.Layout.ContentLayout)
}
