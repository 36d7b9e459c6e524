package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/media"
	"github.com/pders01/bulletin/internal/storage"
)

func TestKeyMap_DefaultModifier(t *testing.T) {
	k := newKeyMap(config.TestConfig())

	assert.Equal(t, "q", k.quit)
	assert.Equal(t, "esc", k.back)
	assert.Equal(t, "ctrl+s", k.search)
	assert.Equal(t, "ctrl+l", k.loadMore)
	assert.Equal(t, "ctrl+n", k.register)
}

func TestKeyMap_CustomModifier(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Modifier = "alt"
	cfg.Keys.Bindings.Search = "f"
	cfg.Keys.Bindings.Back = ""

	k := newKeyMap(cfg)
	assert.Equal(t, "alt+f", k.search)
	assert.Equal(t, "alt+h", k.home)
	assert.Equal(t, "esc", k.back, "an empty back binding falls back to esc")
}

func TestKeyHandler_CustomModifierSwitchesViews(t *testing.T) {
	h := newHarness(t, &fakeSource{articles: numbered(3)}, func(d *Deps) {
		cfg := config.TestConfig()
		cfg.Keys.Modifier = "alt"
		d.Config = cfg
	})

	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t"), Alt: true})
	assert.Equal(t, ViewTopics, h.app.view)

	// the plain ctrl chord means nothing now
	h.press(keyCtrl('h'))
	assert.Equal(t, ViewTopics, h.app.view)

	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h"), Alt: true})
	assert.Equal(t, ViewHome, h.app.view)
}

func TestKeyHandler_GlobalKeysWorkInsideSearchInput(t *testing.T) {
	h := newHarness(t, &fakeSource{articles: numbered(3)})

	h.press(keyCtrl('s'))
	require.True(t, h.app.searchInput.Focused())

	h.press(keyCtrl('k'))
	assert.Equal(t, ViewBookmarks, h.app.view)
	assert.False(t, h.app.searchInput.Focused())
}

func TestKeyHandler_FilteringOwnsKeys(t *testing.T) {
	h := newHarness(t, &fakeSource{articles: numbered(3)})

	h.run(h.press(keyCtrl('b')))
	h.run(h.press(keyCtrl('k')))
	require.Len(t, h.app.bookmarkList.Items(), 1)

	h.typeText("/")
	require.True(t, h.app.bookmarkList.SettingFilter())

	// q types into the filter instead of quitting
	cmd := h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	for _, msg := range collect(cmd) {
		_, isQuit := msg.(tea.QuitMsg)
		assert.False(t, isQuit)
	}
	assert.Equal(t, ViewBookmarks, h.app.view)
}

func TestKeyHandler_LoadMoreOnlyOnHome(t *testing.T) {
	h := newHarness(t, &fakeSource{articles: numbered(12)})

	h.press(keyCtrl('v'))
	h.press(keyCtrl('l'))
	assert.Equal(t, 1, h.app.provider.FeedState().Page)

	h.press(keyCtrl('h'))
	h.press(keyCtrl('l'))
	assert.Equal(t, 2, h.app.provider.FeedState().Page)
}

func TestKeyHandler_SearchFocusToggle(t *testing.T) {
	h := newHarness(t, &fakeSource{articles: numbered(12)})

	h.press(keyCtrl('s'))
	h.typeText("Article")
	h.run(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
	require.False(t, h.app.searchInput.Focused())
	require.NotEmpty(t, h.app.searchList.Items())

	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	assert.True(t, h.app.searchInput.Focused())

	h.press(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, h.app.searchInput.Focused())

	h.press(tea.KeyMsg{Type: tea.KeyUp})
	assert.True(t, h.app.searchInput.Focused(), "up at the top of the results returns to the input")
}

func TestKeyHandler_BackFromSearchRestoresPreviousView(t *testing.T) {
	h := newHarness(t, &fakeSource{articles: numbered(3)})

	h.press(keyCtrl('v'))
	h.press(keyCtrl('s'))
	require.Equal(t, ViewSearch, h.app.view)

	h.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewVideos, h.app.view)
}

func TestKeyHandler_HelpFollowsView(t *testing.T) {
	h := newHarness(t, &fakeSource{articles: numbered(12)})

	assert.Contains(t, h.app.keyHandler.GetHelpForCurrentView(), "ctrl+l: more")

	h.press(keyCtrl('g'))
	assert.Contains(t, h.app.keyHandler.GetHelpForCurrentView(), "ctrl+r: refresh")

	h.press(keyCtrl('s'))
	assert.Contains(t, h.app.keyHandler.GetHelpForCurrentView(), "↑↓: suggestions")
}

func TestArticleLinks(t *testing.T) {
	t.Run("video first", func(t *testing.T) {
		items := articleLinks(&storage.Article{
			URL:       "https://news.example.com/clip",
			MediaURL:  "https://cdn.example.com/clip.mp4",
			MediaType: storage.MediaVideo,
		})
		require.Len(t, items, 2)
		assert.Equal(t, "Video", items[0].(mediaItem).label)
		assert.Equal(t, media.TypeVideo, items[0].(mediaItem).mediaType)
		assert.Equal(t, "Article", items[1].(mediaItem).label)
	})

	t.Run("image after article", func(t *testing.T) {
		items := articleLinks(&storage.Article{
			URL:      "https://news.example.com/story",
			MediaURL: "https://cdn.example.com/cover.jpg",
		})
		require.Len(t, items, 2)
		assert.Equal(t, "Article", items[0].(mediaItem).label)
		assert.Equal(t, "Image", items[1].(mediaItem).label)
	})

	t.Run("duplicates and blanks dropped", func(t *testing.T) {
		items := articleLinks(&storage.Article{
			URL:      "https://news.example.com/story",
			MediaURL: " https://news.example.com/story ",
		})
		assert.Len(t, items, 1)
		assert.Empty(t, articleLinks(&storage.Article{}))
	})
}

func TestSanitizeSearchInput(t *testing.T) {
	assert.Equal(t, "giá vàng", sanitizeSearchInput("  giá \t  vàng \n"))
	assert.Equal(t, "", sanitizeSearchInput("   "))

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'ư'
	}
	assert.Len(t, []rune(sanitizeSearchInput(string(long))), 256)
}
