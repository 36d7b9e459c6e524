package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/media"
	"github.com/pders01/bulletin/internal/storage"
)

// keyMap holds the resolved key strings. Action keys are the configured
// binding behind the modifier; quit and back are used as written.
type keyMap struct {
	quit      string
	back      string
	search    string
	home      string
	refresh   string
	loadMore  string
	bookmark  string
	bookmarks string
	topics    string
	videos    string
	market    string
	login     string
	register  string
	openMedia string
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings
	back := b.Back
	if back == "" {
		back = "esc"
	}
	return keyMap{
		quit:      b.Quit,
		back:      back,
		search:    mod + b.Search,
		home:      mod + b.Home,
		refresh:   mod + b.Refresh,
		loadMore:  mod + b.LoadMore,
		bookmark:  mod + b.Bookmark,
		bookmarks: mod + b.Bookmarks,
		topics:    mod + b.Topics,
		videos:    mod + b.Videos,
		market:    mod + b.Market,
		login:     mod + b.Login,
		register:  mod + b.Register,
		openMedia: mod + b.OpenMedia,
	}
}

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: newKeyMap(cfg)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app, tea.Quit
	}
	if kh.isFiltering() {
		return kh.delegateToCharm(msg)
	}
	if key == kh.keys.back {
		return kh.navigateBack()
	}

	if model, cmd, handled := kh.handleGlobalKeys(key); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if key == kh.keys.quit {
		return kh.app, tea.Quit
	}

	if model, cmd, handled := kh.handleViewKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

// isFiltering reports whether a list is taking filter input, in which case
// every key belongs to it.
func (kh *KeyHandler) isFiltering() bool {
	switch kh.app.view {
	case ViewBookmarks:
		return kh.app.bookmarkList.SettingFilter()
	case ViewTopics:
		return kh.app.topicList.SettingFilter()
	default:
		return false
	}
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewLogin:
		return kh.app.session != nil && !kh.app.session.LoggedIn()
	default:
		return false
	}
}

// handleGlobalKeys switches between top-level views. They work from any view,
// text inputs included, since they all carry the modifier.
func (kh *KeyHandler) handleGlobalKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case kh.keys.home:
		return a, kh.goHome(), true
	case kh.keys.search:
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case kh.keys.bookmarks:
		kh.switchTo(ViewBookmarks)
		return a, a.loadBookmarks(), true
	case kh.keys.topics:
		kh.switchTo(ViewTopics)
		return a, nil, true
	case kh.keys.videos:
		kh.switchTo(ViewVideos)
		return a, nil, true
	case kh.keys.market:
		kh.switchTo(ViewMarket)
		a.refreshMarketView()
		if a.board != nil && !a.board.State().Loaded {
			return a, tea.Batch(a.setStatus(MsgLoadingMarket, StatusInfo), a.loadMarket(), a.startSpinner()), true
		}
		return a, nil, true
	case kh.keys.login:
		kh.switchTo(ViewLogin)
		a.err = nil
		if a.session != nil && !a.session.LoggedIn() {
			a.focusLogin(a.loginFocus)
		}
		return a, nil, true
	case kh.keys.refresh:
		if a.view == ViewMarket {
			return a, tea.Batch(a.setStatus(MsgLoadingMarket, StatusInfo), a.loadMarket(), a.startSpinner()), true
		}
		a.err = nil
		return a, tea.Batch(a.setStatus(MsgLoadingArticles, StatusInfo), a.loadArticles(), a.startSpinner()), true
	}
	return a, nil, false
}

func (kh *KeyHandler) switchTo(view View) {
	a := kh.app
	if a.view == ViewSearch {
		a.searchInput.Blur()
	}
	if a.view == ViewLogin && view != ViewLogin {
		for i := range a.loginInputs {
			a.loginInputs[i].Blur()
		}
	}
	a.view = view
}

// goHome leaves whatever view is open, search included.
func (kh *KeyHandler) goHome() tea.Cmd {
	a := kh.app
	kh.switchTo(ViewHome)
	a.searchInput.Reset()
	a.suggestionIndex = -1
	a.provider.ResetSearchState()
	a.syncLists()
	a.homeList.Select(0)
	return nil
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.app.view == ViewLogin {
		return kh.handleLoginInput(msg)
	}
	return kh.handleSearchInput(msg)
}

func (kh *KeyHandler) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	suggestions := a.provider.SearchState().Suggestions

	switch msg.String() {
	case "enter":
		if a.suggestionIndex >= 0 && a.suggestionIndex < len(suggestions) {
			title := suggestions[a.suggestionIndex]
			a.searchInput.SetValue(title)
			a.searchInput.CursorEnd()
			a.suggestionIndex = -1
			a.searchInput.Blur()
			return a, tea.Batch(a.setStatus(MsgSearching, StatusInfo), a.selectSuggestion(title), a.startSpinner())
		}
		term := sanitizeSearchInput(a.searchInput.Value())
		if term == "" {
			return a, nil
		}
		a.searchInput.Blur()
		return a, tea.Batch(a.setStatus(MsgSearching, StatusInfo), a.executeSearch(term), a.startSpinner())

	case "down":
		if a.suggestionIndex < len(suggestions)-1 {
			a.suggestionIndex++
			return a, nil
		}
		if len(a.searchList.Items()) > 0 {
			a.suggestionIndex = -1
			a.searchInput.Blur()
			a.searchList.Select(0)
		}
		return a, nil

	case "up":
		if a.suggestionIndex >= 0 {
			a.suggestionIndex--
		}
		return a, nil

	case "tab":
		if len(a.searchList.Items()) > 0 {
			a.suggestionIndex = -1
			a.searchInput.Blur()
			a.searchList.Select(0)
		}
		return a, nil
	}

	prev := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if value := a.searchInput.Value(); value != prev {
		a.suggestionIndex = -1
		a.provider.HandleSearchTermChange(sanitizeSearchInput(value))
	}
	return a, cmd
}

func (kh *KeyHandler) handleLoginInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch msg.String() {
	case kh.keys.register:
		a.registerMode = !a.registerMode
		a.err = nil
		if a.registerMode {
			a.focusLogin(loginName)
		} else {
			a.focusLogin(loginEmail)
		}
		return a, nil
	case "tab", "down":
		a.focusLogin(a.loginFocus + 1)
		return a, nil
	case "shift+tab", "up":
		a.focusLogin(a.loginFocus - 1)
		return a, nil
	case "enter":
		if a.authPending {
			return a, nil
		}
		if a.loginFocus != loginPassword {
			a.focusLogin(a.loginFocus + 1)
			return a, nil
		}
		a.err = nil
		return a, tea.Batch(a.setStatus(MsgSigningIn, StatusInfo), a.submitLogin(), a.startSpinner())
	}

	var cmd tea.Cmd
	a.loginInputs[a.loginFocus], cmd = a.loginInputs[a.loginFocus].Update(msg)
	return a, cmd
}

// handleViewKeys handles the action keys that only make sense in one view.
func (kh *KeyHandler) handleViewKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case kh.keys.loadMore:
		if a.view != ViewHome {
			return a, nil, false
		}
		return a, kh.loadMore(), true

	case kh.keys.bookmark:
		if article := kh.focusedArticle(); article != nil {
			return a, a.toggleBookmark(article), true
		}
		return a, nil, true

	case kh.keys.openMedia:
		if article := kh.focusedArticle(); article != nil {
			model, cmd := kh.openLinks(article)
			return model, cmd, true
		}
		return a, nil, true
	}

	switch a.view {
	case ViewSearch:
		switch key {
		case "tab", "shift+tab", "/", "i":
			a.searchInput.Focus()
			return a, nil, true
		case "up":
			if a.searchList.Index() == 0 {
				a.searchInput.Focus()
				return a, nil, true
			}
		}
	case ViewLogin:
		if key == "enter" && a.session != nil && a.session.LoggedIn() {
			return a, a.signOut(), true
		}
	}
	return a, nil, false
}

func (kh *KeyHandler) loadMore() tea.Cmd {
	a := kh.app
	if a.provider.SearchState().ActiveQuery != "" {
		return nil
	}
	if !a.provider.LoadMore() {
		return a.setStatus(MsgEndOfFeed, StatusInfo)
	}
	a.syncLists()
	return tea.Batch(a.setStatus(MsgLoadingMore, StatusInfo), a.startSpinner())
}

// focusedArticle is the article the action keys apply to in the current view.
func (kh *KeyHandler) focusedArticle() *storage.Article {
	a := kh.app
	switch a.view {
	case ViewHome:
		return selectedArticle(a.homeList)
	case ViewSearch:
		if !a.searchInput.Focused() {
			return selectedArticle(a.searchList)
		}
	case ViewBookmarks:
		return selectedArticle(a.bookmarkList)
	case ViewTopic:
		return selectedArticle(a.topicArticles)
	case ViewVideos:
		return selectedArticle(a.videoList)
	case ViewReader:
		return a.currentArticle
	}
	return nil
}

// delegateToCharm lets the bubbles components handle keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd
	enter := msg.String() == "enter"

	switch a.view {
	case ViewHome:
		if enter {
			return kh.selectHomeItem()
		}
		a.homeList, cmd = a.homeList.Update(msg)
		return a, cmd

	case ViewSearch:
		if enter {
			return a, a.openArticle(selectedArticle(a.searchList))
		}
		a.searchList, cmd = a.searchList.Update(msg)
		return a, cmd

	case ViewBookmarks:
		if enter && !a.bookmarkList.SettingFilter() {
			return a, a.openArticle(selectedArticle(a.bookmarkList))
		}
		a.bookmarkList, cmd = a.bookmarkList.Update(msg)
		return a, cmd

	case ViewTopics:
		if enter && !a.topicList.SettingFilter() {
			if i, ok := a.topicList.SelectedItem().(topicItem); ok {
				a.currentTopic = i.group.Name
				a.topicArticles.Title = "› " + i.group.Name
				a.view = ViewTopic
				a.syncLists()
				a.topicArticles.Select(0)
			}
			return a, nil
		}
		a.topicList, cmd = a.topicList.Update(msg)
		return a, cmd

	case ViewTopic:
		if enter {
			return a, a.openArticle(selectedArticle(a.topicArticles))
		}
		a.topicArticles, cmd = a.topicArticles.Update(msg)
		return a, cmd

	case ViewVideos:
		if enter {
			return a, a.openArticle(selectedArticle(a.videoList))
		}
		a.videoList, cmd = a.videoList.Update(msg)
		return a, cmd

	case ViewMedia:
		if enter {
			if i, ok := a.mediaList.SelectedItem().(mediaItem); ok {
				return a, a.openURL(i.url)
			}
			return a, nil
		}
		a.mediaList, cmd = a.mediaList.Update(msg)
		return a, cmd

	case ViewReader:
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case ViewMarket:
		a.marketViewport, cmd = a.marketViewport.Update(msg)
		return a, cmd
	}
	return a, nil
}

// selectHomeItem opens the selected article. Enter on the last item of the
// window pages in more instead, when there is more.
func (kh *KeyHandler) selectHomeItem() (tea.Model, tea.Cmd) {
	a := kh.app
	items := a.homeList.Items()
	if len(items) == 0 {
		return a, nil
	}
	fs := a.provider.FeedState()
	searching := a.provider.SearchState().ActiveQuery != ""
	if !searching && fs.HasMore && a.homeList.Index() == len(items)-1 {
		return a, kh.loadMore()
	}
	return a, a.openArticle(selectedArticle(a.homeList))
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	a.err = nil

	switch a.view {
	case ViewSearch:
		a.view = a.previousView
		a.searchInput.Reset()
		a.searchInput.Blur()
		a.suggestionIndex = -1
		a.provider.ResetSearchState()
		a.searchList.SetItems([]list.Item{})
		a.syncLists()
		return a, nil

	case ViewReader:
		a.view = a.readerReturn
		a.loadingArticle = false
		if a.view == ViewSearch {
			a.searchInput.Blur()
		}
		return a, nil

	case ViewMedia:
		a.view = a.mediaReturn
		a.mediaList.SetItems([]list.Item{})
		return a, nil

	case ViewTopic:
		a.view = ViewTopics
		a.currentTopic = ""
		return a, nil

	case ViewLogin:
		if a.authPending {
			return a, nil
		}
		kh.switchTo(ViewHome)
		return a, nil

	case ViewHome:
		if a.provider.SearchState().ActiveQuery != "" {
			return a, kh.goHome()
		}
		return a, nil

	default:
		kh.switchTo(ViewHome)
		return a, nil
	}
}

// enterSearchMode transitions to search view
func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewSearch:
	case ViewMedia:
		a.previousView = a.mediaReturn
	default:
		a.previousView = a.view
	}
	kh.switchTo(ViewSearch)
	a.searchInput.Focus()
	a.suggestionIndex = -1
	return a, textinput.Blink
}

// openLinks opens the only link an article has, or lists them when there are
// several.
func (kh *KeyHandler) openLinks(article *storage.Article) (tea.Model, tea.Cmd) {
	a := kh.app
	items := articleLinks(article)
	switch len(items) {
	case 0:
		return a, a.setStatus("Nothing to open", StatusWarn)
	case 1:
		return a, a.openURL(items[0].(mediaItem).url)
	}

	if a.view != ViewMedia {
		a.mediaReturn = a.view
	}
	a.mediaList.SetItems(items)
	a.mediaList.Select(0)
	a.mediaList.Title = "› links in: " + truncateEnd(article.Title, 50)
	a.view = ViewMedia
	return a, nil
}

func articleLinks(article *storage.Article) []list.Item {
	detector := media.DefaultDetector()
	seen := make(map[string]bool)
	var items []list.Item
	add := func(url, label string) {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		items = append(items, mediaItem{url: url, label: label, mediaType: detector.DetectType(url)})
	}
	if article.IsVideo() {
		add(article.MediaURL, "Video")
	}
	add(article.URL, "Article")
	if !article.IsVideo() {
		add(article.MediaURL, "Image")
	}
	return items
}

// sanitizeSearchInput limits search input length and collapses whitespace.
func sanitizeSearchInput(input string) string {
	r := []rune(input)
	if len(r) > 256 {
		input = string(r[:256])
	}
	return strings.Join(strings.Fields(input), " ")
}

// GetHelpForCurrentView returns the action keys worth showing in the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	k := kh.keys
	a := kh.app
	nav := []string{k.search + ": search", k.bookmarks + ": saved", k.topics + ": topics", k.videos + ": videos", k.market + ": market", k.login + ": account"}

	switch a.view {
	case ViewHome:
		help := []string{"enter: read", k.bookmark + ": save", k.refresh + ": refresh"}
		if a.provider.FeedState().HasMore && a.provider.SearchState().ActiveQuery == "" {
			help = append(help, k.loadMore+": more")
		}
		return append(help, nav...)
	case ViewReader:
		return []string{k.openMedia + ": open", k.bookmark + ": save", k.back + ": back"}
	case ViewSearch:
		if a.searchInput.Focused() {
			return []string{"enter: search", "↑↓: suggestions", "tab: results", k.back + ": close"}
		}
		return []string{"enter: read", "tab: search box", k.bookmark + ": save", k.back + ": close"}
	case ViewBookmarks:
		return []string{"enter: read", k.bookmark + ": remove", "/: filter", k.home + ": home"}
	case ViewTopics:
		return []string{"enter: open topic", "/: filter", k.home + ": home"}
	case ViewTopic, ViewVideos:
		return []string{"enter: read", k.openMedia + ": open", k.bookmark + ": save", k.back + ": back"}
	case ViewMarket:
		return []string{k.refresh + ": refresh", "↑↓: scroll", k.home + ": home"}
	case ViewLogin:
		if a.session != nil && a.session.LoggedIn() {
			return []string{"enter: sign out", k.home + ": home"}
		}
		mode := k.register + ": create account"
		if a.registerMode {
			mode = k.register + ": have an account"
		}
		return []string{"enter: next/submit", "tab: next field", mode, k.back + ": back"}
	case ViewMedia:
		return []string{"enter: open", k.back + ": back"}
	default:
		return []string{}
	}
}
