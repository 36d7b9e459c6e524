package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/bulletin/internal/auth"
	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/market"
	"github.com/pders01/bulletin/internal/newsfeed"
	"github.com/pders01/bulletin/internal/storage"
	"github.com/pders01/bulletin/internal/validation"
)

const statusTTL = 3 * time.Second

// URLOpener hands a URL to an external program.
type URLOpener interface {
	Open(url string) error
}

// ArticleDetailer fetches the full record for one article.
type ArticleDetailer interface {
	FetchArticle(ctx context.Context, id string) (*storage.Article, error)
}

// Deps are the collaborators the app drives. Provider is required; the rest
// may be nil, which disables the views that need them.
type Deps struct {
	Config    *config.Config
	Provider  *newsfeed.Provider
	Bookmarks *storage.Store
	Session   *auth.Session
	Board     *market.Board
	Opener    URLOpener
	Details   ArticleDetailer
}

type App struct {
	config     *config.Config
	provider   *newsfeed.Provider
	bookmarks  *storage.Store
	session    *auth.Session
	board      *market.Board
	opener     URLOpener
	details    ArticleDetailer
	validator  *validation.EndpointValidator
	keyHandler *KeyHandler

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	homeList      list.Model
	searchList    list.Model
	bookmarkList  list.Model
	topicList     list.Model
	topicArticles list.Model
	videoList     list.Model
	mediaList     list.Model

	searchInput     textinput.Model
	suggestionIndex int

	loginInputs  []textinput.Model
	loginFocus   int
	registerMode bool
	authPending  bool

	viewport       viewport.Model
	marketViewport viewport.Model
	spinner        spinner.Model
	spinning       bool

	view           View
	previousView   View
	readerReturn   View
	mediaReturn    View
	currentArticle *storage.Article
	currentTopic   string
	loadingArticle bool
	bookmarked     map[string]bool

	status     string
	statusKind StatusKind
	statusSeq  int
	err        error

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

const (
	loginName = iota
	loginEmail
	loginPassword
)

func NewApp(deps Deps) *App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.TestConfig()
	}
	ApplyColors(cfg.UI.Colors)

	si := textinput.New()
	si.Placeholder = "Search articles..."
	si.CharLimit = 256

	name := textinput.New()
	name.Placeholder = "Full name"
	email := textinput.New()
	email.Placeholder = "Email"
	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusInfoStyle

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		provider:        deps.Provider,
		bookmarks:       deps.Bookmarks,
		session:         deps.Session,
		board:           deps.Board,
		opener:          deps.Opener,
		details:         deps.Details,
		validator:       validation.NewExternalURLValidator(),
		ctx:             ctx,
		cancel:          cancel,
		now:             time.Now,
		homeList:        newList("› latest", false),
		searchList:      newList("› results", false),
		bookmarkList:    newList("› bookmarks", true),
		topicList:       newList("› topics", true),
		topicArticles:   newList("› topic", false),
		videoList:       newList("› videos", false),
		mediaList:       newList("› media", false),
		searchInput:     si,
		suggestionIndex: -1,
		loginInputs:     []textinput.Model{name, email, password},
		loginFocus:      loginEmail,
		viewport:        viewport.New(0, 0),
		marketViewport:  viewport.New(0, 0),
		spinner:         sp,
		view:            ViewHome,
		previousView:    ViewHome,
		readerReturn:    ViewHome,
		mediaReturn:     ViewHome,
		bookmarked:      make(map[string]bool),
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loadArticles(),
		a.loadBookmarks(),
		a.startSpinner(),
	)
}

// Close stops background work. The provider is closed here as well since the
// app owns it for the run.
func (a *App) Close() {
	a.cancel()
	a.provider.Close()
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	minWidth := a.config.UI.Article.WordWrapMinWidth

	wordWrapWidth := (a.width * 9) / 10
	if maxWidth > 0 && wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) contentHeight() int {
	return max(a.height-3, 1)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	h := a.contentHeight()

	for _, l := range []*list.Model{&a.homeList, &a.bookmarkList, &a.topicList, &a.topicArticles, &a.videoList, &a.mediaList} {
		l.SetSize(width, h-1)
	}
	// search chrome: header, input frame, suggestions, summary line
	a.searchList.SetSize(width, max(h-10, 5))

	a.viewport.Width = width
	a.viewport.Height = h
	a.marketViewport.Width = width
	a.marketViewport.Height = h - 2

	inputWidth := max(width-8, 10)
	a.searchInput.Width = inputWidth
	for i := range a.loginInputs {
		a.loginInputs[i].Width = min(inputWidth, 48)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		if a.view == ViewMarket {
			a.refreshMarketView()
		}
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case providerChangedMsg:
		a.syncLists()
		return a, a.startSpinner()

	case spinner.TickMsg:
		if !a.isBusy() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case articleRenderedMsg:
		if a.view == ViewReader && a.currentArticle != nil && a.currentArticle.ID == msg.id {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
		}
		return a, nil

	case articleDetailMsg:
		if a.currentArticle == nil || a.currentArticle.ID != msg.id {
			return a, nil
		}
		if msg.err != nil {
			debuglog.Warnf("article detail %s: %v", msg.id, msg.err)
		} else if msg.article != nil {
			a.currentArticle = msg.article
		}
		return a, a.renderArticle(a.currentArticle)

	case bookmarksLoadedMsg:
		if msg.err != nil {
			a.err = wrapErr("load bookmarks", msg.err)
			return a, nil
		}
		a.setBookmarks(msg.bookmarks)
		return a, nil

	case bookmarkToggledMsg:
		if msg.err != nil {
			a.err = wrapErr("bookmark", msg.err)
			return a, nil
		}
		a.bookmarked[msg.id] = msg.saved
		a.syncLists()
		text := MsgBookmarkRemoved
		if msg.saved {
			text = MsgBookmarked
		}
		return a, tea.Batch(a.setStatus(text, StatusSuccess), a.loadBookmarks())

	case bookmarkStateMsg:
		if msg.err != nil {
			debuglog.Warnf("bookmark state %s: %v", msg.id, msg.err)
			return a, nil
		}
		if a.bookmarked[msg.id] != msg.saved {
			a.bookmarked[msg.id] = msg.saved
			a.syncLists()
		}
		return a, nil

	case marketLoadedMsg:
		a.refreshMarketView()
		return a, nil

	case authDoneMsg:
		a.authPending = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.resetLoginForm()
		a.view = ViewHome
		return a, a.setStatus(MsgSignedIn(msg.session.Name), StatusSuccess)

	case signedOutMsg:
		if msg.err != nil {
			a.err = wrapErr("sign out", msg.err)
			return a, nil
		}
		a.resetLoginForm()
		return a, a.setStatus(MsgSignedOut, StatusInfo)

	case statusMsg:
		return a, a.setStatus(msg.text, msg.kind)

	case statusClearMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case errorMsg:
		a.err = msg.err
		return a, nil
	}

	var cmd tea.Cmd
	switch a.view {
	case ViewReader:
		switch msg.(type) {
		case tea.MouseMsg:
			a.viewport, cmd = a.viewport.Update(msg)
		}
	case ViewMarket:
		switch msg.(type) {
		case tea.MouseMsg:
			a.marketViewport, cmd = a.marketViewport.Update(msg)
		}
	}
	return a, cmd
}

// setStatus shows text in the status bar until it is replaced or expires.
func (a *App) setStatus(text string, kind StatusKind) tea.Cmd {
	a.statusSeq++
	seq := a.statusSeq
	a.status = text
	a.statusKind = kind
	if kind == StatusError {
		return nil
	}
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

// isBusy reports whether anything on screen is waiting on background work.
func (a *App) isBusy() bool {
	if a.loadingArticle || a.authPending {
		return true
	}
	if a.board != nil && a.board.State().Loading {
		return true
	}
	fs := a.provider.FeedState()
	if fs.Loading || fs.LoadingMore {
		return true
	}
	return a.provider.SearchState().Searching
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning || !a.isBusy() {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

// syncLists rebuilds every article list from the provider and bookmark state.
func (a *App) syncLists() {
	now := a.now()
	toItems := func(arts []*storage.Article) []list.Item {
		items := make([]list.Item, len(arts))
		for i, art := range arts {
			items[i] = articleItem{article: art, bookmarked: a.bookmarked[art.ID], now: now}
		}
		return items
	}

	fs := a.provider.FeedState()
	ss := a.provider.SearchState()

	a.homeList.SetItems(toItems(a.provider.Visible()))
	if ss.ActiveQuery != "" {
		a.homeList.Title = "› results for " + truncateEnd(ss.ActiveQuery, 40)
	} else {
		a.homeList.Title = "› latest"
	}

	results := toItems(ss.Results)
	for i, it := range results {
		ai := it.(articleItem)
		ai.snippet = contentMatch(ai.article, ss.ActiveQuery, a.width-24)
		results[i] = ai
	}
	a.searchList.SetItems(results)
	if a.suggestionIndex >= len(ss.Suggestions) {
		a.suggestionIndex = len(ss.Suggestions) - 1
	}

	a.videoList.SetItems(toItems(newsfeed.Videos(fs.All)))

	groups := newsfeed.GroupByTopic(fs.All, a.config.Topics)
	topicItems := make([]list.Item, len(groups))
	for i, g := range groups {
		topicItems[i] = topicItem{group: g}
		if g.Name == a.currentTopic {
			a.topicArticles.SetItems(toItems(g.Articles))
		}
	}
	a.topicList.SetItems(topicItems)

	if a.view == ViewBookmarks {
		a.bookmarkList.SetItems(a.bookmarkItems(a.bookmarkList.Items(), now))
	}
}

func (a *App) setBookmarks(bookmarks []*storage.Bookmark) {
	now := a.now()
	a.bookmarked = make(map[string]bool, len(bookmarks))
	items := make([]list.Item, len(bookmarks))
	for i, b := range bookmarks {
		art := b.Article
		a.bookmarked[art.ID] = true
		items[i] = articleItem{article: &art, bookmarked: true, savedAt: b.SavedAt, now: now}
	}
	a.bookmarkList.SetItems(items)
	a.syncLists()
}

// bookmarkItems drops entries that were unbookmarked since the list loaded.
func (a *App) bookmarkItems(items []list.Item, now time.Time) []list.Item {
	kept := make([]list.Item, 0, len(items))
	for _, it := range items {
		if ai, ok := it.(articleItem); ok && a.bookmarked[ai.article.ID] {
			ai.now = now
			kept = append(kept, ai)
		}
	}
	return kept
}

// openArticle shows article in the reader; Esc returns to the current view.
func (a *App) openArticle(article *storage.Article) tea.Cmd {
	if article == nil {
		return nil
	}
	if a.view != ViewReader {
		a.readerReturn = a.view
	}
	a.currentArticle = article
	a.loadingArticle = true
	a.view = ViewReader
	a.viewport.SetContent("")

	var load tea.Cmd
	if a.details != nil {
		load = a.fetchArticleDetail(article.ID)
	} else {
		load = a.renderArticle(article)
	}
	return tea.Batch(a.setStatus(MsgLoadingArticle, StatusInfo), a.startSpinner(), load, a.checkBookmark(article.ID))
}

func (a *App) resetLoginForm() {
	for i := range a.loginInputs {
		a.loginInputs[i].Reset()
		a.loginInputs[i].Blur()
	}
	a.registerMode = false
	a.loginFocus = loginEmail
}

// focusLogin moves focus to field, skipping the name field outside register mode.
func (a *App) focusLogin(field int) {
	first := loginEmail
	if a.registerMode {
		first = loginName
	}
	if field < first {
		field = loginPassword
	}
	if field > loginPassword {
		field = first
	}
	a.loginFocus = field
	for i := range a.loginInputs {
		if i == field {
			a.loginInputs[i].Focus()
		} else {
			a.loginInputs[i].Blur()
		}
	}
}
