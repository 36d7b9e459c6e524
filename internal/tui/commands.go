package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/bulletin/internal/auth"
	"github.com/pders01/bulletin/internal/feed"
	"github.com/pders01/bulletin/internal/storage"
)

type articleRenderedMsg struct {
	id      string
	content string
}

type articleDetailMsg struct {
	id      string
	article *storage.Article
	err     error
}

type bookmarksLoadedMsg struct {
	bookmarks []*storage.Bookmark
	err       error
}

type bookmarkToggledMsg struct {
	id    string
	saved bool
	err   error
}

type bookmarkStateMsg struct {
	id    string
	saved bool
	err   error
}

type marketLoadedMsg struct{}

type authDoneMsg struct {
	session *storage.Session
	err     error
}

type signedOutMsg struct {
	err error
}

type statusMsg struct {
	text string
	kind StatusKind
}

type statusClearMsg struct {
	seq int
}

type errorMsg struct {
	err error
}

var errUnavailable = errors.New("not available in this session")

// loadArticles refetches the list. Progress is reported through the
// provider's change callback; the returned message covers runs without one.
func (a *App) loadArticles() tea.Cmd {
	return func() tea.Msg {
		a.provider.Load(a.ctx)
		return providerChangedMsg{}
	}
}

func (a *App) executeSearch(term string) tea.Cmd {
	return func() tea.Msg {
		a.provider.ExecuteSearch(a.ctx, term)
		return providerChangedMsg{}
	}
}

func (a *App) selectSuggestion(title string) tea.Cmd {
	return func() tea.Msg {
		a.provider.HandleSelectSuggestion(a.ctx, title)
		return providerChangedMsg{}
	}
}

func (a *App) fetchArticleDetail(id string) tea.Cmd {
	return func() tea.Msg {
		article, err := a.details.FetchArticle(a.ctx, id)
		return articleDetailMsg{id: id, article: article, err: err}
	}
}

func articleMarkdown(article *storage.Article, when string) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("# %s\n\n", article.Title))

	meta := []string{article.Category, when}
	if article.ReadMinutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min read", article.ReadMinutes))
	}
	content.WriteString(fmt.Sprintf("*%s*\n\n", strings.Join(meta, " • ")))

	if article.URL != "" {
		content.WriteString(fmt.Sprintf("[Read online](%s)\n\n", article.URL))
	}
	if article.IsVideo() && article.MediaURL != "" {
		content.WriteString(fmt.Sprintf("**Video:** %s\n\n", article.MediaURL))
	}

	content.WriteString("---\n\n")

	if article.Content != "" {
		content.WriteString(article.Content)
	} else {
		content.WriteString(article.Description)
	}
	return content.String()
}

func (a *App) renderArticle(article *storage.Article) tea.Cmd {
	md := articleMarkdown(article, formatWhen(article.DateTime, a.now()))
	r, err := a.getRenderer()
	id := article.ID
	return func() tea.Msg {
		if err != nil {
			return articleRenderedMsg{id: id, content: "Error initializing renderer: " + err.Error()}
		}
		rendered, err := r.Render(md)
		if err != nil {
			return articleRenderedMsg{id: id, content: fmt.Sprintf("Failed to render article: %s\n\nPress Esc to go back.", err)}
		}
		return articleRenderedMsg{id: id, content: rendered}
	}
}

func (a *App) loadBookmarks() tea.Cmd {
	if a.bookmarks == nil {
		return nil
	}
	return func() tea.Msg {
		bookmarks, err := a.bookmarks.GetBookmarks()
		return bookmarksLoadedMsg{bookmarks: bookmarks, err: err}
	}
}

// toggleBookmark flips the state the user is looking at. Removing a bookmark
// that is already gone counts as done.
func (a *App) toggleBookmark(article *storage.Article) tea.Cmd {
	if a.bookmarks == nil {
		return func() tea.Msg { return errorMsg{err: wrapErr("bookmarks", errUnavailable)} }
	}
	save := !a.bookmarked[article.ID]
	return func() tea.Msg {
		var err error
		if save {
			err = a.bookmarks.SaveBookmark(article)
		} else if err = a.bookmarks.DeleteBookmark(article.ID); errors.Is(err, storage.ErrBookmarkNotFound) {
			err = nil
		}
		return bookmarkToggledMsg{id: article.ID, saved: save, err: err}
	}
}

func (a *App) checkBookmark(id string) tea.Cmd {
	if a.bookmarks == nil || id == "" {
		return nil
	}
	return func() tea.Msg {
		saved, err := a.bookmarks.IsBookmarked(id)
		return bookmarkStateMsg{id: id, saved: saved, err: err}
	}
}

func (a *App) loadMarket() tea.Cmd {
	if a.board == nil {
		return nil
	}
	return func() tea.Msg {
		a.board.Load(a.ctx)
		return marketLoadedMsg{}
	}
}

func (a *App) submitLogin() tea.Cmd {
	if a.session == nil {
		return func() tea.Msg { return errorMsg{err: wrapErr("sign in", errUnavailable)} }
	}
	name := strings.TrimSpace(a.loginInputs[loginName].Value())
	email := strings.TrimSpace(a.loginInputs[loginEmail].Value())
	password := a.loginInputs[loginPassword].Value()
	register := a.registerMode

	a.authPending = true
	return func() tea.Msg {
		var (
			s   *storage.Session
			err error
		)
		if register {
			s, err = a.session.Register(a.ctx, name, email, password)
			if err != nil {
				return authDoneMsg{err: authError(err, "registration failed")}
			}
		} else {
			s, err = a.session.Login(a.ctx, email, password)
			if err != nil {
				return authDoneMsg{err: authError(err, "sign in failed")}
			}
		}
		return authDoneMsg{session: s}
	}
}

// authError prefers the server's explanation for rejected requests and keeps
// local validation errors as they are.
func authError(err error, fallback string) error {
	if errors.Is(err, feed.ErrFetchFailure) {
		return errors.New(auth.Message(err, fallback))
	}
	return err
}

func (a *App) signOut() tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: a.session.Logout()}
	}
}

// openURL validates url and hands it to the launcher.
func (a *App) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		if a.opener == nil {
			return errorMsg{err: wrapErr("open", errUnavailable)}
		}
		normalized, err := a.validator.ValidateAndNormalize(url)
		if err != nil {
			return errorMsg{err: wrapErr("refusing to open link", err)}
		}
		if err := a.opener.Open(normalized); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", truncateMiddle(normalized, 60), err)}
		}
		return statusMsg{text: "Opened " + truncateMiddle(normalized, 60), kind: StatusSuccess}
	}
}
