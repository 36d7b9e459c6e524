package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pders01/bulletin/internal/market"
)

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewHome:
		content = a.viewHome()
	case ViewReader:
		if a.loadingArticle {
			content = renderCentered(a.width, a.contentHeight(), renderMuted(a.spinner.View()+" "+MsgLoadingArticle))
		} else {
			content = a.viewport.View()
		}
	case ViewSearch:
		content = a.viewSearch()
	case ViewBookmarks:
		content = a.viewBookmarks()
	case ViewTopics:
		content = a.viewTopics()
	case ViewTopic:
		content = a.topicArticles.View()
	case ViewVideos:
		content = a.viewVideos()
	case ViewMarket:
		content = a.viewMarket()
	case ViewLogin:
		content = a.viewLogin()
	case ViewMedia:
		content = a.mediaList.View()
	}

	content = ContentWrapper(a.width, a.contentHeight()).Render(content)
	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width-2), a.statusBar())
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height)
}

// viewHome renders the visible list. Loading, failure, an empty feed and a
// search without matches each get their own screen.
func (a *App) viewHome() string {
	h := a.contentHeight()
	fs := a.provider.FeedState()
	ss := a.provider.SearchState()

	if ss.ActiveQuery != "" {
		switch {
		case ss.Err != "":
			return renderNotice(a.width, h, "Search failed", ss.Err, true)
		case ss.Searching && len(ss.Results) == 0:
			return renderCentered(a.width, h, renderMuted(a.spinner.View()+" "+MsgSearching))
		case ss.Computed && len(ss.Results) == 0:
			return renderNotice(a.width, h, MsgNoResults, fmt.Sprintf("Nothing matches %q. %s: clear search", ss.ActiveQuery, a.keyHandler.keys.home), false)
		}
		return a.homeList.View()
	}

	switch {
	case fs.Loading && len(fs.All) == 0:
		return renderCentered(a.width, h, renderMuted(a.spinner.View()+" "+MsgLoadingArticles))
	case fs.Err != "":
		return renderNotice(a.width, h, "Could not load articles", fs.Err+" • "+a.keyHandler.keys.refresh+": retry", true)
	case len(fs.All) == 0:
		return renderCentered(a.width, h, GetWelcomeMessage(MsgNoArticles+" • "+a.keyHandler.keys.refresh+": refresh"))
	}

	footer := renderMuted(MsgPageSummary(fs.Page, len(fs.Displayed), len(fs.All)))
	switch {
	case fs.LoadingMore:
		footer += renderMuted(" • " + a.spinner.View() + " " + MsgLoadingMore)
	case fs.HasMore:
		footer += renderMuted(" • " + a.keyHandler.keys.loadMore + ": load more")
	}
	return lipgloss.JoinVertical(lipgloss.Top, a.homeList.View(), footer)
}

func (a *App) viewSearch() string {
	ss := a.provider.SearchState()
	k := a.keyHandler.keys

	rows := []string{
		renderHeader("› search", "", a.width),
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
	}

	if a.searchInput.Focused() && len(ss.Suggestions) > 0 {
		for i, s := range ss.Suggestions {
			s = truncateEnd(oneLine(s), a.width-6)
			line := "  " + s
			if i == a.suggestionIndex {
				line = lipgloss.NewStyle().Foreground(AccentColor).Bold(true).Render("› " + s)
			} else {
				line = renderMuted(line)
			}
			rows = append(rows, line)
		}
	} else if ss.FetchingSuggestions {
		rows = append(rows, renderMuted("  "+a.spinner.View()+" suggestions…"))
	}

	var summary string
	switch {
	case ss.Err != "":
		summary = ErrorMessageStyle.Render("✗ " + ss.Err)
	case ss.Searching:
		summary = renderMuted(a.spinner.View() + " " + MsgSearching)
	case ss.Computed && len(ss.Results) == 0:
		summary = renderMuted(fmt.Sprintf("%s for %q", MsgNoResults, ss.ActiveQuery))
	case ss.Computed:
		summary = renderMuted(MsgResultsCount(len(ss.Results)))
	default:
		summary = renderHelp("Type to search • " + k.back + ": close")
	}
	rows = append(rows, summary, "")

	if ss.Computed && len(ss.Results) > 0 {
		rows = append(rows, a.searchList.View())
	}

	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

func (a *App) viewBookmarks() string {
	if a.bookmarks == nil {
		return renderNotice(a.width, a.contentHeight(), "Bookmarks unavailable", "No local database is open", true)
	}
	if len(a.bookmarkList.Items()) == 0 {
		return renderNotice(a.width, a.contentHeight(), "No bookmarks yet", a.keyHandler.keys.bookmark+" on any article saves it here", false)
	}
	return a.bookmarkList.View()
}

func (a *App) viewTopics() string {
	if len(a.topicList.Items()) == 0 {
		fs := a.provider.FeedState()
		if fs.Loading {
			return renderCentered(a.width, a.contentHeight(), renderMuted(a.spinner.View()+" "+MsgLoadingArticles))
		}
		return renderNotice(a.width, a.contentHeight(), "No topics", "None of the configured topics match the loaded articles", false)
	}
	return a.topicList.View()
}

func (a *App) viewVideos() string {
	if len(a.videoList.Items()) == 0 {
		return renderNotice(a.width, a.contentHeight(), "No videos", "The loaded articles carry no video", false)
	}
	return a.videoList.View()
}

func (a *App) viewMarket() string {
	if a.board == nil {
		return renderNotice(a.width, a.contentHeight(), "Market data unavailable", "", true)
	}
	state := a.board.State()
	if state.Loading && !state.Loaded {
		return renderCentered(a.width, a.contentHeight(), renderMuted(a.spinner.View()+" "+MsgLoadingMarket))
	}
	return lipgloss.JoinVertical(lipgloss.Top,
		renderHeader("› market", "Gold in thousand VND per tael • rates in VND", a.width),
		a.marketViewport.View(),
	)
}

// refreshMarketView re-renders the board into the market viewport.
func (a *App) refreshMarketView() {
	if a.board == nil {
		return
	}
	a.marketViewport.SetContent(renderMarket(a.board.State(), a.width))
}

func renderMarket(state market.BoardState, width int) string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("Gold prices"))
	switch {
	case state.GoldErr != "":
		sections = append(sections, ErrorMessageStyle.Render("✗ "+state.GoldErr))
	case len(state.Gold) == 0:
		sections = append(sections, renderMuted("No gold prices"))
	default:
		rows := make([][]string, len(state.Gold))
		for i, g := range state.Gold {
			rows[i] = []string{g.Name, g.Region, market.FormatAmount(g.Purchase), market.FormatAmount(g.Sell)}
		}
		sections = append(sections, renderTable([]string{"Type", "Region", "Buy", "Sell"}, rows, width))
	}

	sections = append(sections, "", HeaderStyle.Render("Exchange rates"))
	switch {
	case state.RatesErr != "":
		sections = append(sections, ErrorMessageStyle.Render("✗ "+state.RatesErr))
	case len(state.Rates) == 0:
		sections = append(sections, renderMuted("No exchange rates"))
	default:
		rows := make([][]string, len(state.Rates))
		for i, r := range state.Rates {
			rows[i] = []string{r.CurrencyCode, market.CurrencyName(r.CurrencyCode), market.FormatAmount(r.Buy), market.FormatAmount(r.Sell)}
		}
		sections = append(sections, renderTable([]string{"Code", "Currency", "Buy", "Sell"}, rows, width))
	}

	return strings.Join(sections, "\n")
}

func renderTable(headers []string, rows [][]string, width int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SeparatorStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle
			if row == table.HeaderRow {
				style = TableHeaderStyle
			}
			if col >= 2 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

func (a *App) viewLogin() string {
	h := a.contentHeight()
	if a.session == nil {
		return renderNotice(a.width, h, "Sign-in unavailable", "", true)
	}

	if current := a.session.Current(); current != nil {
		name := current.Name
		if name == "" {
			name = current.Subject
		}
		rows := []string{
			renderHeader("› account", "", a.width),
			"",
			ItemStyle.Render("Signed in as " + name),
		}
		if current.Role != "" {
			rows = append(rows, renderMuted("Role: "+current.Role))
		}
		if current.UserID != "" {
			rows = append(rows, renderMuted("User: "+current.UserID))
		}
		rows = append(rows, "", renderHelp("enter: sign out"))
		return renderCentered(a.width, h, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	title := "› sign in"
	if a.registerMode {
		title = "› create account"
	}
	rows := []string{renderHeader(title, "", a.width), ""}
	for i, in := range a.loginInputs {
		if i == loginName && !a.registerMode {
			continue
		}
		rows = append(rows, renderInputFrame(in.View(), in.Focused(), in.Width))
	}
	if a.authPending {
		rows = append(rows, renderMuted(a.spinner.View()+" "+MsgSigningIn))
	}
	return renderCentered(a.width, h, lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// statusBar shows an error, else a transient status, else the view's keys.
func (a *App) statusBar() string {
	style := StatusBarStyle.Width(a.width)

	if a.err != nil {
		return style.Render(ErrorMessageStyle.Render("✗ " + describeErr(a.err)))
	}
	if a.status != "" {
		return style.Render(a.statusKind.style().Render(a.status))
	}
	help := a.keyHandler.GetHelpForCurrentView()
	if a.view == ViewReader && a.currentArticle != nil && a.bookmarked[a.currentArticle.ID] {
		help = append([]string{"★ saved"}, help...)
	}
	return style.Render(strings.Join(help, " • "))
}
