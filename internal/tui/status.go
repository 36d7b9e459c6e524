package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingArticles = "Loading articles…"
	MsgLoadingMore     = "Loading more…"
	MsgLoadingArticle  = "Loading article…"
	MsgLoadingMarket   = "Loading market data…"
	MsgSearching       = "Searching…"
	MsgNoResults       = "No results"
	MsgNoArticles      = "No articles yet"
	MsgBookmarked      = "Bookmarked"
	MsgBookmarkRemoved = "Bookmark removed"
	MsgSigningIn       = "Signing in…"
	MsgSignedOut       = "Signed out"
	MsgEndOfFeed       = "You have reached the end"
)

func MsgSignedIn(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Signed in"
	}
	return fmt.Sprintf("Signed in as %s", name)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgPageSummary describes how much of the feed is on screen.
func MsgPageSummary(page, shown, total int) string {
	return fmt.Sprintf("Page %d • %d of %d articles", page, shown, total)
}
