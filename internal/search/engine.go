package search

import (
	"strings"

	"github.com/pders01/bulletin/internal/storage"
)

// Matches reports whether term occurs in the article's title or content,
// ignoring case. term is compared as given; callers trim it.
func Matches(article *storage.Article, term string) bool {
	if article == nil {
		return false
	}
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(article.Title), needle) {
		return true
	}
	return article.Content != "" && strings.Contains(strings.ToLower(article.Content), needle)
}

// Filter returns the articles matching term in their original order. The
// result is never nil.
func Filter(list []*storage.Article, term string) []*storage.Article {
	results := make([]*storage.Article, 0)
	for _, article := range list {
		if Matches(article, term) {
			results = append(results, article)
		}
	}
	return results
}

// Titles returns up to limit distinct titles containing prefix, in list order.
func Titles(list []*storage.Article, prefix string, limit int) []string {
	needle := strings.ToLower(prefix)
	seen := make(map[string]bool)
	titles := make([]string, 0, limit)
	for _, article := range list {
		if len(titles) >= limit {
			break
		}
		if article == nil || seen[article.Title] {
			continue
		}
		if strings.Contains(strings.ToLower(article.Title), needle) {
			seen[article.Title] = true
			titles = append(titles, article.Title)
		}
	}
	return titles
}

// Snippet returns a window of the article's content around the first
// occurrence of term, for showing why a content-only match was returned.
func Snippet(article *storage.Article, term string, maxLength int) string {
	if article == nil || article.Content == "" {
		return ""
	}

	words := strings.Fields(article.Content)
	windowSize := maxLength / 8
	if windowSize <= 0 || windowSize >= len(words) {
		return truncate(strings.Join(words, " "), maxLength)
	}

	needle := strings.ToLower(term)
	start := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		if strings.Contains(window, needle) {
			start = i
			break
		}
	}

	return truncate(strings.Join(words[start:start+windowSize], " "), maxLength)
}

// truncate limits text length with ellipsis
func truncate(text string, maxLen int) string {
	if maxLen < 1 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}
