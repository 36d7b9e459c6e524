package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"github.com/pders01/bulletin/internal/media"
	"github.com/pders01/bulletin/internal/newsfeed"
	"github.com/pders01/bulletin/internal/search"
	"github.com/pders01/bulletin/internal/storage"
)

type articleItem struct {
	article    *storage.Article
	snippet    string
	bookmarked bool
	savedAt    time.Time
	now        time.Time
}

func (i articleItem) Title() string {
	prefix := ""
	if i.bookmarked {
		prefix = "★ "
	}
	if i.article.IsVideo() {
		prefix += "▶ "
	}
	if i.article.Featured {
		return FeaturedItemStyle.Render(prefix + i.article.Title)
	}
	return ItemStyle.Render(prefix + i.article.Title)
}

func (i articleItem) Description() string {
	parts := []string{CategoryStyle.Render(i.article.Category)}
	if i.snippet != "" {
		return TimeStyle.Render(strings.Join(append(parts, "…"+i.snippet), " • "))
	}
	if i.article.ReadMinutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min read", i.article.ReadMinutes))
	}
	if !i.savedAt.IsZero() {
		parts = append(parts, "saved "+formatWhen(&i.savedAt, i.now))
	} else {
		parts = append(parts, formatWhen(i.article.DateTime, i.now))
	}
	return TimeStyle.Render(strings.Join(parts, " • "))
}

func (i articleItem) FilterValue() string { return i.article.Title }

// contentMatch quotes the part of the body that matched term when the title
// alone does not explain the result.
func contentMatch(article *storage.Article, term string, width int) string {
	term = strings.TrimSpace(term)
	if term == "" || width < 1 {
		return ""
	}
	if strings.Contains(strings.ToLower(article.Title), strings.ToLower(term)) {
		return ""
	}
	return oneLine(search.Snippet(article, term, width))
}

type topicItem struct {
	group newsfeed.TopicGroup
}

func (i topicItem) Title() string { return i.group.Name }

func (i topicItem) Description() string {
	n := len(i.group.Articles)
	if n == 1 {
		return "1 article"
	}
	return fmt.Sprintf("%d articles", n)
}

func (i topicItem) FilterValue() string { return i.group.Name }

type mediaItem struct {
	url       string
	label     string
	mediaType media.Type
}

func (i mediaItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.label, i.mediaType)
}

func (i mediaItem) Description() string { return truncateMiddle(i.url, 72) }

func (i mediaItem) FilterValue() string { return i.url }

func newList(title string, filtering bool) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(filtering)
	l.SetShowHelp(false)
	return l
}

// selectedArticle returns the article under the cursor of l, if any.
func selectedArticle(l list.Model) *storage.Article {
	if i, ok := l.SelectedItem().(articleItem); ok {
		return i.article
	}
	return nil
}
