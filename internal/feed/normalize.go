package feed

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pders01/bulletin/internal/media"
	"github.com/pders01/bulletin/internal/storage"
)

const (
	DefaultTitle    = "Untitled"
	DefaultCategory = "News"

	wordsPerMinute   = 200
	placeholderRunes = 30
	placeholderURL   = "https://placehold.co/1200x600/E2E8F0/A0AEC0?text=%s&font=roboto"
)

// urlCategories is checked in order against the media URL.
var urlCategories = []struct {
	key   string
	label string
}{
	{"giadinh", "Family"},
	{"giaitri", "Entertainment"},
	{"kinhdoanh", "Business"},
	{"suckhoe", "Health"},
	{"thethao", "Sports"},
	{"vnexpress", DefaultCategory},
}

// titleCategories is checked in order against the lowercased title when the
// URL gave nothing more specific than the default.
var titleCategories = []struct {
	phrases []string
	words   []string
	label   string
}{
	{phrases: []string{"thể thao", "bóng đá"}, label: "Sports"},
	{phrases: []string{"giải trí", "miss"}, label: "Entertainment"},
	{phrases: []string{"công nghệ"}, words: []string{"ai"}, label: "Technology"},
	{phrases: []string{"kinh tế", "bất động sản", "kinh doanh"}, label: "Business"},
	{phrases: []string{"sức khỏe", "sức khoẻ", "y tế"}, label: "Health"},
	{phrases: []string{"gia đình"}, label: "Family"},
}

// Zone-less layouts are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

var (
	blockBreaks = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|blockquote|figure)>`)
	manyBreaks  = regexp.MustCompile(`\n{3,}`)
)

func (p *Parser) normalizeAll(items []rawArticle) []*storage.Article {
	articles := make([]*storage.Article, 0, len(items))
	for i, item := range items {
		articles = append(articles, p.normalize(item, i == 0))
	}
	return articles
}

func (p *Parser) normalize(item rawArticle, featured bool) *storage.Article {
	title := singleLine(p.plainText(item.Title.String()))
	if title == "" {
		title = DefaultTitle
	}
	description := p.plainText(item.Description.String())
	content := p.plainText(item.Content.String())
	if content == "" {
		content = description
	}

	mediaURL, mediaType := resolveMedia(item, title)

	article := &storage.Article{
		ID:          first(item.ID, item.MongoID),
		Title:       title,
		Content:     content,
		Description: description,
		URL:         first(item.URL, item.Link),
		MediaURL:    mediaURL,
		MediaType:   mediaType,
		Category:    item.Category.String(),
		ReadMinutes: readMinutes(content),
		DateTime:    parseDate(firstFlex(item.DateTime, item.PublishedAt, item.CreatedAt, item.UpdatedAt, item.Time)),
		Featured:    featured,
	}
	if article.ID == "" {
		article.ID = p.newID()
	}
	if mediaType == storage.MediaVideo {
		article.ThumbnailURL = first(item.Thumbnail, item.ThumbnailURL, item.Image)
	}
	if article.Category == "" {
		article.Category = classify(mediaURL, title)
	}

	return article
}

// resolveMedia picks the primary media URL and its type. A declared video
// prefers video sources, a declared image prefers images, and anything else
// is classified by the URL itself.
func resolveMedia(item rawArticle, title string) (string, storage.MediaType) {
	var candidate string
	var mediaType storage.MediaType

	switch strings.ToLower(item.MediaType.String()) {
	case string(storage.MediaVideo):
		candidate = first(item.MediaURL, item.VideoURL, item.Image, item.Thumbnail)
		mediaType = storage.MediaVideo
	case string(storage.MediaImage):
		candidate = first(item.Image, item.MediaURL, item.Thumbnail)
		mediaType = storage.MediaImage
	default:
		candidate = first(item.MediaURL, item.VideoURL, item.Image, item.Thumbnail)
		mediaType = storage.MediaImage
		if media.IsVideoURL(candidate) {
			mediaType = storage.MediaVideo
		}
	}

	if candidate == "" {
		return placeholder(title), storage.MediaImage
	}
	return candidate, mediaType
}

func placeholder(title string) string {
	runes := []rune(title)
	if len(runes) > placeholderRunes {
		runes = runes[:placeholderRunes]
	}
	text := strings.ReplaceAll(url.QueryEscape(string(runes)), "+", "%20")
	return fmt.Sprintf(placeholderURL, text)
}

func classify(mediaURL, title string) string {
	category := DefaultCategory
	for _, c := range urlCategories {
		if strings.Contains(mediaURL, c.key) {
			category = c.label
			break
		}
	}
	if category != DefaultCategory {
		return category
	}

	lower := strings.ToLower(title)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, c := range titleCategories {
		for _, phrase := range c.phrases {
			if strings.Contains(lower, phrase) {
				return c.label
			}
		}
		for _, w := range c.words {
			for _, tw := range words {
				if tw == w {
					return c.label
				}
			}
		}
	}
	return DefaultCategory
}

func readMinutes(content string) int {
	words := len(strings.Fields(content))
	return int(math.Max(1, math.Ceil(float64(words)/wordsPerMinute)))
}

// parseDate returns nil when raw is empty or unparseable. Integers are epoch
// milliseconds.
func parseDate(raw flexString) *time.Time {
	s := raw.String()
	if s == "" {
		return nil
	}
	if raw.isNumeric() {
		ms, _ := strconv.ParseInt(s, 10, 64)
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// plainText strips markup while keeping paragraph breaks.
func (p *Parser) plainText(s string) string {
	if s == "" {
		return ""
	}
	s = blockBreaks.ReplaceAllString(s, "\n\n")
	s = html.UnescapeString(p.sanitizer.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	s = strings.Join(lines, "\n")
	s = manyBreaks.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func first(values ...flexString) string {
	return firstFlex(values...).String()
}

func firstFlex(values ...flexString) flexString {
	for _, v := range values {
		if v.String() != "" {
			return v
		}
	}
	return ""
}
