package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/pders01/bulletin/internal/storage"
)

// Parser decodes article payloads from the news API. JSON bodies may be a bare
// array or an object wrapping the array in data, articles, or items. XML bodies
// are read as RSS/Atom.
type Parser struct {
	feeds     *gofeed.Parser
	sanitizer *bluemonday.Policy
	newID     func() string
}

func NewParser() *Parser {
	return &Parser{
		feeds:     gofeed.NewParser(),
		sanitizer: bluemonday.StrictPolicy(),
		newID:     uuid.NewString,
	}
}

// Decode parses a list payload into normalized articles. An empty list is
// not an error.
func (p *Parser) Decode(body []byte, contentType string) ([]*storage.Article, error) {
	switch sniff(body, contentType) {
	case payloadJSON:
		items, err := decodeJSONList(body)
		if err != nil {
			return nil, err
		}
		return p.normalizeAll(items), nil
	case payloadXML:
		items, err := p.decodeXML(body)
		if err != nil {
			return nil, err
		}
		return p.normalizeAll(items), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized content", ErrMalformedPayload)
	}
}

// DecodeOne parses a single-article payload: a bare object, or one wrapped in
// data or article.
func (p *Parser) DecodeOne(body []byte) (*storage.Article, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformedPayload)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	for _, key := range []string{"data", "article"} {
		if raw, ok := envelope[key]; ok && isObject(raw) {
			trimmed = raw
			break
		}
	}

	var item rawArticle
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return p.normalize(item, false), nil
}

type payloadKind int

const (
	payloadUnknown payloadKind = iota
	payloadJSON
	payloadXML
)

// sniff looks at the first significant byte and falls back to the declared
// content type.
func sniff(body []byte, contentType string) payloadKind {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[', '{':
			return payloadJSON
		case '<':
			return payloadXML
		}
	}
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return payloadJSON
	case strings.Contains(ct, "xml"):
		return payloadXML
	}
	return payloadUnknown
}

func decodeJSONList(body []byte) ([]rawArticle, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []rawArticle
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	for _, key := range []string{"data", "articles", "items"} {
		raw, ok := envelope[key]
		if !ok || !isArray(raw) {
			continue
		}
		var items []rawArticle
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPayload, key, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("%w: no data, articles or items array", ErrMalformedPayload)
}

func (p *Parser) decodeXML(body []byte) ([]rawArticle, error) {
	parsed, err := p.feeds.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %w", ErrMalformedPayload, err)
	}

	items := make([]rawArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, fromFeedItem(item))
	}
	return items, nil
}

func fromFeedItem(item *gofeed.Item) rawArticle {
	raw := rawArticle{
		ID:          flexString(item.GUID),
		Title:       flexString(item.Title),
		Content:     flexString(item.Content),
		Description: flexString(item.Description),
		URL:         flexString(item.Link),
	}

	for _, enclosure := range item.Enclosures {
		if enclosure.URL == "" {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "video/") {
			raw.MediaType = flexString(storage.MediaVideo)
			raw.VideoURL = flexString(enclosure.URL)
			continue
		}
		if raw.Image == "" {
			raw.Image = flexString(enclosure.URL)
		}
	}
	if raw.Image == "" && item.Image != nil {
		raw.Image = flexString(item.Image.URL)
	}
	if raw.Image == "" {
		if found := findMediaInHTML(item.Content + " " + item.Description); len(found) > 0 {
			raw.Image = flexString(found[0])
		}
	}

	switch {
	case item.PublishedParsed != nil:
		raw.PublishedAt = flexString(item.PublishedParsed.Format(time.RFC3339))
	case item.UpdatedParsed != nil:
		raw.UpdatedAt = flexString(item.UpdatedParsed.Format(time.RFC3339))
	}

	return raw
}

var (
	imgRegex   = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
	videoRegex = regexp.MustCompile(`<video[^>]+src=["']([^"']+)["']`)
)

func findMediaInHTML(html string) []string {
	var urls []string
	for _, re := range []*regexp.Regexp{imgRegex, videoRegex} {
		for _, match := range re.FindAllStringSubmatch(html, -1) {
			if len(match) > 1 {
				urls = append(urls, match[1])
			}
		}
	}
	return urls
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// flexString accepts JSON strings and numbers. Other values decode to "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*s = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = flexString(v)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*s = flexString(n.String())
	default:
		*s = ""
	}
	return nil
}

func (s flexString) String() string {
	return strings.TrimSpace(string(s))
}

// isNumeric reports whether s is an integer, which date fields treat as epoch
// milliseconds.
func (s flexString) isNumeric() bool {
	_, err := strconv.ParseInt(s.String(), 10, 64)
	return err == nil
}

// rawArticle mirrors the loosely typed article objects served by the API.
type rawArticle struct {
	ID           flexString `json:"id"`
	MongoID      flexString `json:"_id"`
	Title        flexString `json:"title"`
	Content      flexString `json:"content"`
	Description  flexString `json:"description"`
	URL          flexString `json:"url"`
	Link         flexString `json:"link"`
	MediaURL     flexString `json:"mediaUrl"`
	VideoURL     flexString `json:"videoUrl"`
	Image        flexString `json:"image"`
	Thumbnail    flexString `json:"thumbnail"`
	ThumbnailURL flexString `json:"thumbnailUrl"`
	MediaType    flexString `json:"mediaType"`
	Category     flexString `json:"category"`
	DateTime     flexString `json:"dateTime"`
	PublishedAt  flexString `json:"publishedAt"`
	CreatedAt    flexString `json:"createdAt"`
	UpdatedAt    flexString `json:"updatedAt"`
	Time         flexString `json:"time"`
}
