package newsfeed

import (
	"strings"

	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/media"
	"github.com/pders01/bulletin/internal/search"
	"github.com/pders01/bulletin/internal/storage"
)

// TopicGroup is the set of articles matching one configured topic.
type TopicGroup struct {
	Name     string
	Query    string
	Articles []*storage.Article
}

// GroupByTopic matches every topic query against list with the search
// substring rule. Topics without matches are left out; configured order is
// kept.
func GroupByTopic(list []*storage.Article, topics []config.TopicConfig) []TopicGroup {
	var groups []TopicGroup
	for _, topic := range topics {
		query := strings.TrimSpace(topic.Query)
		if query == "" {
			continue
		}
		matched := search.Filter(list, query)
		if len(matched) == 0 {
			continue
		}
		name := topic.Name
		if name == "" {
			name = query
		}
		groups = append(groups, TopicGroup{Name: name, Query: query, Articles: matched})
	}
	return groups
}

// Videos returns the articles whose primary media is a video, in list order.
func Videos(list []*storage.Article) []*storage.Article {
	videos := make([]*storage.Article, 0)
	for _, article := range list {
		if article == nil {
			continue
		}
		if article.IsVideo() || media.IsVideoURL(article.MediaURL) {
			videos = append(videos, article)
		}
	}
	return videos
}
