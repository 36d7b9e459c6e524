package tui

type View int

const (
	ViewHome View = iota
	ViewReader
	ViewSearch
	ViewBookmarks
	ViewTopics
	ViewTopic
	ViewVideos
	ViewMarket
	ViewLogin
	ViewMedia
)

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewReader:
		return "reader"
	case ViewSearch:
		return "search"
	case ViewBookmarks:
		return "bookmarks"
	case ViewTopics:
		return "topics"
	case ViewTopic:
		return "topic"
	case ViewVideos:
		return "videos"
	case ViewMarket:
		return "market"
	case ViewLogin:
		return "login"
	case ViewMedia:
		return "media"
	default:
		return "unknown"
	}
}
