package tui

import (
	"fmt"
	"strings"
	"time"
)

// truncateEnd shortens s to at most limit runes, appending an ellipsis
// if truncation occurs.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which is what matters for URLs.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	return string(r[:left]) + "…" + string(r[n-right:])
}

// oneLine collapses whitespace so descriptions fit a list row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatWhen renders an article timestamp relative to now. Articles without
// a parseable date have unknown recency.
func formatWhen(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return "unknown date"
	}
	d := now.Sub(*t)
	switch {
	case d < 0:
		return t.Format("Jan 2, 15:04")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return pluralize(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return pluralize(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return pluralize(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
