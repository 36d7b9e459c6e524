package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/bulletin/internal/auth"
	"github.com/pders01/bulletin/internal/feed"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeErr turns an error into the sentence shown in the status bar.
func describeErr(err error) string {
	if err == nil {
		return ""
	}
	if msg := feed.ServerMessage(err); msg != "" {
		return msg
	}
	switch {
	case errors.Is(err, feed.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		return "session expired, sign in again"
	case errors.Is(err, feed.ErrNotFound):
		return "not found"
	case errors.Is(err, feed.ErrMalformedPayload):
		return "the news service sent something unexpected"
	case errors.Is(err, feed.ErrFetchFailure):
		return "could not reach the news service"
	}
	return err.Error()
}
