package ical

import (
	"errors"
	"fmt"
)

// ErrFeedNotFound indicates the subscription URL no longer serves a feed.
var ErrFeedNotFound = errors.New("calendar feed not found")

// ErrRateLimited indicates the feed host asked us to slow down.
var ErrRateLimited = errors.New("calendar feed host rate limit exceeded")

// ErrStoreNotBound indicates the timetable store belongs to another account.
var ErrStoreNotBound = errors.New("timetable store is not bound to the importing account")

// ServerError represents a 5xx answer from the feed host
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("calendar feed server error: HTTP %d", e.StatusCode)
}
