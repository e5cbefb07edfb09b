package backend

import "errors"

var (
	// ErrNotFound means the referenced media does not exist in its store.
	ErrNotFound = errors.New("media not found")
	// ErrUnsupportedMedia means the media could not be decoded.
	ErrUnsupportedMedia = errors.New("unsupported media")
	// ErrUnavailable means the backend never became ready within its grace
	// period.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrNotReady means the backend has not finished initializing. An arm
	// returning ErrNotReady may still be honored after a Ready event.
	ErrNotReady = errors.New("backend not ready")
	// ErrClosed means the backend has been shut down.
	ErrClosed = errors.New("backend closed")
)
