package client

import "errors"

var (
	// ErrUnavailable means the server could not be reached in time.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected means the server understood the request and refused it.
	ErrRejected    = errors.New("rejected by server")
	ErrRateLimited = errors.New("too many requests")
	// ErrNoSession is returned when an operation needs a session and the
	// client holds no tokens.
	ErrNoSession = errors.New("no session")
)
