package domain

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the trivia service answers with a
	// non-success HTTP status.
	ErrUpstreamUnavailable = errors.New("trivia service unavailable")
	// ErrMalformedResponse is returned when an upstream response cannot be
	// decoded or lacks a required field.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrTokenExhausted indicates the token has been served every question
	// matching the current filters. A token refresh may free the pool.
	ErrTokenExhausted = errors.New("session token exhausted")
	// ErrPoolExhausted indicates exhaustion persisted across a token refresh.
	// Only changing the filter options can recover.
	ErrPoolExhausted = errors.New("question pool exhausted for the selected filters")
	// ErrInsufficientQuestions indicates the upstream has fewer questions than
	// requested for the selected filters.
	ErrInsufficientQuestions = errors.New("not enough questions for the selected filters")
	// ErrInvalidOptions is returned when quiz options fail validation.
	ErrInvalidOptions = errors.New("invalid quiz options")
	// ErrNoSession is returned when a resume is requested without a stored session.
	ErrNoSession = errors.New("no stored quiz session")
	// ErrBusy is returned when an initialization is already in flight.
	ErrBusy = errors.New("quiz initialization already in progress")
)
