package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrActivityNotFound is returned when an activity ID is unknown to the activity store.
var ErrActivityNotFound = errors.New("activity not found")

// ErrTaskNotFound is returned when a task ID is unknown to the activity store.
var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidMode is returned when a mode other than quick or smart is supplied.
var ErrInvalidMode = errors.New("invalid mode")

// ErrModeChanged is returned when a turn tries to change the mode of an existing conversation.
var ErrModeChanged = errors.New("mode cannot change during a conversation")

// ErrMalformedState is returned when the conversation passed in violates its own invariants.
var ErrMalformedState = errors.New("malformed conversation state")

// ErrUnknownDomain is returned when a domain name is not present in the catalog.
var ErrUnknownDomain = errors.New("unknown planning domain")

// ErrStorage wraps failures of the activity store during confirmation.
var ErrStorage = errors.New("activity storage failed")

// ErrUnrecoverable marks extraction failures that must move the conversation to the error phase.
var ErrUnrecoverable = errors.New("unrecoverable extraction failure")
