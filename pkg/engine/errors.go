package engine

import "errors"

var (
	// ErrNotFound means the referenced conversation, message or share
	// token does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the operation targets a conversation in the
	// wrong lifecycle state, such as appending to an ended conversation.
	ErrInvalidState = errors.New("invalid conversation state")
)
