package utils

import "github.com/google/uuid"

// GenID returns a new opaque identifier for conversations and messages.
func GenID() string {
	return uuid.NewString()
}

// GenToken returns a new unguessable share token.
func GenToken() string {
	return uuid.NewString()
}
