package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation. Content is immutable once
// created; only Reactions and Bookmarked are mutated afterwards.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	// Reactions is a set with toggle semantics: each symbol appears at
	// most once, and reacting with a present symbol removes it.
	Reactions []string `json:"reactions,omitempty"`
	// Bookmarked is always present on the wire, false included.
	Bookmarked bool `json:"bookmarked"`
}

// ToggleReaction adds the symbol if absent and removes it if present,
// returning the updated set.
func (m *Message) ToggleReaction(symbol string) []string {
	for i, r := range m.Reactions {
		if r == symbol {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			return m.Reactions
		}
	}
	m.Reactions = append(m.Reactions, symbol)
	return m.Reactions
}
