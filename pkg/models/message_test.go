package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToggleReactionIsItsOwnInverse(t *testing.T) {
	m := Message{}

	require.Equal(t, []string{"👍"}, m.ToggleReaction("👍"))
	require.Equal(t, []string{"👍", "🎉"}, m.ToggleReaction("🎉"))
	require.Equal(t, []string{"🎉"}, m.ToggleReaction("👍"))
	require.Empty(t, m.ToggleReaction("🎉"))
}

func TestMessageJSONAlwaysCarriesBookmarked(t *testing.T) {
	m := Message{
		ID:             "m1",
		ConversationID: "c1",
		Role:           RoleUser,
		Content:        "hi",
		Timestamp:      time.Now().UTC(),
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	// an unbookmarked message still serializes the field explicitly
	require.Contains(t, raw, "bookmarked")
	require.Equal(t, "false", string(raw["bookmarked"]))
}
