package engine

import (
	"context"
	"strings"

	"chatportal/pkg/models"
	"chatportal/pkg/telemetry"
)

const suggestInstruction = "Generate 3 brief follow-up questions (max 8 words each) based on the conversation. Return only the questions, one per line."

// defaultSuggestions are returned for a conversation with no history yet;
// no gateway call is made.
var defaultSuggestions = []string{
	"Tell me about yourself",
	"What can you help me with?",
	"Explain a complex topic simply",
}

const maxSuggestions = 3

// Suggest derives up to three short follow-up prompts from the last turns
// of history. Suggestions are a soft enhancement: a degraded completion
// yields an empty list, never an error.
func (e *Engine) Suggest(ctx context.Context, history []models.Message) []string {
	if len(history) == 0 {
		return append([]string(nil), defaultSuggestions...)
	}

	recent := history
	if len(recent) > maxSuggestions {
		recent = recent[len(recent)-maxSuggestions:]
	}
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, m.Role+": "+m.Content)
	}
	prompt := "Recent conversation:\n" + strings.Join(lines, "\n") + "\n\nGenerate 3 relevant follow-up questions:"

	// one-shot session; suggestions carry no conversational memory
	res := e.gateway.Complete(ctx, "", suggestInstruction, prompt)
	telemetry.GatewayCalls.WithLabelValues("suggest", outcome(res)).Inc()
	if res.Degraded {
		return []string{}
	}
	return parseSuggestions(res.Text)
}

// parseSuggestions splits the completion into lines, dropping blanks and
// comment lines, keeping at most three.
func parseSuggestions(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
