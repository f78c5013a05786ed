package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chatportal/pkg/logger"
	"chatportal/pkg/models"
	"chatportal/pkg/telemetry"
)

const queryInstruction = "You analyze past conversations and provide insights based on their summaries."

// noHistoryAnswer is returned when there are no ended conversations to
// analyze; no gateway call is made.
const noHistoryAnswer = "No past conversations found to analyze."

const maxQueryRefs = 5

// QueryResult is the answer to a cross-session question plus the
// conversations offered as references. References are the first ended
// conversations in store iteration order, not relevance-ranked.
type QueryResult struct {
	Answer                string                `json:"answer"`
	RelevantConversations []models.Conversation `json:"relevant_conversations"`
	Suggestions           []string              `json:"suggestions"`
}

// Query answers a free-form question about the corpus of ended
// conversations using only their stored summaries.
func (e *Engine) Query(ctx context.Context, question string) (QueryResult, error) {
	all, err := e.store.ListConversations()
	if err != nil {
		return QueryResult{}, err
	}
	var ended []models.Conversation
	for _, c := range all {
		if c.Ended() {
			ended = append(ended, c)
		}
	}
	if len(ended) == 0 {
		return QueryResult{
			Answer:                noHistoryAnswer,
			RelevantConversations: []models.Conversation{},
			Suggestions:           []string{},
		}, nil
	}

	parts := make([]string, 0, len(ended))
	for i, c := range ended {
		summary := c.Summary
		if summary == "" {
			summary = "No summary available"
		}
		parts = append(parts, fmt.Sprintf("Conversation %d (Title: %s):\n%s", i+1, c.Title, summary))
	}
	prompt := "Past conversations:\n\n" + strings.Join(parts, "\n\n") +
		"\n\nUser question: " + question + "\n\nProvide a clear answer:"

	res := e.gateway.Complete(ctx, "", queryInstruction, prompt)
	telemetry.GatewayCalls.WithLabelValues("query", outcome(res)).Inc()
	logger.Log.Info("cross_session_query",
		zap.Int("ended_conversations", len(ended)),
		zap.Bool("degraded", res.Degraded),
	)

	refs := ended
	if res.Degraded {
		refs = nil
	} else if len(refs) > maxQueryRefs {
		refs = refs[:maxQueryRefs]
	}
	if refs == nil {
		refs = []models.Conversation{}
	}
	return QueryResult{
		Answer:                res.Text,
		RelevantConversations: refs,
		Suggestions:           []string{},
	}, nil
}
