package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chatportal/pkg/llm"
	"chatportal/pkg/logger"
	"chatportal/pkg/models"
	"chatportal/pkg/telemetry"
)

const summaryInstruction = "You summarize conversations concisely, highlighting key points and topics discussed."

// End transitions an active conversation to ended, generating and storing
// a transcript summary. Summarization failure does not roll back the
// transition: the degraded text is stored as the summary and the
// conversation still ends. Status, summary and end time are written in a
// single store update.
func (e *Engine) End(ctx context.Context, conversationID string) (models.Conversation, error) {
	c, err := e.store.GetConversation(conversationID)
	if err != nil {
		return models.Conversation{}, mapStoreErr(err)
	}
	if c.Ended() {
		return models.Conversation{}, fmt.Errorf("conversation already ended: %w", ErrInvalidState)
	}

	msgs, err := e.store.ListMessages(conversationID)
	if err != nil {
		return models.Conversation{}, err
	}
	res := e.summarize(ctx, msgs)

	now := time.Now().UTC()
	c.Status = models.StatusEnded
	c.Summary = res.Text
	c.EndTime = &now
	if err := e.store.SaveConversation(c); err != nil {
		return models.Conversation{}, err
	}
	// the ended conversation takes no more turns; release its gateway memory
	e.gateway.Forget(conversationID)
	logger.Log.Info("conversation_ended",
		zap.String("conversation", conversationID),
		zap.Int("messages", len(msgs)),
		zap.Bool("summary_degraded", res.Degraded),
	)
	return c, nil
}

// summarize compresses the full transcript into a short summary via a
// one-shot gateway call. The transcript is formatted as "role: content"
// lines; an empty transcript simply summarizes to whatever the model
// makes of an empty document.
func (e *Engine) summarize(ctx context.Context, msgs []models.Message) llm.Result {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.Role+": "+m.Content)
	}
	prompt := "Summarize this conversation in 2-3 sentences:\n\n" + strings.Join(lines, "\n")
	res := e.gateway.Complete(ctx, "", summaryInstruction, prompt)
	telemetry.GatewayCalls.WithLabelValues("summary", outcome(res)).Inc()
	return res
}
