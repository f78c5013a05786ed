// Package engine owns the conversation lifecycle: the active->ended state
// machine, message append with synchronous reply generation, and the
// summary, suggestion and cross-session query flows built on the gateway.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"chatportal/pkg/llm"
	"chatportal/pkg/logger"
	"chatportal/pkg/models"
	"chatportal/pkg/store"
	"chatportal/pkg/telemetry"
	"chatportal/pkg/utils"
)

// personaInstruction identifies the assistant on every reply generation.
const personaInstruction = "You are a helpful, friendly AI assistant. Provide clear and concise responses."

// Engine orchestrates conversations against the injected store and
// gateway. It holds no locks: concurrent mutations of the same
// conversation may interleave at the store level.
type Engine struct {
	store   *store.Store
	gateway llm.Gateway
}

// New builds an engine over its two collaborators.
func New(s *store.Store, g llm.Gateway) *Engine {
	return &Engine{store: s, gateway: g}
}

// View is a conversation with its ordered messages and, for active
// conversations, freshly computed suggestions. Suggestions are never
// persisted.
type View struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []models.Message    `json:"messages"`
	Suggestions  []string            `json:"suggestions,omitempty"`
}

// Create allocates a new active conversation.
func (e *Engine) Create(title string) (models.Conversation, error) {
	c := models.Conversation{
		ID:        utils.GenID(),
		Title:     title,
		Status:    models.StatusActive,
		StartTime: time.Now().UTC(),
	}
	if err := e.store.SaveConversation(c); err != nil {
		return models.Conversation{}, err
	}
	logger.Log.Info("conversation_created", zap.String("conversation", c.ID), zap.String("title", c.Title))
	return c, nil
}

// List returns all conversations, newest first by start time.
func (e *Engine) List() ([]models.Conversation, error) {
	out, err := e.store.ListConversations()
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// Get returns a conversation with its ordered messages. Active
// conversations with at least one message also get live suggestions.
func (e *Engine) Get(ctx context.Context, id string) (View, error) {
	c, err := e.store.GetConversation(id)
	if err != nil {
		return View{}, mapStoreErr(err)
	}
	msgs, err := e.store.ListMessages(id)
	if err != nil {
		return View{}, err
	}
	v := View{Conversation: c, Messages: msgs}
	if c.Status == models.StatusActive && len(msgs) > 0 {
		v.Suggestions = e.Suggest(ctx, msgs)
	}
	return v, nil
}

// AppendUserMessage persists the user's turn, generates the assistant
// reply synchronously and persists it, returning the assistant message.
// A failed generation still persists an error-describing reply; the
// user's turn is never lost.
func (e *Engine) AppendUserMessage(ctx context.Context, conversationID, content string) (models.Message, error) {
	c, err := e.store.GetConversation(conversationID)
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}
	if c.Ended() {
		return models.Message{}, fmt.Errorf("conversation has ended: %w", ErrInvalidState)
	}

	userMsg := models.Message{
		ID:             utils.GenID(),
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}
	if err := e.store.AppendMessage(userMsg); err != nil {
		return models.Message{}, err
	}

	history, err := e.store.ListMessages(conversationID)
	if err != nil {
		return models.Message{}, err
	}
	reply := e.generateReply(ctx, conversationID, history)

	aiMsg := models.Message{
		ID:             utils.GenID(),
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        reply.Text,
		Timestamp:      time.Now().UTC(),
	}
	if err := e.store.AppendMessage(aiMsg); err != nil {
		return models.Message{}, err
	}
	logger.Log.Info("turn_completed",
		zap.String("conversation", conversationID),
		zap.Bool("degraded", reply.Degraded),
	)
	return aiMsg, nil
}

// generateReply asks the gateway for the assistant's next turn. Only the
// latest user message goes out as the prompt; earlier turns live in the
// gateway's session memory keyed by conversation ID.
func (e *Engine) generateReply(ctx context.Context, conversationID string, history []models.Message) llm.Result {
	prompt := ""
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	res := e.gateway.Complete(ctx, conversationID, personaInstruction, prompt)
	telemetry.GatewayCalls.WithLabelValues("reply", outcome(res)).Inc()
	return res
}

// React toggles a reaction symbol on a message and returns the updated set.
func (e *Engine) React(messageID, symbol string) ([]string, error) {
	m, err := e.store.GetMessage(messageID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	reactions := m.ToggleReaction(symbol)
	if err := e.store.UpdateMessage(m); err != nil {
		return nil, err
	}
	return reactions, nil
}

// Bookmark toggles the bookmarked flag and returns the new value.
func (e *Engine) Bookmark(messageID string) (bool, error) {
	m, err := e.store.GetMessage(messageID)
	if err != nil {
		return false, mapStoreErr(err)
	}
	m.Bookmarked = !m.Bookmarked
	if err := e.store.UpdateMessage(m); err != nil {
		return false, err
	}
	return m.Bookmarked, nil
}

// Share assigns a fresh share token. Re-sharing mints a new token and
// invalidates the previous one (last call wins).
func (e *Engine) Share(conversationID string) (string, error) {
	c, err := e.store.GetConversation(conversationID)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if c.ShareToken != "" {
		if err := e.store.DeleteShareToken(c.ShareToken); err != nil {
			return "", err
		}
	}
	token := utils.GenToken()
	c.ShareToken = token
	if err := e.store.SaveConversation(c); err != nil {
		return "", err
	}
	if err := e.store.SaveShareToken(token, c.ID); err != nil {
		return "", err
	}
	logger.Log.Info("conversation_shared", zap.String("conversation", c.ID))
	return token, nil
}

// GetByShareToken resolves a share token to its conversation and ordered
// messages. No suggestions are computed for shared reads.
func (e *Engine) GetByShareToken(token string) (View, error) {
	id, err := e.store.GetConversationIDByShareToken(token)
	if err != nil {
		return View{}, mapStoreErr(err)
	}
	c, err := e.store.GetConversation(id)
	if err != nil {
		return View{}, mapStoreErr(err)
	}
	msgs, err := e.store.ListMessages(id)
	if err != nil {
		return View{}, err
	}
	return View{Conversation: c, Messages: msgs}, nil
}

// Messages returns the ordered transcript of a conversation.
func (e *Engine) Messages(conversationID string) ([]models.Message, error) {
	if _, err := e.store.GetConversation(conversationID); err != nil {
		return nil, mapStoreErr(err)
	}
	return e.store.ListMessages(conversationID)
}

// Conversation returns the bare conversation record.
func (e *Engine) Conversation(id string) (models.Conversation, error) {
	c, err := e.store.GetConversation(id)
	if err != nil {
		return models.Conversation{}, mapStoreErr(err)
	}
	return c, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func outcome(r llm.Result) string {
	if r.Degraded {
		return "degraded"
	}
	return "ok"
}
