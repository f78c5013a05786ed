package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"chatportal/pkg/models"
	"chatportal/pkg/utils"
)

type createConversationRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// listConversations handles GET /conversations: all conversations,
// newest first by start time.
func (h *Handlers) listConversations(w http.ResponseWriter, r *http.Request) {
	out, err := h.engine.List()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if out == nil {
		out = []models.Conversation{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

// createConversation handles POST /conversations.
func (h *Handlers) createConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	c, err := h.engine.Create(req.Title)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

// getConversation handles GET /conversations/{id}: conversation, ordered
// messages and live suggestions when active.
func (h *Handlers) getConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	v, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if v.Messages == nil {
		v.Messages = []models.Message{}
	}
	if v.Suggestions == nil {
		v.Suggestions = []string{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Conversation models.Conversation `json:"conversation"`
		Messages     []models.Message    `json:"messages"`
		Suggestions  []string            `json:"suggestions"`
	}{v.Conversation, v.Messages, v.Suggestions})
}

// sendMessage handles POST /conversations/{id}/messages: persists the
// user's turn and returns the generated assistant message.
func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		utils.JSONError(w, http.StatusBadRequest, "content is required")
		return
	}
	m, err := h.engine.AppendUserMessage(r.Context(), id, req.Content)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, m)
}

// endConversation handles POST /conversations/{id}/end.
func (h *Handlers) endConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := h.engine.End(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}
