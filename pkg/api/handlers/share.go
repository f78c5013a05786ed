package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"chatportal/pkg/models"
	"chatportal/pkg/utils"
)

// shareConversation handles POST /conversations/{id}/share. Each call
// mints a fresh token; a previously issued token stops resolving.
func (h *Handlers) shareConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	token, err := h.engine.Share(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		ShareToken string `json:"share_token"`
		ShareURL   string `json:"share_url"`
	}{token, "/shared/" + token})
}

// getSharedConversation handles GET /shared/{token}: public read-only
// access to a conversation and its ordered messages.
func (h *Handlers) getSharedConversation(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	v, err := h.engine.GetByShareToken(token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if v.Messages == nil {
		v.Messages = []models.Message{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Conversation models.Conversation `json:"conversation"`
		Messages     []models.Message    `json:"messages"`
	}{v.Conversation, v.Messages})
}
