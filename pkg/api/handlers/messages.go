package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chatportal/pkg/utils"
)

type reactionRequest struct {
	Reaction string `json:"reaction"`
}

// reactToMessage handles POST /messages/{id}/react: toggles the symbol
// and returns the updated reaction set.
func (h *Handlers) reactToMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Reaction == "" {
		utils.JSONError(w, http.StatusBadRequest, "reaction is required")
		return
	}
	reactions, err := h.engine.React(id, req.Reaction)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if reactions == nil {
		reactions = []string{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Success   bool     `json:"success"`
		Reactions []string `json:"reactions"`
	}{true, reactions})
}

// bookmarkMessage handles POST /messages/{id}/bookmark: toggles the flag
// and returns its new value.
func (h *Handlers) bookmarkMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	bookmarked, err := h.engine.Bookmark(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Success    bool `json:"success"`
		Bookmarked bool `json:"bookmarked"`
	}{true, bookmarked})
}
