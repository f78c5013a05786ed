package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"chatportal/pkg/utils"
)

type queryRequest struct {
	Query string `json:"query"`
}

// queryConversations handles POST /conversations/query: a free-form
// question answered from the summaries of ended conversations.
func (h *Handlers) queryConversations(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		utils.JSONError(w, http.StatusBadRequest, "query is required")
		return
	}
	res, err := h.engine.Query(r.Context(), req.Query)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, res)
}
