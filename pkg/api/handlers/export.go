package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"chatportal/pkg/export"
	"chatportal/pkg/utils"
)

type exportRequest struct {
	Format string `json:"format"`
}

// exportConversation handles POST /conversations/{id}/export. JSON comes
// back as a JSON body, markdown wrapped in a JSON object, and PDF as a
// downloadable attachment.
func (h *Handlers) exportConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := h.engine.Conversation(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	msgs, err := h.engine.Messages(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	body, contentType, err := export.Render(req.Format, c, msgs)
	if err != nil {
		if errors.Is(err, export.ErrInvalidFormat) {
			utils.JSONError(w, http.StatusBadRequest, "invalid export format")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch req.Format {
	case export.FormatMarkdown:
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"markdown": string(body)})
	case export.FormatPDF:
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+c.Title+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	default:
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
