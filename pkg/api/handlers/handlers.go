package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"chatportal/pkg/engine"
	"chatportal/pkg/store"
	"chatportal/pkg/utils"
)

// Handlers serves the /api surface over the injected engine and store.
type Handlers struct {
	engine *engine.Engine
	store  *store.Store
}

// New builds the handler set.
func New(e *engine.Engine, s *store.Store) *Handlers {
	return &Handlers{engine: e, store: s}
}

// Register attaches all routes to the provided (sub)router.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/conversations", h.listConversations).Methods(http.MethodGet)
	r.HandleFunc("/conversations", h.createConversation).Methods(http.MethodPost)
	r.HandleFunc("/conversations/query", h.queryConversations).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}", h.getConversation).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/messages", h.sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/end", h.endConversation).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/share", h.shareConversation).Methods(http.MethodPost)
	r.HandleFunc("/conversations/{id}/export", h.exportConversation).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}/react", h.reactToMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}/bookmark", h.bookmarkMessage).Methods(http.MethodPost)
	r.HandleFunc("/shared/{token}", h.getSharedConversation).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
}

// writeEngineError maps engine errors onto HTTP statuses: NotFound -> 404,
// InvalidState -> 400, anything else -> 500.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, engine.ErrInvalidState):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}
