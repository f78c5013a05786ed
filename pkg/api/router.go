// Package api wires the HTTP surface onto the lifecycle engine.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"chatportal/pkg/api/handlers"
	"chatportal/pkg/engine"
	"chatportal/pkg/store"
	"chatportal/pkg/telemetry"
)

// Handler builds the full router: the /api surface plus health probes.
// Request metrics attach here rather than around the server so they see
// the matched route template instead of raw paths.
func Handler(e *engine.Engine, s *store.Store) http.Handler {
	r := mux.NewRouter()
	r.Use(telemetry.Middleware)

	h := handlers.New(e, s)
	h.Register(r.PathPrefix("/api").Subrouter())

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !s.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"not ready"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	return r
}
