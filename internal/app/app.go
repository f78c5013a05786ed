// Package app encapsulates process wiring: config, store, gateway and
// the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"

	"chatportal/pkg/banner"
	"chatportal/pkg/config"
	"chatportal/pkg/engine"
	"chatportal/pkg/llm"
	"chatportal/pkg/logger"
	"chatportal/pkg/store"
)

// App holds the server components and their lifecycle. Shared resources
// (store, gateway) are opened here at process start and closed at
// shutdown; the engine itself owns nothing.
type App struct {
	eff     *config.Effective
	dbPath  string
	version string

	store  *store.Store
	engine *engine.Engine
	srv    *http.Server
}

// New opens the store and builds the engine over it and the configured
// LLM gateway. Call Run to start the HTTP server and block.
func New(eff *config.Effective, dbPath, version string) (*App, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", dbPath, err)
	}

	gw := llm.NewClient(llm.Options{
		BaseURL:     eff.Config.LLM.BaseURL,
		APIKey:      eff.Config.LLM.APIKey,
		Model:       eff.Config.LLM.Model,
		MaxTokens:   eff.Config.LLM.MaxTokens,
		Temperature: eff.Config.LLM.Temperature,
		Timeout:     eff.Config.LLMTimeout(),
	})

	return &App{
		eff:     eff,
		dbPath:  dbPath,
		version: version,
		store:   s,
		engine:  engine.New(s, gw),
	}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled or a fatal
// server error occurs.
func (a *App) Run(ctx context.Context) error {
	banner.Print(a.eff, a.dbPath, a.version)
	errCh := a.startHTTP()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the HTTP server and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	if a.srv != nil {
		_ = a.srv.Shutdown(ctx)
	}
	err := a.store.Close()
	logger.Sync()
	return err
}
