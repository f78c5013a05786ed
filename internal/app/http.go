package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatportal/pkg/api"
	"chatportal/pkg/auth"
)

// startHTTP builds the handler chain, starts the HTTP server in a
// goroutine and returns a channel that will carry any server error.
func (a *App) startHTTP() <-chan error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.Handler(a.engine, a.store))

	secCfg := auth.SecConfig{
		AllowedOrigins: append([]string{}, a.eff.Config.Security.CORS.AllowedOrigins...),
		RPS:            a.eff.Config.Security.RateLimit.RPS,
		Burst:          a.eff.Config.Security.RateLimit.Burst,
	}
	wrapped := auth.ProtectMiddleware(secCfg)(mux)

	a.srv = &http.Server{Addr: a.eff.Addr, Handler: wrapped}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.ListenAndServe()
	}()
	return errCh
}
