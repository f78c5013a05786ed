// Package auth carries the request-protection middleware: CORS handling
// and per-client rate limiting. There is no identity layer; shared
// conversations are deliberately reachable without credentials.
package auth

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"chatportal/pkg/logger"
	"chatportal/pkg/utils"
)

// SecConfig configures the protection middleware.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
}

// ProtectMiddleware applies CORS headers, answers preflights and rate
// limits by client IP. With no configured origins it allows any origin,
// matching the service's historical default.
func ProtectMiddleware(cfg SecConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogRequest(r)

			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// health probes bypass rate limiting
			if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !limiters.Allow(ip) {
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				logger.Log.Warn("request_rate_limited", zap.String("ip", ip), zap.String("path", r.URL.Path))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
