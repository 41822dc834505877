package auth

import (
	"net"
	"net/http"

	"nebula/pkg/logger"
)

// SecConfig carries the request-security settings applied in front of the
// HTTP surface: CORS origins and per-client rate limits.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
}

// Middleware applies CORS headers and a per-client rate limit keyed by the
// remote IP. The service is single-user: the limit mainly protects the
// gateway relay from runaway clients.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	pool := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				if allowed := matchOrigin(cfg.AllowedOrigins, origin); allowed != "" {
					w.Header().Set("Access-Control-Allow-Origin", allowed)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if !pool.Allow(clientKey(r)) {
				logger.Warn("rate_limited", "remote", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func matchOrigin(allowed []string, origin string) string {
	if len(allowed) == 0 {
		return "*"
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return origin
		}
	}
	return ""
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
