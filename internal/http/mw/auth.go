package mw

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// TokenAuth returns a Chi middleware that requires the configured API token
// on every request whose path is not listed in public. The token is read
// from the Authorization: Bearer header first, then from X-API-Key.
// An empty token disables authentication.
//
// The Huma security annotations in routes/ remain for OpenAPI documentation only.
func TokenAuth(logger *slog.Logger, token string, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := open[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key := requestToken(r)
			if key == "" {
				logger.Warn("API token missing",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Unauthorized: API token required", http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(token)) != 1 {
				logger.Warn("Invalid API token used",
					"key_prefix", keyPrefix(key),
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Unauthorized: invalid API token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	const bearerPrefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return h[len(bearerPrefix):]
	}
	return r.Header.Get("X-API-Key")
}

// keyPrefix returns the first 4 characters of a key for safe logging.
func keyPrefix(key string) string {
	if len(key) >= 4 {
		return key[:4]
	}
	return key
}
