package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// ModeAPIKey is the only mode that enforces a key.
const ModeAPIKey = "apikey"

// QueryParam is the query parameter checked when the header is absent.
const QueryParam = "api_key"

// APIKey returns middleware that enforces API key authentication.
//
// Behaviour:
//   - If mode != "apikey" or key == "", every request is allowed.
//   - Requests whose path is in open are allowed.
//   - Otherwise the value of header (or the api_key query parameter) must
//     equal key; anything else gets 401.
func APIKey(mode, header, key string, open ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// Non-apikey modes or unconfigured key → allow everything.
		if mode != ModeAPIKey || key == "" {
			return next
		}

		openPaths := make(map[string]struct{}, len(open))
		for _, p := range open {
			openPaths[p] = struct{}{}
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := openPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(header)
			if got == "" {
				got = r.URL.Query().Get(QueryParam)
			}
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				slog.Debug("auth: rejected request", "path", r.URL.Path, "remote", r.RemoteAddr)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid api key"}` + "\n")) //nolint:errcheck
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
