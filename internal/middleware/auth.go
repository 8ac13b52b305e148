// Package middleware provides HTTP middleware for FactVault.
// This includes API key authorization and security headers.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/factvault/factvault/internal/apikey"
	"github.com/factvault/factvault/internal/model"
)

// KeyHeader is the request header carrying the API key secret.
const KeyHeader = "X-API-Key"

// RequireKey returns middleware that authorizes requests against the key
// manager. Authorization is the single rate-limit enforcement point: each
// request that passes consumes one unit of the key's hourly quota before
// any storage operation runs.
func RequireKey(keys *apikey.Manager, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get(KeyHeader)
			if secret == "" {
				writeAuthError(w, "missing "+KeyHeader+" header", http.StatusUnauthorized)
				return
			}

			if _, err := keys.Authorize(secret, permission); err != nil {
				switch {
				case model.IsRateLimited(err):
					writeAuthError(w, err.Error(), http.StatusTooManyRequests)
				case model.IsForbidden(err):
					writeAuthError(w, err.Error(), http.StatusForbidden)
				default:
					writeAuthError(w, "invalid API key", http.StatusUnauthorized)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError writes a JSON error without depending on the handler
// package.
func writeAuthError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
