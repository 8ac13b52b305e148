// Package middleware provides the security header middleware.
package middleware

import "net/http"

// SecurityHeaders returns middleware that adds security headers to
// responses. The API serves JSON only, so the set is smaller than a web
// frontend would need.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent framing of API responses
			w.Header().Set("X-Frame-Options", "DENY")

			// Control referrer information
			w.Header().Set("Referrer-Policy", "no-referrer")

			// Prevent caching of API responses
			w.Header().Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}
