package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// Middleware returns HTTP middleware that enforces API key authentication.
//
// Behaviour:
//   - If mode != "apikey" or key == "", all requests are allowed.
//   - Otherwise the value of header is compared to key in constant time.
//   - A missing or incorrect key gets a 401 JSON error body.
func Middleware(mode, header, key string) func(http.Handler) http.Handler {
	enabled := mode == "apikey" && key != ""

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(header)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"}) //nolint:errcheck
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
