// Package auth provides API key middleware for the REST API.
//
// Middleware(mode, header, key) wraps an http.Handler and validates the key
// from the named request header. When mode != "apikey" or key == "", all
// requests pass through (useful for local development with auth disabled).
package auth
