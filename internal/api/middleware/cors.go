package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS allows cross-origin calls from origins. A "*" entry allows any
// origin; credentials are only allowed for an explicit origin list.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := []handlers.CORSOption{
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-Id"}),
		handlers.ExposedHeaders([]string{"X-Request-Id"}),
		handlers.MaxAge(600),
	}
	if !containsWildcard(origins) {
		opts = append(opts, handlers.AllowCredentials())
	}
	return handlers.CORS(opts...)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
