// Package middleware holds the HTTP middleware specific to this API.
package middleware

import (
	"net/http"
	"strings"

	"txledger/internal/api/handler"
	"txledger/internal/service"
	"txledger/internal/util"
)

// Authenticator resolves the bearer token in the Authorization header to
// a user and stores it in the request context. Requests without a valid
// token are rejected with 401.
func Authenticator(auth service.AuthService, rp *handler.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				rp.RespondWithError(w, r, util.ErrUnauthorized)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				rp.RespondWithError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(handler.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
