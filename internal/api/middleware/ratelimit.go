package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"txledger/internal/api/handler"
	"txledger/internal/api/types"
)

// RateLimit allows at most requests per window for each client IP.
// The key is r.RemoteAddr, so proxy headers only count when RealIP ran
// before it. Rejected requests get a JSON 429.
func RateLimit(requests int, window time.Duration, rp *handler.Responder) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			rp.RespondWithJSON(w, http.StatusTooManyRequests, types.ErrorResponse{Error: "rate limit exceeded"})
		}),
	)
}
