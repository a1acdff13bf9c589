package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"txledger/internal/api/handler"
)

// Recoverer turns a panic into a logged JSON 500 response.
func Recoverer(rp *handler.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				rp.Logger().Error("Recovered from panic",
					"panic", fmt.Sprint(rvr),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", middleware.GetReqID(r.Context()),
					"stack", string(debug.Stack()),
				)
				rp.RespondWithError(w, r, fmt.Errorf("panic: %v", rvr))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
