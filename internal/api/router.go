// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"txledger/internal/api/handler"
	apimw "txledger/internal/api/middleware"
	"txledger/internal/api/types"
	"txledger/internal/config"
	"txledger/internal/service"
	"txledger/internal/util"
)

// healthMessage is reported by GET /health.
const healthMessage = "Transaction ledger API is running"

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	cfg *config.AppConfig,
	rp *handler.Responder,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	transactionHandler *handler.TransactionHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID) // Add a request ID to the context
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP) // Client address from proxy headers
	}
	r.Use(middleware.Logger)                      // Log HTTP requests
	r.Use(apimw.Recoverer(rp))                    // Recover from panics and return a JSON 500
	r.Use(middleware.Timeout(cfg.RequestTimeout)) // Bound every request
	r.Use(apimw.CORS(cfg.AllowedOrigins))
	if cfg.RateLimit.Requests > 0 {
		r.Use(apimw.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, rp))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rp.RespondWithError(w, r, util.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rp.RespondWithJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rp.RespondWithJSON(w, http.StatusOK, types.HealthResponse{Status: "healthy", Message: healthMessage})
	})

	requireUser := apimw.Authenticator(authService, rp)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(requireUser).Get("/me", authHandler.Me)
	})

	// Ledger routes, all scoped to the authenticated user
	r.Route("/transactions", func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/", transactionHandler.Create)
		r.Get("/", transactionHandler.List)
		r.Get("/summary", transactionHandler.Summary)
		r.Get("/{transactionID}", transactionHandler.Get)
		r.Delete("/{transactionID}", transactionHandler.Delete)
	})

	return r
}
