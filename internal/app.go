// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "txledger/internal/api"
	"txledger/internal/api/handler"
	"txledger/internal/config"
	"txledger/internal/repository"
	"txledger/internal/repository/postgres"
	"txledger/internal/security"
	"txledger/internal/service"
	"txledger/internal/util"
	"txledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	TransactionRepository repository.TransactionRepository

	// Security
	PasswordHasher *security.PasswordHasher
	TokenManager   *security.TokenManager

	// Services
	AuthService        service.AuthService
	TransactionService service.TransactionService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
// The logger is usable before Initialize runs.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "debug", cfg.Debug, "log_level", cfg.LogLevel)

	// 3. Connect to Database
	database, err := db.NewPostgresDB(ctx, app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.", "host", cfg.DB.Host, "database", cfg.DB.DBName)

	if cfg.AutoMigrate {
		applied, err := db.Migrate(ctx, app.DB)
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		app.Logger.Info("Schema migrations applied.", "applied", applied)
	}

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize password hashing and token signing
	app.PasswordHasher = security.NewPasswordHasher(cfg.Auth.BcryptCost)
	app.TokenManager, err = security.NewTokenManager(security.TokenConfig{
		Secret:     []byte(cfg.Auth.JWTSecret),
		Algorithm:  cfg.Auth.JWTAlgorithm,
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.AuthService = service.NewAuthService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.PasswordHasher,
		app.TokenManager,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.TransactionService = service.NewTransactionService(
		app.DB,
		app.DB,
		app.TransactionRepository,
		cfg.Pagination.MaxPageSize,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	responder := handler.NewResponder(app.Logger, cfg.Debug)
	app.HTTPHandler = router.NewRouter(
		cfg,
		responder,
		app.AuthService,
		handler.NewAuthHandler(app.AuthService, responder),
		handler.NewTransactionHandler(app.TransactionService, responder, cfg.Pagination.DefaultPageSize),
	)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
