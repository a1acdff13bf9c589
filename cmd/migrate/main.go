// cmd/migrate applies the embedded schema migrations and exits.
package main

import (
	"context"
	"os"
	"time"

	"txledger/internal/config"
	"txledger/internal/util"
	"txledger/pkg/db"
)

func main() {
	logger := util.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	util.InitLogger(cfg.LogLevel)
	logger = util.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	applied, err := db.Migrate(ctx, database)
	if err != nil {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	if len(applied) == 0 {
		logger.Info("Schema is up to date.")
		return
	}
	logger.Info("Migrations applied.", "versions", applied)
}
