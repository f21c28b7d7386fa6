package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/config"
	"github.com/kapu/poketeam-kakao-bot/internal/service/database"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

// CLI flags
var (
	down    = flag.Bool("down", false, "Roll back the most recent migration")
	status  = flag.Bool("status", false, "Print the current schema version and exit")
	timeout = flag.Duration("timeout", time.Minute, "Overall timeout")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	postgres, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return err
	}
	defer postgres.Close()

	switch {
	case *status:
		version, err := database.Version(ctx, postgres.GetDB())
		if err != nil {
			return err
		}
		fmt.Printf("schema version: %d\n", version)
		return nil
	case *down:
		return database.Rollback(ctx, postgres.GetDB(), logger)
	default:
		return postgres.Migrate(ctx)
	}
}
