package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/service/database/migrations"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

func prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	logger = util.LoggerOrNop(logger)

	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, err := Version(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("Database migrations applied", zap.Int64("version", version))
	return nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	logger = util.LoggerOrNop(logger)

	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}

	version, err := Version(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("Database migration rolled back", zap.Int64("version", version))
	return nil
}

// Version returns the schema version recorded by goose.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := prepareGoose(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("reading migration version: %w", err)
	}
	return version, nil
}

// Migrate runs the embedded migrations against this connection.
func (ps *PostgresService) Migrate(ctx context.Context) error {
	return Migrate(ctx, ps.db, ps.logger)
}
