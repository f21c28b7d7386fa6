package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/adapter"
	"github.com/kapu/poketeam-kakao-bot/internal/bot"
	"github.com/kapu/poketeam-kakao-bot/internal/config"
	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/iris"
	"github.com/kapu/poketeam-kakao-bot/internal/service/cache"
	"github.com/kapu/poketeam-kakao-bot/internal/service/catalog"
	"github.com/kapu/poketeam-kakao-bot/internal/service/database"
	"github.com/kapu/poketeam-kakao-bot/internal/service/favorite"
	"github.com/kapu/poketeam-kakao-bot/internal/service/recent"
	"github.com/kapu/poketeam-kakao-bot/internal/service/team"
)

// Container bundles assembled services for constructing runtime components like Bot.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	botDeps *bot.Dependencies
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Build assembles all infrastructure services and returns a container capable of
// creating fully-wired bots. Connections to Redis and PostgreSQL are opened
// here, and pending migrations are applied when enabled.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []io.Closer
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i].Close()
			}
		}
	}()

	// Messaging primitives
	irisClient := iris.NewClient(cfg.Iris.BaseURL, logger, iris.WithTimeout(cfg.Iris.Timeout))
	irisWS := iris.NewWebSocket(cfg.Iris.WSURL,
		constants.WebSocketConfig.MaxReconnectAttempts,
		constants.WebSocketConfig.ReconnectDelay,
		logger)
	irisWS.OnStateChange(func(state iris.WebSocketState) {
		logger.Info("Iris WebSocket state changed", zap.String("state", state.String()))
	})
	if bridge, err := irisClient.GetConfig(ctx); err != nil {
		logger.Warn("Iris bridge not reachable yet, continuing",
			zap.String("base_url", cfg.Iris.BaseURL),
			zap.Error(err),
		)
	} else {
		logger.Info("Iris bridge reachable",
			zap.Int("port", bridge.Port),
			zap.Int("message_rate", bridge.MessageRate),
		)
	}
	messageAdapter := adapter.NewMessageAdapter(cfg.Bot.Prefix)
	formatter := adapter.NewResponseFormatter(cfg.Bot.Prefix)

	// Cache and database
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, cacheSvc)

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, postgresSvc)

	if cfg.Postgres.RunMigrations {
		if err := postgresSvc.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Catalog
	httpClient := &http.Client{Timeout: cfg.PokeAPI.Timeout}
	var scraper catalog.Scraper
	if cfg.PokeAPI.EnableScraperFallback {
		scraper = catalog.NewDexScraper(nil, cfg.PokeAPI.ScraperBaseURL, logger)
		logger.Info("Scraper fallback enabled", zap.String("base_url", cfg.PokeAPI.ScraperBaseURL))
	}
	catalogSvc := catalog.NewService(
		catalog.NewClient(httpClient, cfg.PokeAPI.BaseURL, logger),
		cacheSvc,
		scraper,
		logger,
	)

	// Per-user state
	teamSvc := team.NewService(team.NewRepository(postgresSvc, logger), catalogSvc, logger)
	favoriteSvc := favorite.NewService(cacheSvc, catalogSvc, logger)
	recentSvc := recent.NewService(cacheSvc, logger)

	deps := &bot.Dependencies{
		Config:         cfg,
		Logger:         logger,
		IrisClient:     irisClient,
		IrisWebSocket:  irisWS,
		MessageAdapter: messageAdapter,
		Formatter:      formatter,
		Catalog:        catalogSvc,
		Team:           teamSvc,
		Favorites:      favoriteSvc,
		Recent:         recentSvc,
		Closers:        closers,
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		botDeps: deps,
	}, nil
}
