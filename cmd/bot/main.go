package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/app"
	"github.com/kapu/poketeam-kakao-bot/internal/config"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

const version = "1.0.0"

// CLI flags
var (
	showVersion     = flag.Bool("version", false, "Print the version and exit")
	buildTimeout    = flag.Duration("build-timeout", 30*time.Second, "Time allowed to connect Redis, Postgres and the Iris bridge")
	shutdownTimeout = flag.Duration("shutdown-timeout", 10*time.Second, "Time allowed for in-flight commands to finish")
)

// runner is the part of *bot.Bot that the process lifecycle drives.
type runner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Bot exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Pokemon team bot starting",
		zap.String("version", version),
		zap.String("prefix", cfg.Bot.Prefix),
		zap.Strings("rooms", cfg.Kakao.Rooms),
		zap.String("log_level", cfg.Logging.Level),
	)

	buildCtx, cancelBuild := context.WithTimeout(ctx, *buildTimeout)
	container, err := app.Build(buildCtx, cfg, logger)
	cancelBuild()
	if err != nil {
		return fmt.Errorf("assemble services: %w", err)
	}

	kakaoBot, err := container.NewBot()
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	return serve(ctx, kakaoBot, *shutdownTimeout, logger)
}

// serve runs r until ctx is cancelled or Start fails, then shuts it down
// within grace. A Start failure is returned after shutdown.
func serve(ctx context.Context, r runner, grace time.Duration, logger *zap.Logger) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startErr := make(chan error, 1)
	go func() {
		startErr <- r.Start(runCtx)
	}()

	logger.Info("Bot started, waiting for signals")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested", zap.Error(context.Cause(ctx)))
	case err := <-startErr:
		if err != nil {
			runErr = fmt.Errorf("bot stopped: %w", err)
			logger.Error("Bot stopped unexpectedly", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), grace)
	defer cancelShutdown()
	if err := r.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown did not complete cleanly", zap.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	logger.Info("Shutdown complete")
	return runErr
}
