package bot

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/adapter"
	"github.com/kapu/poketeam-kakao-bot/internal/command"
	"github.com/kapu/poketeam-kakao-bot/internal/config"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/iris"
)

const sendTimeout = 10 * time.Second

// MessageSource pushes chat events to registered callbacks.
type MessageSource interface {
	Connect(ctx context.Context) error
	OnMessage(callback iris.MessageCallback) func()
	Disconnect() error
}

// Dependencies is the fully assembled service graph a Bot runs on.
type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	IrisClient     iris.Sender
	IrisWebSocket  MessageSource
	MessageAdapter *adapter.MessageAdapter
	Formatter      *adapter.ResponseFormatter

	Catalog   command.Catalog
	Team      command.TeamService
	Favorites command.FavoriteService
	Recent    command.RecentService

	// Closed in order during Shutdown.
	Closers []io.Closer
}

// Bot routes chat messages from Iris to command handlers.
type Bot struct {
	deps         *Dependencies
	logger       *zap.Logger
	registry     *command.Registry
	dispatcher   command.Dispatcher
	allowedRooms map[string]struct{}

	mu          sync.Mutex
	runCtx      context.Context
	unsubscribe func()
	inflight    sync.WaitGroup
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if err := validate(deps); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Bot{
		deps:         deps,
		logger:       logger,
		registry:     command.NewRegistry(),
		allowedRooms: make(map[string]struct{}),
		runCtx:       context.Background(),
	}
	if deps.Config != nil {
		for _, room := range deps.Config.Kakao.Rooms {
			b.allowedRooms[room] = struct{}{}
		}
	}

	cmdDeps := &command.Dependencies{
		Team:        deps.Team,
		Favorites:   deps.Favorites,
		Recent:      deps.Recent,
		Catalog:     deps.Catalog,
		Formatter:   deps.Formatter,
		SendMessage: b.sendMessage,
		SendError: func(room, message string) error {
			return b.sendMessage(room, deps.Formatter.FormatError(message))
		},
		Logger: logger,
	}

	b.registry.Register(command.NewTeamCommand(cmdDeps), "party")
	b.registry.Register(command.NewFavoriteCommand(cmdDeps))
	b.registry.Register(command.NewDexCommand(cmdDeps), "pokedex")
	b.registry.Register(command.NewCompareCommand(cmdDeps))
	b.registry.Register(command.NewRecentCommand(cmdDeps))
	b.registry.Register(command.NewHelpCommand(cmdDeps))
	b.dispatcher = command.NewSequentialDispatcher(b.registry, command.NormalizeCommand)

	logger.Info("Commands registered",
		zap.Int("count", b.registry.Count()),
		zap.Strings("names", b.registry.Names()),
	)
	return b, nil
}

func validate(deps *Dependencies) error {
	if deps == nil {
		return fmt.Errorf("bot dependencies must not be nil")
	}
	switch {
	case deps.IrisClient == nil:
		return fmt.Errorf("iris client not configured")
	case deps.IrisWebSocket == nil:
		return fmt.Errorf("iris websocket not configured")
	case deps.MessageAdapter == nil || deps.Formatter == nil:
		return fmt.Errorf("message adapter and formatter are required")
	case deps.Catalog == nil || deps.Team == nil:
		return fmt.Errorf("catalog and team services are required")
	}
	return nil
}

// Start subscribes to chat events, connects to Iris and blocks until ctx ends.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	b.runCtx = ctx
	b.unsubscribe = b.deps.IrisWebSocket.OnMessage(b.onMessage)
	b.mu.Unlock()

	if err := b.deps.IrisWebSocket.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to iris: %w", err)
	}

	b.logger.Info("Bot is running", zap.Int("allowed_rooms", len(b.allowedRooms)))
	<-ctx.Done()
	return nil
}

func (b *Bot) onMessage(msg *iris.Message) {
	if msg == nil || !b.isAllowedRoom(msg) {
		return
	}

	parsed := b.deps.MessageAdapter.ParseMessage(msg)
	if parsed.Type == domain.CommandUnknown {
		return
	}

	b.mu.Lock()
	ctx := b.runCtx
	b.inflight.Add(1)
	b.mu.Unlock()

	// The WebSocket listener must keep reading while commands run.
	go func() {
		defer b.inflight.Done()
		b.handle(ctx, msg, parsed)
	}()
}

func (b *Bot) handle(ctx context.Context, msg *iris.Message, parsed *adapter.ParsedCommand) {
	sender := msg.SenderName()
	cmdCtx := domain.NewCommandContext(msg.ChatID(), msg.Room, sender, msg.UserID(), parsed.RawMessage, msg.Room != sender)

	b.logger.Info("Command received",
		zap.String("room", msg.Room),
		zap.String("sender", sender),
		zap.String("command", parsed.Type.String()),
	)

	_, err := b.dispatcher.Publish(ctx, cmdCtx, command.CommandEvent{Type: parsed.Type, Params: parsed.Params})
	if err == nil {
		return
	}

	b.logger.Error("Command execution failed",
		zap.String("command", parsed.Type.String()),
		zap.Error(err),
	)
	if stdErrors.Is(err, command.ErrUnknownCommand) || ctx.Err() != nil {
		return
	}
	_ = b.sendMessage(cmdCtx.Room, b.deps.Formatter.FormatError("명령을 처리하는 중 오류가 발생했습니다."))
}

func (b *Bot) isAllowedRoom(msg *iris.Message) bool {
	if len(b.allowedRooms) == 0 {
		return true
	}
	if _, ok := b.allowedRooms[msg.Room]; ok {
		return true
	}
	_, ok := b.allowedRooms[msg.ChatID()]
	return ok
}

func (b *Bot) sendMessage(room, message string) error {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := b.deps.IrisClient.SendMessage(ctx, room, message); err != nil {
		b.logger.Error("Failed to send message", zap.String("room", room), zap.Error(err))
		return err
	}
	return nil
}

// Shutdown stops receiving messages, waits for running commands and closes
// the backing stores.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	var errs []error
	if err := b.deps.IrisWebSocket.Disconnect(); err != nil {
		errs = append(errs, err)
	}

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("Timed out waiting for running commands")
	}

	for _, closer := range b.deps.Closers {
		if closer == nil {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return stdErrors.Join(errs...)
}
