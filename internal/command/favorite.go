package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
)

type FavoriteCommand struct {
	deps *Dependencies
}

func NewFavoriteCommand(deps *Dependencies) *FavoriteCommand {
	return &FavoriteCommand{deps: deps}
}

func (c *FavoriteCommand) Name() string {
	return "favorite"
}

func (c *FavoriteCommand) Description() string {
	return "즐겨찾기 관리"
}

func (c *FavoriteCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if c == nil {
		return fmt.Errorf("favorite command dependencies not configured")
	}
	if err := c.deps.ensureMessaging(); err != nil {
		return err
	}
	if c.deps.Favorites == nil {
		return c.deps.SendError(cmdCtx.Room, "즐겨찾기 서비스가 초기화되지 않았습니다.")
	}

	owner := ownerKey(cmdCtx)

	switch getStringParam(params, "action") {
	case "toggle", "add", "remove":
		query := getStringParam(params, "query")
		if query == "" {
			return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUsage("즐겨찾기 [포켓몬]", "즐겨찾기 리자몽"))
		}
		creature, added, err := c.deps.Favorites.Toggle(ctx, owner, query)
		if err != nil {
			return replyFailure(c.deps, cmdCtx, query, err)
		}
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatFavoriteToggled(creature, added))

	case "clear":
		count, err := c.deps.Favorites.Clear(ctx, owner)
		if err != nil {
			c.deps.Logger.Error("Failed to clear favorites", zap.Error(err))
			return c.deps.SendError(cmdCtx.Room, "즐겨찾기 초기화 중 오류가 발생했습니다.")
		}
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatFavoriteCleared(count))

	default:
		names, err := c.deps.Favorites.List(ctx, owner)
		if err != nil {
			return c.deps.SendError(cmdCtx.Room, "즐겨찾기 목록 조회 실패")
		}
		creatures := []*domain.Creature{}
		if len(names) > 0 {
			if creatures, err = c.deps.Favorites.Resolve(ctx, owner); err != nil {
				return c.deps.SendError(cmdCtx.Room, "즐겨찾기 목록 조회 실패")
			}
		}
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatFavoriteList(creatures, len(names)))
	}
}
