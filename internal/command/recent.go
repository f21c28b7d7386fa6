package command

import (
	"context"
	"fmt"

	"github.com/kapu/poketeam-kakao-bot/internal/adapter"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
)

type RecentCommand struct {
	deps *Dependencies
}

func NewRecentCommand(deps *Dependencies) *RecentCommand {
	return &RecentCommand{deps: deps}
}

func (c *RecentCommand) Name() string {
	return string(domain.CommandRecent)
}

func (c *RecentCommand) Description() string {
	return "최근 조회한 포켓몬"
}

func (c *RecentCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if c == nil {
		return fmt.Errorf("recent command dependencies not configured")
	}
	if err := c.deps.ensureMessaging(); err != nil {
		return err
	}
	if c.deps.Recent == nil {
		return c.deps.SendError(cmdCtx.Room, "조회 기록 서비스가 초기화되지 않았습니다.")
	}

	owner := ownerKey(cmdCtx)
	if getStringParam(params, "action") == "clear" {
		c.deps.Recent.Clear(ctx, owner)
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatRecentCleared())
	}

	entries := c.deps.Recent.List(ctx, owner)
	view := make([]adapter.RecentEntry, 0, len(entries))
	for _, e := range entries {
		view = append(view, adapter.RecentEntry{ID: e.ID, Name: e.Name})
	}
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatRecent(view))
}
