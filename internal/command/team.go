package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
)

type TeamCommand struct {
	deps *Dependencies
}

func NewTeamCommand(deps *Dependencies) *TeamCommand {
	return &TeamCommand{deps: deps}
}

func (c *TeamCommand) Name() string {
	return "team"
}

func (c *TeamCommand) Description() string {
	return "팀 구성 관리 및 분석"
}

func (c *TeamCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.ensureDeps(); err != nil {
		return err
	}

	action := getStringParam(params, "action")
	if action == "" {
		action = "list"
	}

	switch action {
	case "add":
		return c.handleAdd(ctx, cmdCtx, params)
	case "remove", "delete":
		return c.handleRemove(ctx, cmdCtx, params)
	case "list":
		return c.handleList(ctx, cmdCtx)
	case "clear":
		return c.handleClear(ctx, cmdCtx)
	case "analyze":
		return c.handleAnalyze(ctx, cmdCtx)
	default:
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatHelp())
	}
}

func (c *TeamCommand) ensureDeps() error {
	if c == nil {
		return fmt.Errorf("team command dependencies not configured")
	}
	if err := c.deps.ensureMessaging(); err != nil {
		return err
	}
	if c.deps.Team == nil {
		return fmt.Errorf("team service not configured")
	}
	return nil
}

func (c *TeamCommand) handleAdd(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	query := getStringParam(params, "query")
	if query == "" {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUsage("팀 추가 [포켓몬]", "팀 추가 피카츄"))
	}

	c.deps.Logger.Info("Team add requested", zap.String("query", query))

	roster, creature, err := c.deps.Team.Add(ctx, ownerKey(cmdCtx), query)
	if err != nil {
		return replyFailure(c.deps, cmdCtx, query, err)
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatTeamAdded(creature, roster))
}

func (c *TeamCommand) handleRemove(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	query := getStringParam(params, "query")
	if query == "" {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUsage("팀 제거 [포켓몬]", "팀 제거 피카츄"))
	}

	c.deps.Logger.Info("Team remove requested", zap.String("query", query))

	roster, removed, err := c.deps.Team.Remove(ctx, ownerKey(cmdCtx), query)
	if err != nil {
		return replyFailure(c.deps, cmdCtx, query, err)
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatTeamRemoved(query, removed, roster))
}

func (c *TeamCommand) handleList(ctx context.Context, cmdCtx *domain.CommandContext) error {
	roster := c.deps.Team.Get(ctx, ownerKey(cmdCtx))
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatTeam(roster))
}

func (c *TeamCommand) handleClear(ctx context.Context, cmdCtx *domain.CommandContext) error {
	count, err := c.deps.Team.Clear(ctx, ownerKey(cmdCtx))
	if err != nil {
		c.deps.Logger.Error("Failed to clear team", zap.Error(err))
		return c.deps.SendError(cmdCtx.Room, "팀 초기화 중 오류가 발생했습니다.")
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatTeamCleared(count))
}

func (c *TeamCommand) handleAnalyze(ctx context.Context, cmdCtx *domain.CommandContext) error {
	report := c.deps.Team.Analyze(ctx, ownerKey(cmdCtx))
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatTeamAnalysis(report))
}
