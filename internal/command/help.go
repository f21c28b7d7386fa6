package command

import (
	"context"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
)

type HelpCommand struct {
	deps *Dependencies
}

func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{deps: deps}
}

func (c *HelpCommand) Name() string {
	return string(domain.CommandHelp)
}

func (c *HelpCommand) Description() string {
	return "도움말을 표시합니다"
}

func (c *HelpCommand) Execute(_ context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	if err := c.deps.ensureMessaging(); err != nil {
		return err
	}
	message := c.deps.Formatter.FormatHelp()
	return c.deps.SendMessage(cmdCtx.Room, message)
}
