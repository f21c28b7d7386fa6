package command

import (
	"context"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
)

// CommandEvent is a parsed command waiting to be executed.
type CommandEvent struct {
	Type   domain.CommandType
	Params map[string]any
}

// Dispatcher executes command events on behalf of a chat context and reports
// how many ran.
type Dispatcher interface {
	Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...CommandEvent) (int, error)
}

// NormalizeFunc converts a domain command type plus params into the registry key
// and normalized parameter map used for execution.
type NormalizeFunc func(domain.CommandType, map[string]any) (string, map[string]any)

type sequentialDispatcher struct {
	registry  *Registry
	normalize NormalizeFunc
}

// NewSequentialDispatcher creates a dispatcher that executes command events in
// the order they are received. A nil normalize uses NormalizeCommand.
func NewSequentialDispatcher(registry *Registry, normalize NormalizeFunc) Dispatcher {
	if normalize == nil {
		normalize = NormalizeCommand
	}
	return &sequentialDispatcher{registry: registry, normalize: normalize}
}

// NormalizeCommand folds the sub-commands of team, favorite and dex into one
// handler each, carrying the sub-command in the "action" param.
func NormalizeCommand(cmdType domain.CommandType, params map[string]any) (string, map[string]any) {
	if params == nil {
		params = map[string]any{}
	}

	setAction := func(action string) {
		if _, ok := params["action"]; !ok {
			params["action"] = action
		}
	}

	switch cmdType {
	case domain.CommandTeamAdd:
		setAction("add")
		return "team", params
	case domain.CommandTeamRemove:
		setAction("remove")
		return "team", params
	case domain.CommandTeamList:
		setAction("list")
		return "team", params
	case domain.CommandTeamClear:
		setAction("clear")
		return "team", params
	case domain.CommandTeamAnalyze:
		setAction("analyze")
		return "team", params
	case domain.CommandFavoriteToggle:
		setAction("toggle")
		return "favorite", params
	case domain.CommandFavoriteList:
		setAction("list")
		return "favorite", params
	case domain.CommandFavoriteClear:
		setAction("clear")
		return "favorite", params
	case domain.CommandDexInfo:
		setAction("info")
		return "dex", params
	case domain.CommandDexList:
		setAction("list")
		return "dex", params
	default:
		return cmdType.String(), params
	}
}

func (d *sequentialDispatcher) Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...CommandEvent) (int, error) {
	if d == nil || d.registry == nil {
		return 0, nil
	}

	executed := 0
	for _, event := range events {
		if event.Type == domain.CommandUnknown || !event.Type.IsValid() {
			continue
		}

		normalizedParams := cloneParams(event.Params)
		key, params := d.normalize(event.Type, normalizedParams)
		if err := d.registry.Execute(ctx, cmdCtx, key, params); err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

func cloneParams(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	clone := make(map[string]any, len(src))
	for k, v := range src {
		clone[k] = v
	}
	return clone
}
