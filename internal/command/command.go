package command

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/adapter"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/analysis"
	"github.com/kapu/poketeam-kakao-bot/internal/service/catalog"
	"github.com/kapu/poketeam-kakao-bot/internal/service/recent"
	"github.com/kapu/poketeam-kakao-bot/internal/service/team"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

// TeamService manages one roster per owner.
type TeamService interface {
	Get(ctx context.Context, owner string) domain.Roster
	Add(ctx context.Context, owner, query string) (domain.Roster, *domain.Creature, error)
	Remove(ctx context.Context, owner, name string) (domain.Roster, bool, error)
	Clear(ctx context.Context, owner string) (int, error)
	Analyze(ctx context.Context, owner string) *analysis.Report
}

type FavoriteService interface {
	Toggle(ctx context.Context, owner, query string) (*domain.Creature, bool, error)
	List(ctx context.Context, owner string) ([]string, error)
	IsFavorite(ctx context.Context, owner, name string) (bool, error)
	Clear(ctx context.Context, owner string) (int, error)
	Resolve(ctx context.Context, owner string) ([]*domain.Creature, error)
}

type RecentService interface {
	Record(ctx context.Context, owner string, c *domain.Creature)
	List(ctx context.Context, owner string) []recent.Entry
	Clear(ctx context.Context, owner string)
}

// Catalog is the read side of the creature database.
type Catalog interface {
	GetCreature(ctx context.Context, nameOrID string) (*domain.Creature, error)
	ListCreatures(ctx context.Context, limit, offset int) (*catalog.ListPage, error)
	ListCreaturesByType(ctx context.Context, t domain.ElementalType, limit, offset int) (*catalog.ListPage, error)
	GetSpecies(ctx context.Context, nameOrID string) (*catalog.Species, error)
	GetEvolutionChain(ctx context.Context, chainURL string) ([]catalog.EvolutionStage, error)
	GetAbility(ctx context.Context, name string) (*catalog.AbilityInfo, error)
}

type Dependencies struct {
	Team        TeamService
	Favorites   FavoriteService
	Recent      RecentService
	Catalog     Catalog
	Formatter   *adapter.ResponseFormatter
	SendMessage func(room, message string) error
	SendError   func(room, message string) error
	Logger      *zap.Logger
}

func (d *Dependencies) ensureMessaging() error {
	if d == nil {
		return fmt.Errorf("command dependencies not configured")
	}
	if d.SendMessage == nil || d.SendError == nil {
		return fmt.Errorf("message callbacks not configured")
	}
	if d.Formatter == nil {
		return fmt.Errorf("formatter not configured")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return nil
}

// ownerKey scopes per-user data to the room the command came from.
func ownerKey(cmdCtx *domain.CommandContext) string {
	return team.OwnerKey(cmdCtx.Room, cmdCtx.UserKey())
}

// replyFailure turns a service error into a chat reply. Domain errors get a
// specific message; anything else is logged and reported as unavailable.
func replyFailure(deps *Dependencies, cmdCtx *domain.CommandContext, query string, err error) error {
	var (
		full      *errors.TeamFullError
		duplicate *errors.DuplicateMemberError
		notFound  *errors.NotFoundError
		invalid   *errors.ValidationError
	)

	switch {
	case stdErrors.As(err, &full):
		return deps.SendMessage(cmdCtx.Room, deps.Formatter.FormatTeamFull())
	case stdErrors.As(err, &duplicate):
		return deps.SendMessage(cmdCtx.Room, deps.Formatter.FormatDuplicateMember(duplicate.Name))
	case stdErrors.As(err, &notFound):
		return deps.SendMessage(cmdCtx.Room, deps.Formatter.FormatNotFound(query))
	case stdErrors.As(err, &invalid):
		return deps.SendError(cmdCtx.Room, fmt.Sprintf("'%s' 은(는) 올바른 포켓몬 이름이나 번호가 아닙니다.", query))
	}

	deps.Logger.Error("Command failed",
		zap.String("room", cmdCtx.Room),
		zap.String("query", query),
		zap.Error(err),
	)
	return deps.SendMessage(cmdCtx.Room, deps.Formatter.FormatServiceUnavailable())
}

func getStringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	val, ok := params[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func getIntParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}
