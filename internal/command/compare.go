package command

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/analysis"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

type CompareCommand struct {
	deps *Dependencies
}

func NewCompareCommand(deps *Dependencies) *CompareCommand {
	return &CompareCommand{deps: deps}
}

func (c *CompareCommand) Name() string {
	return string(domain.CommandCompare)
}

func (c *CompareCommand) Description() string {
	return "두 포켓몬의 종족값과 상성 비교"
}

func (c *CompareCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if c == nil {
		return fmt.Errorf("compare command dependencies not configured")
	}
	if err := c.deps.ensureMessaging(); err != nil {
		return err
	}
	if c.deps.Catalog == nil {
		return fmt.Errorf("catalog not configured")
	}

	queries := []string{getStringParam(params, "left"), getStringParam(params, "right")}
	if queries[0] == "" || queries[1] == "" {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUsage("비교 [포켓몬] [포켓몬]", "비교 리자몽 거북왕"))
	}

	creatures := make([]*domain.Creature, len(queries))
	p := pool.New().WithErrors().WithContext(ctx)
	for i, query := range queries {
		i, query := i, query
		p.Go(func(ctx context.Context) error {
			creature, err := c.deps.Catalog.GetCreature(ctx, query)
			if err != nil {
				return &lookupError{query: query, err: err}
			}
			if creature == nil {
				return &lookupError{query: query, err: errors.NewNotFoundError("pokemon", query)}
			}
			creatures[i] = creature
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		query := queries[0]
		var lookup *lookupError
		if stdErrors.As(err, &lookup) {
			query = lookup.query
		}
		return replyFailure(c.deps, cmdCtx, query, err)
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatComparison(analysis.Compare(creatures[0], creatures[1])))
}

// lookupError remembers which side of the comparison failed.
type lookupError struct {
	query string
	err   error
}

func (e *lookupError) Error() string {
	return fmt.Sprintf("lookup %q: %v", e.query, e.err)
}

func (e *lookupError) Unwrap() error {
	return e.err
}
