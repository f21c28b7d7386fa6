package command

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/adapter"
	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/catalog"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

// speciesIDLimit separates species numbers from alternate-form ids, which
// PokeAPI numbers from 10001.
const speciesIDLimit = 10000

type DexCommand struct {
	deps *Dependencies
}

func NewDexCommand(deps *Dependencies) *DexCommand {
	return &DexCommand{deps: deps}
}

func (c *DexCommand) Name() string {
	return "dex"
}

func (c *DexCommand) Description() string {
	return "포켓몬 도감 조회"
}

func (c *DexCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if c == nil {
		return fmt.Errorf("dex command dependencies not configured")
	}
	if err := c.deps.ensureMessaging(); err != nil {
		return err
	}
	if c.deps.Catalog == nil {
		return fmt.Errorf("catalog not configured")
	}

	if getStringParam(params, "action") == "list" {
		return c.handleList(ctx, cmdCtx, params)
	}
	return c.handleInfo(ctx, cmdCtx, params)
}

func (c *DexCommand) handleInfo(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	query := getStringParam(params, "query")
	if query == "" {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatUsage("도감 [포켓몬]", "도감 피카츄"))
	}

	creature, err := c.deps.Catalog.GetCreature(ctx, query)
	if err != nil {
		return replyFailure(c.deps, cmdCtx, query, err)
	}
	if creature == nil {
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatNotFound(query))
	}

	owner := ownerKey(cmdCtx)
	if c.deps.Recent != nil {
		c.deps.Recent.Record(ctx, owner, creature)
	}

	entry := c.enrich(ctx, owner, creature)
	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatDexEntry(entry))
}

// enrich loads species text, the evolution chain, ability descriptions and
// the favorite flag concurrently. Every part is optional: failures are
// logged and the section is left out.
func (c *DexCommand) enrich(ctx context.Context, owner string, creature *domain.Creature) adapter.DexEntry {
	entry := adapter.DexEntry{
		Creature:  creature,
		Abilities: make([]adapter.AbilityLine, len(creature.Abilities)),
	}
	for i, a := range creature.Abilities {
		entry.Abilities[i] = adapter.AbilityLine{Name: a.Name, Hidden: a.IsHidden}
	}

	p := pool.New().WithMaxGoroutines(constants.TeamConfig.ResolveParallel)
	mu := sync.Mutex{}

	p.Go(func() {
		species, err := c.deps.Catalog.GetSpecies(ctx, speciesKey(creature))
		if err != nil || species == nil {
			c.logSkip("species", creature.Name, err)
			return
		}

		var chain []adapter.EvolutionStep
		if species.EvolutionChainURL != "" {
			stages, err := c.deps.Catalog.GetEvolutionChain(ctx, species.EvolutionChainURL)
			if err != nil {
				c.logSkip("evolution chain", creature.Name, err)
			}
			for _, s := range stages {
				chain = append(chain, adapter.EvolutionStep{Name: s.Name, Depth: s.Depth})
			}
		}

		mu.Lock()
		entry.Genus = species.Genus
		entry.FlavorText = species.FlavorText
		entry.Legendary = species.IsLegendary
		entry.Mythical = species.IsMythical
		entry.Evolution = chain
		mu.Unlock()
	})

	for i, a := range creature.Abilities {
		i, name := i, a.Name
		p.Go(func() {
			info, err := c.deps.Catalog.GetAbility(ctx, name)
			if err != nil || info == nil {
				c.logSkip("ability", name, err)
				return
			}
			mu.Lock()
			entry.Abilities[i].Description = info.Description
			mu.Unlock()
		})
	}

	if c.deps.Favorites != nil {
		p.Go(func() {
			favorite, err := c.deps.Favorites.IsFavorite(ctx, owner, creature.Name)
			if err != nil {
				c.logSkip("favorite flag", creature.Name, err)
				return
			}
			mu.Lock()
			entry.Favorite = favorite
			mu.Unlock()
		})
	}

	p.Wait()
	return entry
}

func (c *DexCommand) handleList(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	perPage := constants.PaginationConfig.ItemsPerPage
	page := util.Clamp(getIntParam(params, "page", 1), 1, constants.PaginationConfig.MaxPage)
	offset := (page - 1) * perPage

	var filter domain.ElementalType
	if raw := getStringParam(params, "type"); raw != "" {
		t, err := domain.ParseElementalType(raw)
		if err != nil {
			return c.deps.SendError(cmdCtx.Room, c.deps.Formatter.FormatUnknownType(raw))
		}
		filter = t
	}

	var (
		result *catalog.ListPage
		err    error
	)
	if filter != "" {
		result, err = c.deps.Catalog.ListCreaturesByType(ctx, filter, perPage, offset)
	} else {
		result, err = c.deps.Catalog.ListCreatures(ctx, perPage, offset)
	}
	if err != nil {
		c.deps.Logger.Error("Failed to list creatures",
			zap.Int("page", page),
			zap.String("type", filter.String()),
			zap.Error(err),
		)
		return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatServiceUnavailable())
	}

	totalPages := util.Min((result.Total+perPage-1)/perPage, constants.PaginationConfig.MaxPage)
	view := adapter.DexListPage{
		Type:       filter,
		Page:       page,
		TotalPages: totalPages,
		Total:      result.Total,
		Entries:    make([]adapter.DexListEntry, 0, len(result.Entries)),
	}
	for _, e := range result.Entries {
		view.Entries = append(view.Entries, adapter.DexListEntry{ID: e.ID, Name: e.Name})
	}

	return c.deps.SendMessage(cmdCtx.Room, c.deps.Formatter.FormatDexList(view))
}

func (c *DexCommand) logSkip(part, name string, err error) {
	c.deps.Logger.Warn("Dex entry section skipped",
		zap.String("part", part),
		zap.String("name", name),
		zap.Error(err),
	)
}

func speciesKey(c *domain.Creature) string {
	if c.ID > 0 && c.ID <= speciesIDLimit {
		return strconv.Itoa(c.ID)
	}
	return c.Name
}
