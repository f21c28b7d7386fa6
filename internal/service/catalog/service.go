package catalog

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

const noDescription = "No description available."

// maxSpeciesID is the last national number; PokeAPI numbers alternate forms
// from 10001.
const maxSpeciesID = 10000

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Scraper is the fallback source used when PokeAPI is unavailable.
type Scraper interface {
	FetchCreature(ctx context.Context, name string) (*domain.Creature, error)
}

// Service resolves pokedex data through PokeAPI with caching.
type Service struct {
	requester Requester
	cache     Cache
	scraper   Scraper
	group     singleflight.Group
	logger    *zap.Logger
}

// creatureEntry lets the cache remember names that do not exist.
type creatureEntry struct {
	Missing  bool             `json:"missing,omitempty"`
	Creature *domain.Creature `json:"creature,omitempty"`
}

// NewService builds a catalog service. cache and scraper may be nil.
func NewService(requester Requester, cache Cache, scraper Scraper, logger *zap.Logger) *Service {
	return &Service{
		requester: requester,
		cache:     cache,
		scraper:   scraper,
		logger:    util.LoggerOrNop(logger),
	}
}

// GetCreature looks up a creature by name or national number.
// It returns (nil, nil) when the catalog has no such entry.
func (s *Service) GetCreature(ctx context.Context, nameOrID string) (*domain.Creature, error) {
	query, err := normalizeLookup(nameOrID)
	if err != nil {
		return nil, err
	}

	key := constants.CacheKeys.CreaturePrefix + query
	var entry creatureEntry
	if s.cacheGet(ctx, key, &entry) {
		if entry.Missing {
			return nil, nil
		}
		if entry.Creature != nil {
			return entry.Creature, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchCreature(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	creature, _ := v.(*domain.Creature)
	if creature == nil {
		s.cacheSet(ctx, key, creatureEntry{Missing: true}, constants.CacheTTL.NotFound)
		return nil, nil
	}

	s.cacheSet(ctx, key, creatureEntry{Creature: creature}, constants.CacheTTL.Creature)
	if alias := constants.CacheKeys.CreaturePrefix + creature.NormalizedName(); alias != key {
		s.cacheSet(ctx, alias, creatureEntry{Creature: creature}, constants.CacheTTL.Creature)
	}
	return creature, nil
}

func (s *Service) fetchCreature(ctx context.Context, query string) (*domain.Creature, error) {
	body, err := s.requester.DoRequest(ctx, "pokemon/"+query, nil)
	if err == nil {
		var raw pokemonResponse
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, errors.NewServiceError("invalid pokemon payload", "catalog", "get_creature", err)
		}
		return s.mapCreature(&raw), nil
	}

	var notFound *errors.NotFoundError
	if stdErrors.As(err, &notFound) {
		s.logger.Debug("Creature not found", zap.String("query", query))
		return nil, nil
	}

	if s.scraper == nil || isNumeric(query) {
		return nil, errors.NewServiceError("creature lookup failed", "catalog", "get_creature", err)
	}

	s.logger.Warn("PokeAPI failed, using scraper fallback",
		zap.String("query", query),
		zap.Error(err),
	)
	creature, scrapeErr := s.scraper.FetchCreature(ctx, query)
	if scrapeErr != nil {
		if stdErrors.As(scrapeErr, &notFound) {
			return nil, nil
		}
		s.logger.Error("Scraper fallback failed", zap.String("query", query), zap.Error(scrapeErr))
		return nil, errors.NewServiceError("creature lookup failed", "catalog", "get_creature", err)
	}
	return creature, nil
}

func (s *Service) mapCreature(raw *pokemonResponse) *domain.Creature {
	slots := append(raw.Types[:0:0], raw.Types...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })

	types := make([]domain.ElementalType, 0, len(slots))
	for _, t := range slots {
		parsed, err := domain.ParseElementalType(t.Type.Name)
		if err != nil {
			s.logger.Warn("Unknown elemental type from catalog",
				zap.String("creature", raw.Name),
				zap.String("type", t.Type.Name),
			)
			parsed = domain.ElementalType(util.Normalize(t.Type.Name))
		}
		types = append(types, parsed)
	}

	stats := make(domain.Stats, len(domain.StatKeys))
	for _, st := range raw.Stats {
		key := domain.StatKey(st.Stat.Name)
		if key.IsKnown() {
			stats[key] = st.BaseStat
		}
	}

	abilities := make([]domain.Ability, 0, len(raw.Abilities))
	for _, a := range raw.Abilities {
		abilities = append(abilities, domain.Ability{Name: a.Ability.Name, IsHidden: a.IsHidden})
	}

	sprite := raw.Sprites.Other.OfficialArtwork.FrontDefault
	if sprite == "" {
		sprite = raw.Sprites.FrontDefault
	}

	return &domain.Creature{
		ID:        raw.ID,
		Name:      raw.Name,
		Types:     types,
		Stats:     stats,
		Height:    raw.Height,
		Weight:    raw.Weight,
		Abilities: abilities,
		Sprite:    sprite,
	}
}

// ListCreatures returns one page of the national pokedex.
func (s *Service) ListCreatures(ctx context.Context, limit, offset int) (*ListPage, error) {
	if limit <= 0 {
		limit = constants.PaginationConfig.ItemsPerPage
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("%s%d:%d", constants.CacheKeys.ListPrefix, limit, offset)
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	return load(ctx, s, key, constants.CacheTTL.CreatureList, "pokemon", params, "list_creatures",
		func(body []byte) (*ListPage, error) {
			var raw pokemonListResponse
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, err
			}
			page := &ListPage{Total: raw.Count, Offset: offset, Entries: make([]ListEntry, 0, len(raw.Results))}
			for _, r := range raw.Results {
				page.Entries = append(page.Entries, ListEntry{ID: resourceID(r.URL), Name: r.Name})
			}
			return page, nil
		})
}

// ListCreaturesByType returns one page of the creatures of type t in national
// dex order. Alternate forms are left out. The full member list of a type is
// cached once and paged locally.
func (s *Service) ListCreaturesByType(ctx context.Context, t domain.ElementalType, limit, offset int) (*ListPage, error) {
	if !t.IsKnown() {
		return nil, errors.NewUnknownTypeError(string(t))
	}
	if limit <= 0 {
		limit = constants.PaginationConfig.ItemsPerPage
	}
	if offset < 0 {
		offset = 0
	}

	members, err := load(ctx, s, constants.CacheKeys.TypePrefix+string(t), constants.CacheTTL.TypeMembers,
		"type/"+string(t), nil, "list_by_type",
		func(body []byte) ([]ListEntry, error) {
			var raw typeResponse
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, err
			}
			entries := make([]ListEntry, 0, len(raw.Pokemon))
			for _, p := range raw.Pokemon {
				id := resourceID(p.Pokemon.URL)
				if id <= 0 || id > maxSpeciesID {
					continue
				}
				entries = append(entries, ListEntry{ID: id, Name: p.Pokemon.Name})
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
			return entries, nil
		})
	if err != nil {
		return nil, err
	}

	page := &ListPage{Total: len(members), Offset: offset, Entries: []ListEntry{}}
	if offset < len(members) {
		end := util.Min(offset+limit, len(members))
		page.Entries = append(page.Entries, members[offset:end]...)
	}
	return page, nil
}

// GetSpecies returns the English genus, flavor text and evolution chain URL.
func (s *Service) GetSpecies(ctx context.Context, nameOrID string) (*Species, error) {
	query, err := normalizeLookup(nameOrID)
	if err != nil {
		return nil, err
	}

	return load(ctx, s, constants.CacheKeys.SpeciesPrefix+query, constants.CacheTTL.Species,
		"pokemon-species/"+query, nil, "get_species",
		func(body []byte) (*Species, error) {
			var raw speciesResponse
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, err
			}
			species := &Species{
				ID:                raw.ID,
				Name:              raw.Name,
				EvolutionChainURL: raw.EvolutionChain.URL,
				IsLegendary:       raw.IsLegendary,
				IsMythical:        raw.IsMythical,
			}
			for _, g := range raw.Genera {
				if g.Language.Name == "en" {
					species.Genus = g.Genus
					break
				}
			}
			for _, f := range raw.FlavorTextEntries {
				if f.Language.Name == "en" {
					species.FlavorText = cleanText(f.FlavorText)
					break
				}
			}
			return species, nil
		})
}

// GetEvolutionChain returns every stage of the chain at chainURL in
// depth-first order, so branching chains list each branch in turn.
func (s *Service) GetEvolutionChain(ctx context.Context, chainURL string) ([]EvolutionStage, error) {
	if strings.TrimSpace(chainURL) == "" {
		return nil, errors.NewValidationError("evolution chain url is required", "url", chainURL)
	}

	key := constants.CacheKeys.EvolutionPrefix + strconv.Itoa(resourceID(chainURL))
	return load(ctx, s, key, constants.CacheTTL.EvolutionChain, chainURL, nil, "get_evolution_chain",
		func(body []byte) ([]EvolutionStage, error) {
			var raw evolutionChainResponse
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, err
			}
			stages := make([]EvolutionStage, 0)
			walkChain(raw.Chain, 0, &stages)
			return stages, nil
		})
}

func walkChain(link chainLink, depth int, out *[]EvolutionStage) {
	*out = append(*out, EvolutionStage{
		ID:    resourceID(link.Species.URL),
		Name:  link.Species.Name,
		Depth: depth,
	})
	for _, next := range link.EvolvesTo {
		walkChain(next, depth+1, out)
	}
}

// GetAbility returns the English description of an ability.
func (s *Service) GetAbility(ctx context.Context, name string) (*AbilityInfo, error) {
	query, err := normalizeLookup(name)
	if err != nil {
		return nil, err
	}

	return load(ctx, s, constants.CacheKeys.AbilityPrefix+query, constants.CacheTTL.Ability,
		"ability/"+query, nil, "get_ability",
		func(body []byte) (*AbilityInfo, error) {
			var raw abilityResponse
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, err
			}
			return &AbilityInfo{Name: raw.Name, Description: describeAbility(&raw)}, nil
		})
}

func describeAbility(raw *abilityResponse) string {
	for _, e := range raw.EffectEntries {
		if e.Language.Name != "en" {
			continue
		}
		if e.ShortEffect != "" {
			return cleanText(e.ShortEffect)
		}
		if e.Effect != "" {
			return cleanText(e.Effect)
		}
	}
	for _, f := range raw.FlavorTextEntries {
		if f.Language.Name == "en" && f.FlavorText != "" {
			return cleanText(f.FlavorText)
		}
	}
	return noDescription
}

// load serves key from the cache or fetches path once across concurrent callers.
func load[T any](ctx context.Context, s *Service, key string, ttl time.Duration, path string, params url.Values, op string, decode func([]byte) (T, error)) (T, error) {
	var cached T
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		body, err := s.requester.DoRequest(ctx, path, params)
		if err != nil {
			return nil, err
		}
		decoded, err := decode(body)
		if err != nil {
			return nil, errors.NewServiceError("invalid catalog payload", "catalog", op, err)
		}
		return decoded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	result := v.(T)
	s.cacheSet(ctx, key, result, ttl)
	return result, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *Service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func normalizeLookup(raw string) (string, error) {
	if slug, ok := domain.SlugForKoreanName(raw); ok {
		return slug, nil
	}
	query := util.NormalizeQuery(raw)
	if query == "" {
		return "", errors.NewValidationError("name or number is required", "query", raw)
	}
	if len([]rune(query)) > constants.InputLimits.MaxQueryLength {
		return "", errors.NewValidationError("query is too long", "query", util.TruncateString(raw, 20))
	}
	if isNumeric(query) {
		// "025" and "25" share a cache entry.
		n, _ := strconv.Atoi(query)
		if n <= 0 {
			return "", errors.NewValidationError("pokedex number must be positive", "query", raw)
		}
		query = strconv.Itoa(n)
	}
	return query, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resourceID extracts the trailing numeric id of a PokeAPI resource URL.
func resourceID(resourceURL string) int {
	parts := strings.Split(strings.TrimRight(resourceURL, "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return id
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
