package catalog

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

type fakeRequester struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{
		responses: map[string]string{},
		errs:      map[string]error{},
		calls:     map[string]int{},
	}
}

func (f *fakeRequester) DoRequest(_ context.Context, path string, _ url.Values) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	if body, ok := f.responses[path]; ok {
		return []byte(body), nil
	}
	return nil, errors.NewNotFoundError("pokeapi", path)
}

func (f *fakeRequester) IsCircuitOpen() bool { return false }

func (f *fakeRequester) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.ttls[key] = ttl
	return nil
}

type fakeScraper struct {
	creature *domain.Creature
	err      error
	calls    int
}

func (s *fakeScraper) FetchCreature(context.Context, string) (*domain.Creature, error) {
	s.calls++
	return s.creature, s.err
}

const charizardJSON = `{
  "id": 6, "name": "charizard", "height": 17, "weight": 905,
  "types": [
    {"slot": 2, "type": {"name": "flying"}},
    {"slot": 1, "type": {"name": "fire"}}
  ],
  "stats": [
    {"base_stat": 78, "stat": {"name": "hp"}},
    {"base_stat": 84, "stat": {"name": "attack"}},
    {"base_stat": 78, "stat": {"name": "defense"}},
    {"base_stat": 109, "stat": {"name": "special-attack"}},
    {"base_stat": 85, "stat": {"name": "special-defense"}},
    {"base_stat": 100, "stat": {"name": "speed"}},
    {"base_stat": 1, "stat": {"name": "accuracy"}}
  ],
  "abilities": [
    {"is_hidden": false, "slot": 1, "ability": {"name": "blaze"}},
    {"is_hidden": true, "slot": 3, "ability": {"name": "solar-power"}}
  ],
  "sprites": {"front_default": "front.png", "other": {"official-artwork": {"front_default": ""}}}
}`

func TestGetCreatureMapsPayloadAndCaches(t *testing.T) {
	req := newFakeRequester()
	req.responses["pokemon/charizard"] = charizardJSON
	cache := newFakeCache()
	svc := NewService(req, cache, nil, zap.NewNop())

	c, err := svc.GetCreature(context.Background(), "  Charizard ")
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 6, c.ID)
	assert.Equal(t, []domain.ElementalType{domain.TypeFire, domain.TypeFlying}, c.Types)
	assert.Equal(t, 109, c.Stats[domain.StatSpecialAttack])
	assert.Len(t, c.Stats, 6)
	assert.Equal(t, 534, c.BaseStatTotal())
	assert.Equal(t, "front.png", c.Sprite)
	assert.Equal(t, []domain.Ability{{Name: "blaze"}, {Name: "solar-power", IsHidden: true}}, c.Abilities)

	again, err := svc.GetCreature(context.Background(), "charizard")
	require.NoError(t, err)
	assert.Equal(t, c, again)
	assert.Equal(t, 1, req.count("pokemon/charizard"))
}

func TestGetCreatureNotFoundReturnsNil(t *testing.T) {
	req := newFakeRequester()
	cache := newFakeCache()
	svc := NewService(req, cache, nil, zap.NewNop())

	c, err := svc.GetCreature(context.Background(), "missingno")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = svc.GetCreature(context.Background(), "missingno")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 1, req.count("pokemon/missingno"), "misses are cached")
}

func TestGetCreatureKeepsUnknownTypes(t *testing.T) {
	req := newFakeRequester()
	req.responses["pokemon/glitch"] = `{"id": 9999, "name": "glitch", "types": [{"slot": 1, "type": {"name": "Shadow"}}], "stats": []}`
	svc := NewService(req, nil, nil, zap.NewNop())

	c, err := svc.GetCreature(context.Background(), "glitch")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, []domain.ElementalType{"shadow"}, c.Types)
	assert.False(t, c.Types[0].IsKnown())
}

func TestGetCreatureNormalizesNumbers(t *testing.T) {
	req := newFakeRequester()
	req.responses["pokemon/6"] = charizardJSON
	svc := NewService(req, nil, nil, zap.NewNop())

	c, err := svc.GetCreature(context.Background(), "006")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "charizard", c.Name)
}

func TestGetCreatureValidatesInput(t *testing.T) {
	svc := NewService(newFakeRequester(), nil, nil, zap.NewNop())

	for _, input := range []string{"", "   ", "0"} {
		_, err := svc.GetCreature(context.Background(), input)
		var validation *errors.ValidationError
		assert.True(t, stdErrors.As(err, &validation), input)
	}
}

func TestGetCreatureFallsBackToScraper(t *testing.T) {
	req := newFakeRequester()
	req.errs["pokemon/pikachu"] = errors.NewAPIError("Server error: 502", 502, nil)
	scraped := &domain.Creature{ID: 25, Name: "pikachu", Types: []domain.ElementalType{domain.TypeElectric}}
	scraper := &fakeScraper{creature: scraped}
	svc := NewService(req, nil, scraper, zap.NewNop())

	c, err := svc.GetCreature(context.Background(), "pikachu")
	require.NoError(t, err)
	assert.Equal(t, scraped, c)
	assert.Equal(t, 1, scraper.calls)
}

func TestGetCreatureReportsFailureWithoutFallback(t *testing.T) {
	req := newFakeRequester()
	req.errs["pokemon/pikachu"] = errors.NewAPIError("Server error: 502", 502, nil)
	svc := NewService(req, nil, &fakeScraper{err: stdErrors.New("blocked")}, zap.NewNop())

	_, err := svc.GetCreature(context.Background(), "pikachu")
	var svcErr *errors.ServiceError
	require.True(t, stdErrors.As(err, &svcErr))
	assert.Equal(t, "get_creature", svcErr.Operation)
}

func TestListCreatures(t *testing.T) {
	req := newFakeRequester()
	req.responses["pokemon"] = `{"count": 1302, "results": [
		{"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon/1/"},
		{"name": "ivysaur", "url": "https://pokeapi.co/api/v2/pokemon/2/"}
	]}`
	svc := NewService(req, newFakeCache(), nil, zap.NewNop())

	page, err := svc.ListCreatures(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1302, page.Total)
	assert.Equal(t, []ListEntry{{ID: 1, Name: "bulbasaur"}, {ID: 2, Name: "ivysaur"}}, page.Entries)

	_, err = svc.ListCreatures(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, req.count("pokemon"))
}

func TestGetSpeciesPicksEnglishEntries(t *testing.T) {
	req := newFakeRequester()
	req.responses["pokemon-species/25"] = `{
		"id": 25, "name": "pikachu",
		"genera": [{"genus": "ねずみポケモン", "language": {"name": "ja"}}, {"genus": "Mouse Pokémon", "language": {"name": "en"}}],
		"flavor_text_entries": [{"flavor_text": "When several of\nthese POKéMON\fgather...", "language": {"name": "en"}}],
		"evolution_chain": {"url": "https://pokeapi.co/api/v2/evolution-chain/10/"}
	}`
	svc := NewService(req, nil, nil, zap.NewNop())

	species, err := svc.GetSpecies(context.Background(), "25")
	require.NoError(t, err)
	assert.Equal(t, "Mouse Pokémon", species.Genus)
	assert.Equal(t, "When several of these POKéMON gather...", species.FlavorText)
	assert.Equal(t, "https://pokeapi.co/api/v2/evolution-chain/10/", species.EvolutionChainURL)
}

func TestGetSpeciesNotFound(t *testing.T) {
	svc := NewService(newFakeRequester(), nil, nil, zap.NewNop())
	_, err := svc.GetSpecies(context.Background(), "missingno")
	var notFound *errors.NotFoundError
	assert.True(t, stdErrors.As(err, &notFound))
}

func TestGetEvolutionChainIsDepthFirst(t *testing.T) {
	chainURL := "https://pokeapi.co/api/v2/evolution-chain/67/"
	req := newFakeRequester()
	req.responses[chainURL] = `{"id": 67, "chain": {
		"species": {"name": "eevee", "url": "https://pokeapi.co/api/v2/pokemon-species/133/"},
		"evolves_to": [
			{"species": {"name": "vaporeon", "url": "https://pokeapi.co/api/v2/pokemon-species/134/"}, "evolves_to": []},
			{"species": {"name": "jolteon", "url": "https://pokeapi.co/api/v2/pokemon-species/135/"}, "evolves_to": []}
		]
	}}`
	svc := NewService(req, nil, nil, zap.NewNop())

	stages, err := svc.GetEvolutionChain(context.Background(), chainURL)
	require.NoError(t, err)
	assert.Equal(t, []EvolutionStage{
		{ID: 133, Name: "eevee", Depth: 0},
		{ID: 134, Name: "vaporeon", Depth: 1},
		{ID: 135, Name: "jolteon", Depth: 1},
	}, stages)
}

func TestGetAbilityDescriptionFallbacks(t *testing.T) {
	req := newFakeRequester()
	req.responses["ability/static"] = `{"name": "static", "effect_entries": [
		{"effect": "long", "short_effect": "Has a 30% chance of paralyzing attacking Pokémon on contact.", "language": {"name": "en"}}
	]}`
	req.responses["ability/new-thing"] = `{"name": "new-thing", "effect_entries": [],
		"flavor_text_entries": [{"flavor_text": "Does\nsomething.", "language": {"name": "en"}}]}`
	req.responses["ability/blank"] = `{"name": "blank"}`
	svc := NewService(req, nil, nil, zap.NewNop())

	info, err := svc.GetAbility(context.Background(), "Static")
	require.NoError(t, err)
	assert.Equal(t, "Has a 30% chance of paralyzing attacking Pokémon on contact.", info.Description)

	info, err = svc.GetAbility(context.Background(), "new thing")
	require.NoError(t, err)
	assert.Equal(t, "Does something.", info.Description)

	info, err = svc.GetAbility(context.Background(), "blank")
	require.NoError(t, err)
	assert.Equal(t, noDescription, info.Description)
}

func TestGetCreatureResolvesKoreanNames(t *testing.T) {
	req := newFakeRequester()
	req.responses["pokemon/charizard"] = charizardJSON
	svc := NewService(req, newFakeCache(), nil, zap.NewNop())

	c, err := svc.GetCreature(context.Background(), "리자몽")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "charizard", c.Name)

	again, err := svc.GetCreature(context.Background(), "charizard")
	require.NoError(t, err)
	assert.Equal(t, c, again)
	assert.Equal(t, 1, req.count("pokemon/charizard"))
	assert.Zero(t, req.count("pokemon/리자몽"))
}

func TestListCreaturesByType(t *testing.T) {
	req := newFakeRequester()
	req.responses["type/fire"] = `{"name": "fire", "pokemon": [
		{"slot": 1, "pokemon": {"name": "charmeleon", "url": "https://pokeapi.co/api/v2/pokemon/5/"}},
		{"slot": 1, "pokemon": {"name": "charmander", "url": "https://pokeapi.co/api/v2/pokemon/4/"}},
		{"slot": 1, "pokemon": {"name": "charizard-mega-x", "url": "https://pokeapi.co/api/v2/pokemon/10034/"}},
		{"slot": 1, "pokemon": {"name": "charizard", "url": "https://pokeapi.co/api/v2/pokemon/6/"}}
	]}`
	svc := NewService(req, newFakeCache(), nil, zap.NewNop())
	ctx := context.Background()

	page, err := svc.ListCreaturesByType(ctx, domain.TypeFire, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []ListEntry{{ID: 4, Name: "charmander"}, {ID: 5, Name: "charmeleon"}}, page.Entries)

	page, err = svc.ListCreaturesByType(ctx, domain.TypeFire, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []ListEntry{{ID: 6, Name: "charizard"}}, page.Entries)

	page, err = svc.ListCreaturesByType(ctx, domain.TypeFire, 2, 40)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 1, req.count("type/fire"), "members are fetched once per type")

	_, err = svc.ListCreaturesByType(ctx, domain.ElementalType("cosmic"), 2, 0)
	var unknown *errors.UnknownTypeError
	assert.True(t, stdErrors.As(err, &unknown))
	assert.Zero(t, req.count("type/cosmic"))
}
