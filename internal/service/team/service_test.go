package team

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]*domain.Creature
	loadErr error
	saveErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]*domain.Creature{}}
}

func (f *fakeStore) Load(_ context.Context, owner string) ([]*domain.Creature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]*domain.Creature(nil), f.data[owner]...), nil
}

func (f *fakeStore) Save(_ context.Context, owner string, slots []*domain.Creature) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.data[owner] = append([]*domain.Creature(nil), slots...)
	return nil
}

type fakeProvider struct {
	creatures map[string]*domain.Creature
	err       error
}

func (p *fakeProvider) GetCreature(_ context.Context, query string) (*domain.Creature, error) {
	if p.err != nil {
		return nil, p.err
	}
	if c, ok := p.creatures[query]; ok {
		return c, nil
	}
	// Unknown names resolve to a generic creature so bulk tests need no setup.
	if len(query) > 4 && query[:4] == "mon-" {
		return &domain.Creature{Name: query, Types: []domain.ElementalType{domain.TypeNormal}}, nil
	}
	return nil, nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	provider := &fakeProvider{creatures: map[string]*domain.Creature{
		"pikachu":  {ID: 25, Name: "pikachu", Types: []domain.ElementalType{domain.TypeElectric}},
		"squirtle": {ID: 7, Name: "squirtle", Types: []domain.ElementalType{domain.TypeWater}},
	}}
	return NewService(store, provider, zap.NewNop()), store
}

const owner = "room-1:user-1"

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, "room-1:user-1", OwnerKey("room-1", "user-1"))
}

func TestAddPersistsAndReturnsSnapshot(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	roster, creature, err := svc.Add(ctx, owner, "pikachu")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", creature.Name)
	assert.Equal(t, 1, roster.Count())
	assert.Equal(t, 1, store.saves)

	roster, _, err = svc.Add(ctx, owner, "squirtle")
	require.NoError(t, err)
	assert.Equal(t, 2, roster.Count())
	assert.Equal(t, roster, svc.Get(ctx, owner))
}

func TestAddUnknownCreature(t *testing.T) {
	svc, store := newTestService()

	_, _, err := svc.Add(context.Background(), owner, "missingno")
	var notFound *errors.NotFoundError
	require.True(t, stdErrors.As(err, &notFound))
	assert.Equal(t, "missingno", notFound.Key)
	assert.Zero(t, store.saves)
}

func TestAddDuplicateDoesNotSave(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, _, err := svc.Add(ctx, owner, "pikachu")
	require.NoError(t, err)

	roster, _, err := svc.Add(ctx, owner, "pikachu")
	var dup *errors.DuplicateMemberError
	require.True(t, stdErrors.As(err, &dup))
	assert.Equal(t, 1, roster.Count())
	assert.Equal(t, 1, store.saves)
}

func TestAddProviderFailure(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeProvider{err: stdErrors.New("pokeapi down")}, zap.NewNop())

	_, _, err := svc.Add(context.Background(), owner, "pikachu")
	require.EqualError(t, err, "pokeapi down")
	assert.Zero(t, store.saves)
}

func TestConcurrentAddsNeverExceedCapacity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		added    int
		fullErrs int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Add(ctx, owner, fmt.Sprintf("mon-%02d", i))
			mu.Lock()
			defer mu.Unlock()
			var full *errors.TeamFullError
			switch {
			case err == nil:
				added++
			case stdErrors.As(err, &full):
				fullErrs++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, domain.MaxTeamSize, added)
	assert.Equal(t, 20-domain.MaxTeamSize, fullErrs)
	assert.Equal(t, domain.MaxTeamSize, svc.Get(ctx, owner).Count())
}

func TestOwnerLocksAreReleased(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := OwnerKey("room-1", fmt.Sprintf("user-%d", i%10))
			_, _, _ = svc.Add(ctx, key, "pikachu")
			_, _ = svc.Clear(ctx, key)
		}(i)
	}
	wg.Wait()

	svc.locksMu.Lock()
	defer svc.locksMu.Unlock()
	assert.Empty(t, svc.locks)
}

func TestOwnersAreIsolated(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Add(ctx, owner, "pikachu")
	require.NoError(t, err)

	assert.True(t, svc.Get(ctx, "room-1:user-2").IsEmpty())
}

func TestRemoveByNameOrNumber(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, _ = svc.Add(ctx, owner, "pikachu")
	_, _, _ = svc.Add(ctx, owner, "squirtle")

	roster, removed, err := svc.Remove(ctx, owner, " PIKACHU ")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, roster.Count())
	assert.Nil(t, roster.Slots()[0], "removal leaves a gap")

	roster, removed, err = svc.Remove(ctx, owner, "7")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, roster.IsEmpty())

	_, removed, err = svc.Remove(ctx, owner, "mewtwo")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveByKoreanName(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, _ = svc.Add(ctx, owner, "pikachu")

	roster, removed, err := svc.Remove(ctx, owner, "피카츄")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, roster.IsEmpty())
}

func TestClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	count, err := svc.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, _, _ = svc.Add(ctx, owner, "pikachu")
	_, _, _ = svc.Add(ctx, owner, "squirtle")

	count, err = svc.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, svc.Get(ctx, owner).IsEmpty())
}

func TestLoadFailureDegradesReadsAndBlocksWrites(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	store.loadErr = stdErrors.New("connection refused")

	assert.True(t, svc.Get(ctx, owner).IsEmpty())
	report := svc.Analyze(ctx, owner)
	assert.True(t, report.Empty)

	_, _, err := svc.Add(ctx, owner, "pikachu")
	var svcErr *errors.ServiceError
	require.True(t, stdErrors.As(err, &svcErr))
	assert.Equal(t, "add", svcErr.Operation)
	assert.Zero(t, store.saves)
}

func TestSaveFailureKeepsPreviousSnapshot(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	store.saveErr = stdErrors.New("disk full")

	roster, _, err := svc.Add(ctx, owner, "pikachu")
	var svcErr *errors.ServiceError
	require.True(t, stdErrors.As(err, &svcErr))
	assert.True(t, roster.IsEmpty())
}

func TestAnalyzeUsesStoredRoster(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _, _ = svc.Add(ctx, owner, "squirtle")

	report := svc.Analyze(ctx, owner)
	require.False(t, report.Empty)
	assert.Equal(t, 1, report.Size)
	assert.Equal(t, []domain.ElementalType{domain.TypeWater}, report.UniqueTypes)
}
