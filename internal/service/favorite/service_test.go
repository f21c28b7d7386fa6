package favorite

import (
	"context"
	stdErrors "errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

type fakeSetStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

func newFakeSetStore() *fakeSetStore {
	return &fakeSetStore{sets: map[string]map[string]struct{}{}}
}

func (f *fakeSetStore) SAdd(_ context.Context, key string, members []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[key]
	if !ok {
		set = map[string]struct{}{}
		f.sets[key] = set
	}
	var added int64
	for _, m := range members {
		if _, ok := set[m]; !ok {
			set[m] = struct{}{}
			added++
		}
	}
	return added, nil
}

func (f *fakeSetStore) SRem(_ context.Context, key string, members []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, m := range members {
		if _, ok := f.sets[key][m]; ok {
			delete(f.sets[key], m)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeSetStore) SMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func (f *fakeSetStore) SIsMember(_ context.Context, key, member string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sets[key][member]
	return ok, nil
}

func (f *fakeSetStore) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sets, key)
	return nil
}

type fakeProvider struct {
	creatures map[string]*domain.Creature
	failing   map[string]bool
}

func (p *fakeProvider) GetCreature(_ context.Context, query string) (*domain.Creature, error) {
	if p.failing[query] {
		return nil, stdErrors.New("upstream failure")
	}
	return p.creatures[query], nil
}

func newTestService() (*Service, *fakeSetStore, *fakeProvider) {
	store := newFakeSetStore()
	provider := &fakeProvider{
		creatures: map[string]*domain.Creature{
			"pikachu":   {ID: 25, Name: "pikachu"},
			"bulbasaur": {ID: 1, Name: "bulbasaur"},
			"eevee":     {ID: 133, Name: "eevee"},
			"25":        {ID: 25, Name: "pikachu"},
		},
		failing: map[string]bool{},
	}
	return NewService(store, provider, zap.NewNop()), store, provider
}

const owner = "room:user"

func TestToggleAddsThenRemoves(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	c, added, err := svc.Toggle(ctx, owner, "25")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "pikachu", c.Name)

	fav, err := svc.IsFavorite(ctx, owner, "Pikachu")
	require.NoError(t, err)
	assert.True(t, fav)

	_, added, err = svc.Toggle(ctx, owner, "pikachu")
	require.NoError(t, err)
	assert.False(t, added)

	names, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestToggleUnknownCreature(t *testing.T) {
	svc, _, _ := newTestService()
	_, _, err := svc.Toggle(context.Background(), owner, "missingno")
	var notFound *errors.NotFoundError
	assert.True(t, stdErrors.As(err, &notFound))
}

func TestListIsSortedAndClearCounts(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	for _, name := range []string{"pikachu", "eevee", "bulbasaur"} {
		_, _, err := svc.Toggle(ctx, owner, name)
		require.NoError(t, err)
	}

	names, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"bulbasaur", "eevee", "pikachu"}, names)

	count, err := svc.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = svc.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestResolveSkipsFailures(t *testing.T) {
	svc, _, provider := newTestService()
	ctx := context.Background()
	for _, name := range []string{"pikachu", "eevee", "bulbasaur"} {
		_, _, err := svc.Toggle(ctx, owner, name)
		require.NoError(t, err)
	}
	provider.failing["eevee"] = true

	creatures, err := svc.Resolve(ctx, owner)
	require.NoError(t, err)
	require.Len(t, creatures, 2)
	assert.Equal(t, "bulbasaur", creatures[0].Name)
	assert.Equal(t, "pikachu", creatures[1].Name)
}

func TestResolveEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	creatures, err := svc.Resolve(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, creatures)
}
