package favorite

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

// SetStore is the subset of the Redis cache used for favorite sets.
type SetStore interface {
	SAdd(ctx context.Context, key string, members []string) (int64, error)
	SRem(ctx context.Context, key string, members []string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	Del(ctx context.Context, key string) error
}

// CreatureProvider resolves names to creatures; (nil, nil) means unknown.
type CreatureProvider interface {
	GetCreature(ctx context.Context, nameOrID string) (*domain.Creature, error)
}

// Service keeps a favorite set per owner.
type Service struct {
	store       SetStore
	provider    CreatureProvider
	concurrency int
	logger      *zap.Logger
}

func NewService(store SetStore, provider CreatureProvider, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		provider:    provider,
		concurrency: constants.TeamConfig.ResolveParallel,
		logger:      util.LoggerOrNop(logger),
	}
}

// Toggle adds the creature to the owner's favorites, or removes it when it
// is already there. added reports which of the two happened.
func (s *Service) Toggle(ctx context.Context, owner, query string) (creature *domain.Creature, added bool, err error) {
	creature, err = s.provider.GetCreature(ctx, query)
	if err != nil {
		return nil, false, err
	}
	if creature == nil {
		return nil, false, errors.NewNotFoundError("pokemon", query)
	}

	key := s.key(owner)
	name := creature.NormalizedName()

	exists, err := s.store.SIsMember(ctx, key, name)
	if err != nil {
		return creature, false, err
	}

	if exists {
		if _, err := s.store.SRem(ctx, key, []string{name}); err != nil {
			return creature, false, err
		}
		s.logger.Info("Favorite removed", zap.String("owner", owner), zap.String("name", name))
		return creature, false, nil
	}

	if _, err := s.store.SAdd(ctx, key, []string{name}); err != nil {
		return creature, false, err
	}
	s.logger.Info("Favorite added", zap.String("owner", owner), zap.String("name", name))
	return creature, true, nil
}

// List returns favorite names sorted alphabetically.
func (s *Service) List(ctx context.Context, owner string) ([]string, error) {
	names, err := s.store.SMembers(ctx, s.key(owner))
	if err != nil {
		s.logger.Error("Failed to list favorites", zap.String("owner", owner), zap.Error(err))
		return []string{}, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *Service) IsFavorite(ctx context.Context, owner, name string) (bool, error) {
	return s.store.SIsMember(ctx, s.key(owner), util.NormalizeQuery(name))
}

// Clear removes every favorite and returns how many there were.
func (s *Service) Clear(ctx context.Context, owner string) (int, error) {
	names, err := s.List(ctx, owner)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}
	if err := s.store.Del(ctx, s.key(owner)); err != nil {
		return 0, err
	}
	s.logger.Info("Favorites cleared", zap.String("owner", owner), zap.Int("count", len(names)))
	return len(names), nil
}

// Resolve fetches every favorite creature concurrently, in name order.
// Names that fail to resolve are logged and skipped.
func (s *Service) Resolve(ctx context.Context, owner string) ([]*domain.Creature, error) {
	names, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []*domain.Creature{}, nil
	}

	p := pool.New().WithMaxGoroutines(s.concurrency)
	results := make([]*domain.Creature, len(names))
	resultsMu := sync.Mutex{}

	for idx, name := range names {
		idx, name := idx, name
		p.Go(func() {
			creature, err := s.provider.GetCreature(ctx, name)
			if err != nil {
				s.logger.Warn("Failed to resolve favorite", zap.String("name", name), zap.Error(err))
				return
			}
			resultsMu.Lock()
			results[idx] = creature
			resultsMu.Unlock()
		})
	}

	p.Wait()

	creatures := make([]*domain.Creature, 0, len(results))
	for _, c := range results {
		if c != nil {
			creatures = append(creatures, c)
		}
	}
	return creatures, nil
}

func (s *Service) key(owner string) string {
	return constants.CacheKeys.FavoritesPrefix + owner
}
