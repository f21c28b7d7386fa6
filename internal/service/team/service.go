package team

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/analysis"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

// Store loads and saves roster slots per owner.
type Store interface {
	Load(ctx context.Context, ownerKey string) ([]*domain.Creature, error)
	Save(ctx context.Context, ownerKey string, slots []*domain.Creature) error
}

// CreatureProvider resolves a user query to a creature; (nil, nil) means unknown.
type CreatureProvider interface {
	GetCreature(ctx context.Context, nameOrID string) (*domain.Creature, error)
}

// OwnerKey identifies one user's team inside one chat room.
func OwnerKey(roomID, userID string) string {
	return roomID + ":" + userID
}

// Service serializes roster mutations per owner.
type Service struct {
	store    Store
	provider CreatureProvider
	logger   *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*ownerLock
}

// ownerLock is dropped from the map once no caller holds or waits for it.
type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(store Store, provider CreatureProvider, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		provider: provider,
		logger:   util.LoggerOrNop(logger),
		locks:    make(map[string]*ownerLock),
	}
}

// Get returns the owner's current roster. Storage failures yield an empty roster.
func (s *Service) Get(ctx context.Context, owner string) domain.Roster {
	unlock := s.lock(owner)
	defer unlock()

	roster, err := s.load(ctx, owner)
	if err != nil {
		s.logger.Error("Failed to load roster, using empty team",
			zap.String("owner", owner),
			zap.Error(err),
		)
		return domain.Roster{}
	}
	return roster
}

// Add resolves query and appends the creature to the first free slot.
func (s *Service) Add(ctx context.Context, owner, query string) (domain.Roster, *domain.Creature, error) {
	creature, err := s.provider.GetCreature(ctx, query)
	if err != nil {
		return domain.Roster{}, nil, err
	}
	if creature == nil {
		return domain.Roster{}, nil, errors.NewNotFoundError("pokemon", query)
	}

	unlock := s.lock(owner)
	defer unlock()

	current, err := s.loadForUpdate(ctx, owner, "add")
	if err != nil {
		return domain.Roster{}, nil, err
	}

	next, err := current.Add(creature)
	if err != nil {
		return current, creature, err
	}

	if err := s.save(ctx, owner, next, "add"); err != nil {
		return current, creature, err
	}

	s.logger.Info("Team member added",
		zap.String("owner", owner),
		zap.String("name", creature.Name),
		zap.Int("size", next.Count()),
	)
	return next, creature, nil
}

// Remove drops the member named name. removed is false when no member matched.
func (s *Service) Remove(ctx context.Context, owner, name string) (roster domain.Roster, removed bool, err error) {
	unlock := s.lock(owner)
	defer unlock()

	current, err := s.loadForUpdate(ctx, owner, "remove")
	if err != nil {
		return domain.Roster{}, false, err
	}

	key := resolveMemberName(current, name)
	if key == "" {
		return current, false, nil
	}

	next := current.Remove(key)
	if err := s.save(ctx, owner, next, "remove"); err != nil {
		return current, false, err
	}

	s.logger.Info("Team member removed",
		zap.String("owner", owner),
		zap.String("name", key),
		zap.Int("size", next.Count()),
	)
	return next, true, nil
}

// Clear empties every slot and returns how many members were dropped.
func (s *Service) Clear(ctx context.Context, owner string) (int, error) {
	unlock := s.lock(owner)
	defer unlock()

	current, err := s.loadForUpdate(ctx, owner, "clear")
	if err != nil {
		return 0, err
	}

	count := current.Count()
	if count == 0 {
		return 0, nil
	}

	if err := s.save(ctx, owner, current.Clear(), "clear"); err != nil {
		return 0, err
	}

	s.logger.Info("Team cleared",
		zap.String("owner", owner),
		zap.Int("count", count),
	)
	return count, nil
}

// Analyze runs the full analysis over the owner's current roster.
func (s *Service) Analyze(ctx context.Context, owner string) *analysis.Report {
	return analysis.Analyze(s.Get(ctx, owner))
}

// resolveMemberName matches input against member names or national numbers.
func resolveMemberName(r domain.Roster, input string) string {
	if slug, ok := domain.SlugForKoreanName(input); ok {
		input = slug
	}
	key := util.NormalizeQuery(input)
	if key == "" {
		return ""
	}
	if r.Contains(key) {
		return key
	}
	if id, err := strconv.Atoi(key); err == nil {
		for _, c := range r.Members() {
			if c.ID == id {
				return c.NormalizedName()
			}
		}
	}
	return ""
}

func (s *Service) load(ctx context.Context, owner string) (domain.Roster, error) {
	slots, err := s.store.Load(ctx, owner)
	if err != nil {
		return domain.Roster{}, err
	}
	return domain.NewRoster(slots...), nil
}

func (s *Service) loadForUpdate(ctx context.Context, owner, op string) (domain.Roster, error) {
	roster, err := s.load(ctx, owner)
	if err != nil {
		s.logger.Error("Failed to load roster for update",
			zap.String("owner", owner),
			zap.String("operation", op),
			zap.Error(err),
		)
		return domain.Roster{}, errors.NewServiceError("failed to load team", "team", op, err)
	}
	return roster, nil
}

func (s *Service) save(ctx context.Context, owner string, roster domain.Roster, op string) error {
	if err := s.store.Save(ctx, owner, roster.Slots()); err != nil {
		s.logger.Error("Failed to save roster",
			zap.String("owner", owner),
			zap.String("operation", op),
			zap.Error(err),
		)
		return errors.NewServiceError("failed to save team", "team", op, err)
	}
	return nil
}

func (s *Service) lock(owner string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[owner]
	if !ok {
		l = &ownerLock{}
		s.locks[owner] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, owner)
		}
		s.locksMu.Unlock()
	}
}
