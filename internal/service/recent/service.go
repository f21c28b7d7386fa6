package recent

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

// ListStore is the subset of the Redis cache used for the recent list.
type ListStore interface {
	PushCapped(ctx context.Context, key, value string, limit int) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Del(ctx context.Context, key string) error
}

// Entry is one recently viewed creature.
type Entry struct {
	ID   int
	Name string
}

// Service tracks the creatures each owner looked up most recently.
// Failures are logged and swallowed; the list is a convenience only.
type Service struct {
	store  ListStore
	limit  int
	logger *zap.Logger
}

func NewService(store ListStore, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		limit:  constants.TeamConfig.RecentLimit,
		logger: util.LoggerOrNop(logger),
	}
}

// Record moves c to the front of the owner's list.
func (s *Service) Record(ctx context.Context, owner string, c *domain.Creature) {
	if c == nil {
		return
	}
	value := encodeEntry(Entry{ID: c.ID, Name: c.NormalizedName()})
	if err := s.store.PushCapped(ctx, s.key(owner), value, s.limit); err != nil {
		s.logger.Warn("Failed to record recent view",
			zap.String("owner", owner),
			zap.String("name", c.Name),
			zap.Error(err),
		)
	}
}

// List returns the recent entries, newest first.
func (s *Service) List(ctx context.Context, owner string) []Entry {
	values, err := s.store.LRange(ctx, s.key(owner), 0, int64(s.limit-1))
	if err != nil {
		s.logger.Warn("Failed to read recent views", zap.String("owner", owner), zap.Error(err))
		return []Entry{}
	}

	entries := make([]Entry, 0, len(values))
	seen := make(map[int]struct{}, len(values))
	for _, v := range values {
		entry, ok := decodeEntry(v)
		if !ok {
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		entries = append(entries, entry)
	}
	return entries
}

func (s *Service) Clear(ctx context.Context, owner string) {
	if err := s.store.Del(ctx, s.key(owner)); err != nil {
		s.logger.Warn("Failed to clear recent views", zap.String("owner", owner), zap.Error(err))
	}
}

func (s *Service) key(owner string) string {
	return constants.CacheKeys.RecentPrefix + owner
}

func encodeEntry(e Entry) string {
	return strconv.Itoa(e.ID) + ":" + e.Name
}

func decodeEntry(v string) (Entry, bool) {
	idPart, name, ok := strings.Cut(v, ":")
	if !ok || name == "" {
		return Entry{}, false
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return Entry{}, false
	}
	return Entry{ID: id, Name: name}, true
}
