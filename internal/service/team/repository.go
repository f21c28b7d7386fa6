package team

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/database"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

// Repository persists rosters in the team_rosters table.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepository(postgres *database.PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		logger: util.LoggerOrNop(logger),
	}
}

// Load returns the stored slots for ownerKey, nil when nothing is stored.
// A row whose JSON cannot be decoded is treated as an empty roster.
func (r *Repository) Load(ctx context.Context, ownerKey string) ([]*domain.Creature, error) {
	query := `
		SELECT slots
		FROM team_rosters
		WHERE owner_key = $1
	`

	var slotsJSON []byte
	err := r.db.QueryRowContext(ctx, query, ownerKey).Scan(&slotsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}

	slots, err := decodeSlots(slotsJSON)
	if err != nil {
		r.logger.Warn("Corrupt roster payload, starting empty",
			zap.String("owner", ownerKey),
			zap.Error(err),
		)
		return nil, nil
	}
	return slots, nil
}

// Save upserts all slots for ownerKey, gaps included.
func (r *Repository) Save(ctx context.Context, ownerKey string, slots []*domain.Creature) error {
	payload, err := encodeSlots(slots)
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	query := `
		INSERT INTO team_rosters (owner_key, slots, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_key)
		DO UPDATE SET slots = EXCLUDED.slots, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, ownerKey, payload); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

func encodeSlots(slots []*domain.Creature) ([]byte, error) {
	if slots == nil {
		slots = []*domain.Creature{}
	}
	return json.Marshal(slots)
}

func decodeSlots(data []byte) ([]*domain.Creature, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var slots []*domain.Creature
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
