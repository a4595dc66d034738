package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"lostfound/internal/domain"
)

type ThreadRepo struct {
	db *sql.DB
}

func NewThreadRepo(db *sql.DB) *ThreadRepo {
	return &ThreadRepo{db: db}
}

var _ domain.ThreadRepository = (*ThreadRepo)(nil)

// Upsert inserts the item's thread or, when one already exists,
// refreshes its claimant so the row always reflects the item's current
// claim. The UNIQUE constraint on item_id makes the insert race-safe.
func (r *ThreadRepo) Upsert(ctx context.Context, t *domain.Thread) (*domain.Thread, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO threads (item_id, creator_id, claimer_id)
		VALUES (?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET claimer_id = excluded.claimer_id
	`, t.ItemID, t.CreatorID, t.ClaimerID)
	if err != nil {
		return nil, fmt.Errorf("insert thread: %w", err)
	}
	existing, err := r.GetByItem(ctx, t.ItemID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("thread for item %d missing after insert", t.ItemID)
	}
	return existing, nil
}

func (r *ThreadRepo) GetByItem(ctx context.Context, itemID int64) (*domain.Thread, error) {
	t := &domain.Thread{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, creator_id, claimer_id, created_at
		FROM threads WHERE item_id = ?
	`, itemID).Scan(&t.ID, &t.ItemID, &t.CreatorID, &t.ClaimerID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return t, nil
}
