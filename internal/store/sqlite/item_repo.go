package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"lostfound/internal/domain"
)

type ItemRepo struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

var _ domain.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, title, description, location, status, image, image_content_type,
	created_by, is_approved, is_claimed, claimed_by, created_at, updated_at`

func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO items (title, description, location, status, image, image_content_type, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, it.Title, it.Description, it.Location, string(it.Status), it.Image, nullIfEmpty(it.ImageContentType), it.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	it.ID = id
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]*domain.Item, error) {
	var conds []string
	var args []any

	if f.Approved != nil {
		conds = append(conds, "is_approved = ?")
		args = append(args, *f.Approved)
	}
	if f.CreatedBy != nil {
		conds = append(conds, "created_by = ?")
		args = append(args, *f.CreatedBy)
	}
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.ActiveOnly {
		conds = append(conds, "status NOT IN ('returned', 'closed')")
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *ItemRepo) Approve(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE items SET is_approved = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("approve item: %w", err)
	}
	return checkFound(res)
}

// Claim is the claimed-state transition collapsed into one conditional
// update: the status precondition is part of the statement, so of two
// racing claims exactly one matches.
func (r *ItemRepo) Claim(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET status = 'claimed', is_claimed = TRUE, claimed_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'claimed'
	`, userID, id)
	if err != nil {
		return fmt.Errorf("claim item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	// No row matched: either the item is gone or it is already claimed.
	it, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// Unclaim unconditionally resets the claim state, whatever the current
// status is.
func (r *ItemRepo) Unclaim(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET status = 'found', is_claimed = FALSE, claimed_by = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("unclaim item: %w", err)
	}
	return checkFound(res)
}

// SetStatus sets an arbitrary status. Moving away from claimed clears
// the claim fields in the same statement so the claim invariant holds.
func (r *ItemRepo) SetStatus(ctx context.Context, id int64, status domain.ItemStatus) error {
	if status == domain.StatusClaimed {
		// Only meaningful through Claim, which records the claimant.
		return domain.ErrInvalidInput
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET status = ?, is_claimed = FALSE, claimed_by = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("set item status: %w", err)
	}
	return checkFound(res)
}

func (r *ItemRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return checkFound(res)
}

func checkFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	it := &domain.Item{}
	var status string
	var contentType sql.NullString
	if err := row.Scan(
		&it.ID,
		&it.Title,
		&it.Description,
		&it.Location,
		&status,
		&it.Image,
		&contentType,
		&it.CreatedBy,
		&it.IsApproved,
		&it.IsClaimed,
		&it.ClaimedBy,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.Status = domain.ItemStatus(status)
	it.ImageContentType = contentType.String
	return it, nil
}
