package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"lostfound/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, email, hashed_password, is_admin, is_verified, verify_token, verify_token_expiry, created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, hashed_password, is_admin, is_verified, verify_token, verify_token_expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.Username, u.Email, u.HashedPassword, u.IsAdmin, u.IsVerified, u.VerifyToken, u.VerifyTokenExpiry)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByVerifyToken looks up the account holding the token. Expiry is
// enforced by the caller on the parsed time, not on the stored text,
// so the check is independent of the server's time zone.
func (r *UserRepo) GetByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE verify_token = ?`, token)
}

// GetAdmin returns the single admin identity.
func (r *UserRepo) GetAdmin(ctx context.Context) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin = TRUE LIMIT 1`)
}

// MarkVerified flips the verification flag and clears the token.
func (r *UserRepo) MarkVerified(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_verified = TRUE, verify_token = NULL, verify_token_expiry = NULL
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.HashedPassword,
		&u.IsAdmin,
		&u.IsVerified,
		&u.VerifyToken,
		&u.VerifyTokenExpiry,
		&u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
