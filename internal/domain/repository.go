package domain

import "context"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerifyToken(ctx context.Context, token string) (*User, error)
	GetAdmin(ctx context.Context) (*User, error)
	MarkVerified(ctx context.Context, id int64) error
}

// ItemFilter selects a subset of items for listing operations.
type ItemFilter struct {
	Approved  *bool
	CreatedBy *int64
	Status    *ItemStatus
	// ActiveOnly excludes terminal states (returned, closed).
	ActiveOnly bool
}

// ItemRepository defines persistence operations for items. All state
// transitions are single conditional updates: the precondition is part
// of the statement, so two racing callers cannot both succeed.
type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, f ItemFilter) ([]*Item, error)
	// Approve flips is_approved. Returns ErrNotFound if no such item.
	Approve(ctx context.Context, id int64) error
	// Claim transitions the item to claimed for userID, guarded by
	// status != claimed. Returns ErrConflict if already claimed,
	// ErrNotFound if the item does not exist.
	Claim(ctx context.Context, id, userID int64) error
	// Unclaim unconditionally resets the item to found/unclaimed.
	Unclaim(ctx context.Context, id int64) error
	// SetStatus sets an arbitrary valid status.
	SetStatus(ctx context.Context, id int64, status ItemStatus) error
	Delete(ctx context.Context, id int64) error
}

// ThreadRepository defines persistence operations for chat threads.
type ThreadRepository interface {
	// Upsert creates the item's thread on first claim and refreshes
	// the stored claimant on later ones, returning the current row.
	Upsert(ctx context.Context, t *Thread) (*Thread, error)
	GetByItem(ctx context.Context, itemID int64) (*Thread, error)
}

// MessageRepository defines persistence operations for messages. The
// log is append-only: no update or delete operations exist.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListForThread(ctx context.Context, threadID int64) ([]*Message, error)
}
