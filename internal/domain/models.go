package domain

import "time"

// ItemStatus is the closed set of lifecycle states an item can be in.
type ItemStatus string

const (
	StatusLost     ItemStatus = "lost"
	StatusFound    ItemStatus = "found"
	StatusClaimed  ItemStatus = "claimed"
	StatusReturned ItemStatus = "returned"
	StatusClosed   ItemStatus = "closed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusLost, StatusFound, StatusClaimed, StatusReturned, StatusClosed:
		return true
	}
	return false
}

// Terminal reports whether an item in this state is excluded from the
// public feed.
func (s ItemStatus) Terminal() bool {
	return s == StatusReturned || s == StatusClosed
}

// User represents a registered account. Exactly one user holds the
// admin flag; it is seeded at startup and never created via signup.
type User struct {
	ID                int64      `db:"id" json:"id"`
	Username          string     `db:"username" json:"username"`
	Email             string     `db:"email" json:"email"`
	HashedPassword    string     `db:"hashed_password" json:"-"`
	IsAdmin           bool       `db:"is_admin" json:"is_admin"`
	IsVerified        bool       `db:"is_verified" json:"is_verified"`
	VerifyToken       *string    `db:"verify_token" json:"-"`
	VerifyTokenExpiry *time.Time `db:"verify_token_expiry" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// Item is a lost/found posting with an approval and claim lifecycle.
//
// Invariant maintained by the store: IsClaimed is true iff ClaimedBy
// is non-nil iff Status is "claimed".
type Item struct {
	ID               int64      `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Location         string     `db:"location" json:"location"`
	Status           ItemStatus `db:"status" json:"status"`
	Image            []byte     `db:"image" json:"-"`
	ImageContentType string     `db:"image_content_type" json:"-"`
	CreatedBy        int64      `db:"created_by" json:"created_by"`
	IsApproved       bool       `db:"is_approved" json:"is_approved"`
	IsClaimed        bool       `db:"is_claimed" json:"is_claimed"`
	ClaimedBy        *int64     `db:"claimed_by" json:"claimed_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Thread is the per-item message channel created lazily the first time
// an item is claimed. It tracks the item's creator and its current
// claimant; the claimant is refreshed when an unclaimed item is
// claimed again. Access is decided from the item, not from this row.
type Thread struct {
	ID        int64     `db:"id"`
	ItemID    int64     `db:"item_id"`
	CreatorID int64     `db:"creator_id"`
	ClaimerID int64     `db:"claimer_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Message is a single chat entry. Messages are immutable once created
// and never edited or deleted.
type Message struct {
	ID            int64     `db:"id"`
	ThreadID      int64     `db:"thread_id"`
	SenderID      int64     `db:"sender_id"`
	Text          string    `db:"text"` // encrypted at rest
	AttachmentURL *string   `db:"attachment_url"`
	CreatedAt     time.Time `db:"created_at"`
}
