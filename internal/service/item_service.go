package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"

	"lostfound/internal/authz"
	"lostfound/internal/domain"
	"lostfound/internal/imaging"
)

// ItemService implements the item lifecycle: create, approve, claim,
// unclaim, resolve, delete, and the listing views.
type ItemService struct {
	items   domain.ItemRepository
	users   domain.UserRepository
	threads domain.ThreadRepository
}

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	threads domain.ThreadRepository,
) *ItemService {
	return &ItemService{
		items:   items,
		users:   users,
		threads: threads,
	}
}

type ItemCreateInput struct {
	Title       string
	Description string
	Location    string
	Status      string
	Image       io.Reader // optional
}

// Create posts a new item, pending approval. The caller must hold a
// verified account. An optional photo is validated, downscaled, and
// re-encoded before storage.
func (s *ItemService) Create(ctx context.Context, caller *domain.User, in ItemCreateInput) (*domain.Item, error) {
	if err := authz.CanCreateItem(caller); err != nil {
		return nil, err
	}
	if in.Title == "" || in.Description == "" || in.Location == "" {
		return nil, domain.ErrInvalidInput
	}

	status := domain.ItemStatus(in.Status)
	if in.Status == "" {
		status = domain.StatusLost
	}
	if !status.Valid() || status == domain.StatusClaimed {
		return nil, domain.ErrInvalidInput
	}

	it := &domain.Item{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Status:      status,
		CreatedBy:   caller.ID,
	}

	if in.Image != nil {
		processed, err := imaging.Process(in.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		it.Image = processed.Data
		it.ImageContentType = processed.MIME
	}

	if err := s.items.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Get returns a single item.
func (s *ItemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

// Approve flips the approval flag. Admin only.
func (s *ItemService) Approve(ctx context.Context, caller *domain.User, id int64) (*domain.Item, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.items.Approve(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Claim transitions an unclaimed item to claimed for the caller and
// creates or refreshes the item's chat thread for {creator, claimant}.
// The transition is a single conditional update: of two concurrent
// claims exactly one succeeds, the other gets ErrConflict. A thread
// failure does not roll the claim back; it is logged and the thread is
// materialized on first chat access.
func (s *ItemService) Claim(ctx context.Context, caller *domain.User, id int64) (*domain.Item, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := s.items.Claim(ctx, id, caller.ID); err != nil {
		return nil, err
	}

	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.threads.Upsert(ctx, &domain.Thread{
		ItemID:    it.ID,
		CreatorID: it.CreatedBy,
		ClaimerID: caller.ID,
	}); err != nil {
		log.Printf("creating thread for item %d: %v", it.ID, err)
	}

	return it, nil
}

// Unclaim resets an item to found/unclaimed, whatever state it is in.
// Admin only.
func (s *ItemService) Unclaim(ctx context.Context, caller *domain.User, id int64) error {
	if err := authz.RequireAdmin(caller); err != nil {
		return err
	}
	return s.items.Unclaim(ctx, id)
}

// Resolve closes out a claimed item. Admin only; only the two terminal
// states are accepted.
func (s *ItemService) Resolve(ctx context.Context, caller *domain.User, id int64, status domain.ItemStatus) (*domain.Item, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if status != domain.StatusReturned && status != domain.StatusClosed {
		return nil, domain.ErrInvalidInput
	}
	if err := s.items.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetStatus sets any valid status, including re-opening a terminal
// state. Admin only. The claimed state can only be reached via Claim.
func (s *ItemService) SetStatus(ctx context.Context, caller *domain.User, id int64, status domain.ItemStatus) (*domain.Item, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if !status.Valid() || status == domain.StatusClaimed {
		return nil, domain.ErrInvalidInput
	}
	if err := s.items.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an item. Creator only, unconditional.
func (s *ItemService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	it, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteItem(caller, it); err != nil {
		return err
	}
	return s.items.Delete(ctx, id)
}

// PublicFeed lists approved items that are still active.
func (s *ItemService) PublicFeed(ctx context.Context) ([]*domain.Item, error) {
	approved := true
	return s.items.List(ctx, domain.ItemFilter{Approved: &approved, ActiveOnly: true})
}

// UnapprovedQueue lists items awaiting approval. Admin only.
func (s *ItemService) UnapprovedQueue(ctx context.Context, caller *domain.User) ([]*domain.Item, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	approved := false
	return s.items.List(ctx, domain.ItemFilter{Approved: &approved})
}

// ApprovedList lists all approved items, including resolved ones, for
// the admin manage view. Admin only.
func (s *ItemService) ApprovedList(ctx context.Context, caller *domain.User) ([]*domain.Item, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	approved := true
	return s.items.List(ctx, domain.ItemFilter{Approved: &approved})
}

// MyItems lists the caller's own postings.
func (s *ItemService) MyItems(ctx context.Context, caller *domain.User) ([]*domain.Item, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.items.List(ctx, domain.ItemFilter{CreatedBy: &caller.ID})
}

// ItemResponse is the API shape for an item: the stored image comes
// back as a data URL and the claimant is resolved to a username.
type ItemResponse struct {
	ID                int64             `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Location          string            `json:"location"`
	Status            domain.ItemStatus `json:"status"`
	ImageURL          *string           `json:"image_url"`
	CreatedBy         int64             `json:"created_by"`
	IsApproved        bool              `json:"is_approved"`
	IsClaimed         bool              `json:"is_claimed"`
	ClaimedBy         *int64            `json:"claimed_by,omitempty"`
	ClaimedByUsername string            `json:"claimed_by_username,omitempty"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
}

// ToResponse converts an item into its API shape.
func (s *ItemService) ToResponse(ctx context.Context, it *domain.Item) *ItemResponse {
	resp := &ItemResponse{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Location:    it.Location,
		Status:      it.Status,
		CreatedBy:   it.CreatedBy,
		IsApproved:  it.IsApproved,
		IsClaimed:   it.IsClaimed,
		ClaimedBy:   it.ClaimedBy,
		CreatedAt:   it.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   it.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(it.Image) > 0 && it.ImageContentType != "" {
		url := fmt.Sprintf("data:%s;base64,%s", it.ImageContentType, base64.StdEncoding.EncodeToString(it.Image))
		resp.ImageURL = &url
	}
	if it.ClaimedBy != nil {
		if u, err := s.users.GetByID(ctx, *it.ClaimedBy); err == nil && u != nil {
			resp.ClaimedByUsername = u.Username
		}
	}
	return resp
}

// ToResponses converts a slice of items into API shapes.
func (s *ItemService) ToResponses(ctx context.Context, items []*domain.Item) []*ItemResponse {
	res := make([]*ItemResponse, 0, len(items))
	for _, it := range items {
		res = append(res, s.ToResponse(ctx, it))
	}
	return res
}
