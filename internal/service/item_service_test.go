package service_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lostfound/internal/domain"
	"lostfound/internal/service"
)

var (
	verifiedUser = &domain.User{ID: 1, Username: "alice", IsVerified: true}
	otherUser    = &domain.User{ID: 2, Username: "bob", IsVerified: true}
	adminUser    = &domain.User{ID: 9, Username: "admin", IsAdmin: true, IsVerified: true}
	pendingUser  = &domain.User{ID: 3, Username: "newbie"}
)

func newItemService(items *MockItemRepo, users *MockUserRepo, threads *MockThreadRepo) *service.ItemService {
	if items == nil {
		items = new(MockItemRepo)
	}
	if users == nil {
		users = new(MockUserRepo)
	}
	if threads == nil {
		threads = new(MockThreadRepo)
	}
	return service.NewItemService(items, users, threads)
}

func TestItemCreate(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("Create", mock.Anything, mock.AnythingOfType("*domain.Item")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Item).ID = 10
		}).
		Return(nil)

	it, err := svc.Create(context.Background(), verifiedUser, service.ItemCreateInput{
		Title:       "Blue backpack",
		Description: "Found in room 204",
		Location:    "Library",
		Status:      "found",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), it.ID)
	assert.Equal(t, domain.StatusFound, it.Status)
	assert.Equal(t, verifiedUser.ID, it.CreatedBy)
	assert.False(t, it.IsApproved, "new items wait for approval")
}

func TestItemCreateDefaultsToLost(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("Create", mock.Anything, mock.AnythingOfType("*domain.Item")).Return(nil)

	it, err := svc.Create(context.Background(), verifiedUser, service.ItemCreateInput{
		Title:       "Keys",
		Description: "Ring with three keys",
		Location:    "Cafeteria",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLost, it.Status)
}

func TestItemCreateRejected(t *testing.T) {
	svc := newItemService(nil, nil, nil)
	ctx := context.Background()

	valid := service.ItemCreateInput{Title: "x", Description: "y", Location: "z"}

	_, err := svc.Create(ctx, nil, valid)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Create(ctx, pendingUser, valid)
	assert.ErrorIs(t, err, domain.ErrForbidden, "unverified accounts cannot post")

	_, err = svc.Create(ctx, verifiedUser, service.ItemCreateInput{Description: "y", Location: "z"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ctx, verifiedUser, service.ItemCreateInput{Title: "x", Description: "y", Location: "z", Status: "claimed"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "claimed is only reachable via claim")

	_, err = svc.Create(ctx, verifiedUser, service.ItemCreateInput{Title: "x", Description: "y", Location: "z", Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemCreateWithImage(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("Create", mock.Anything, mock.AnythingOfType("*domain.Item")).Return(nil)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	it, err := svc.Create(context.Background(), verifiedUser, service.ItemCreateInput{
		Title:       "Scarf",
		Description: "Red wool scarf",
		Location:    "Gym",
		Image:       &buf,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, it.Image)
	assert.Equal(t, "image/jpeg", it.ImageContentType)
}

func TestItemCreateBadImage(t *testing.T) {
	svc := newItemService(nil, nil, nil)

	_, err := svc.Create(context.Background(), verifiedUser, service.ItemCreateInput{
		Title:       "Scarf",
		Description: "Red wool scarf",
		Location:    "Gym",
		Image:       strings.NewReader("definitely not an image"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemApprove(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("Approve", mock.Anything, int64(5)).Return(nil)
	items.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Item{ID: 5, IsApproved: true}, nil)

	it, err := svc.Approve(context.Background(), adminUser, 5)
	require.NoError(t, err)
	assert.True(t, it.IsApproved)

	_, err = svc.Approve(context.Background(), verifiedUser, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestItemClaim(t *testing.T) {
	items := new(MockItemRepo)
	threads := new(MockThreadRepo)
	svc := newItemService(items, nil, threads)

	claimerID := otherUser.ID
	items.On("Claim", mock.Anything, int64(5), claimerID).Return(nil)
	items.On("GetByID", mock.Anything, int64(5)).Return(&domain.Item{
		ID:        5,
		CreatedBy: verifiedUser.ID,
		Status:    domain.StatusClaimed,
		IsClaimed: true,
		ClaimedBy: &claimerID,
	}, nil)
	threads.On("Upsert", mock.Anything, &domain.Thread{
		ItemID:    5,
		CreatorID: verifiedUser.ID,
		ClaimerID: claimerID,
	}).Return(&domain.Thread{ID: 1, ItemID: 5, CreatorID: verifiedUser.ID, ClaimerID: claimerID}, nil)

	it, err := svc.Claim(context.Background(), otherUser, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClaimed, it.Status)
	threads.AssertExpectations(t)
}

func TestItemClaimConflict(t *testing.T) {
	items := new(MockItemRepo)
	threads := new(MockThreadRepo)
	svc := newItemService(items, nil, threads)

	items.On("Claim", mock.Anything, int64(5), otherUser.ID).Return(domain.ErrConflict)

	_, err := svc.Claim(context.Background(), otherUser, 5)
	assert.ErrorIs(t, err, domain.ErrConflict)
	threads.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)

	_, err = svc.Claim(context.Background(), nil, 5)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestItemClaimSurvivesThreadFailure(t *testing.T) {
	items := new(MockItemRepo)
	threads := new(MockThreadRepo)
	svc := newItemService(items, nil, threads)

	claimerID := otherUser.ID
	items.On("Claim", mock.Anything, int64(5), claimerID).Return(nil)
	items.On("GetByID", mock.Anything, int64(5)).Return(&domain.Item{
		ID:        5,
		CreatedBy: verifiedUser.ID,
		Status:    domain.StatusClaimed,
		ClaimedBy: &claimerID,
	}, nil)
	threads.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Thread")).
		Return(nil, assert.AnError)

	// The claim stands even when thread creation fails; chat access
	// recreates the thread later.
	it, err := svc.Claim(context.Background(), otherUser, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), it.ID)
}

func TestItemUnclaim(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("Unclaim", mock.Anything, int64(5)).Return(nil)

	require.NoError(t, svc.Unclaim(context.Background(), adminUser, 5))
	assert.ErrorIs(t, svc.Unclaim(context.Background(), otherUser, 5), domain.ErrForbidden)
}

func TestItemResolve(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("SetStatus", mock.Anything, int64(5), domain.StatusReturned).Return(nil)
	items.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Item{ID: 5, Status: domain.StatusReturned}, nil)

	it, err := svc.Resolve(context.Background(), adminUser, 5, domain.StatusReturned)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturned, it.Status)

	// Resolution only accepts the two terminal states.
	_, err = svc.Resolve(context.Background(), adminUser, 5, domain.StatusFound)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Resolve(context.Background(), verifiedUser, 5, domain.StatusReturned)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestItemSetStatus(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("SetStatus", mock.Anything, int64(5), domain.StatusFound).Return(nil)
	items.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Item{ID: 5, Status: domain.StatusFound}, nil)

	it, err := svc.SetStatus(context.Background(), adminUser, 5, domain.StatusFound)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFound, it.Status)

	_, err = svc.SetStatus(context.Background(), adminUser, 5, domain.StatusClaimed)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.SetStatus(context.Background(), adminUser, 5, domain.ItemStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemDelete(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Item{ID: 5, CreatedBy: verifiedUser.ID}, nil)
	items.On("Delete", mock.Anything, int64(5)).Return(nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), otherUser, 5), domain.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), verifiedUser, 5))
}

func TestItemDeleteMissing(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)

	items.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), verifiedUser, 99), domain.ErrNotFound)
}

func TestItemListings(t *testing.T) {
	items := new(MockItemRepo)
	svc := newItemService(items, nil, nil)
	ctx := context.Background()

	items.On("List", mock.Anything, mock.MatchedBy(func(f domain.ItemFilter) bool {
		return f.Approved != nil && *f.Approved && f.ActiveOnly
	})).Return([]*domain.Item{{ID: 1}}, nil)

	feed, err := svc.PublicFeed(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	_, err = svc.UnapprovedQueue(ctx, verifiedUser)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ApprovedList(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.MyItems(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestItemToResponse(t *testing.T) {
	users := new(MockUserRepo)
	svc := newItemService(nil, users, nil)

	claimerID := otherUser.ID
	users.On("GetByID", mock.Anything, claimerID).Return(otherUser, nil)

	it := &domain.Item{
		ID:               5,
		Title:            "Wallet",
		Status:           domain.StatusClaimed,
		Image:            []byte{0xff, 0xd8, 0xff},
		ImageContentType: "image/jpeg",
		IsClaimed:        true,
		ClaimedBy:        &claimerID,
	}

	resp := svc.ToResponse(context.Background(), it)
	require.NotNil(t, resp.ImageURL)
	assert.True(t, strings.HasPrefix(*resp.ImageURL, "data:image/jpeg;base64,"))
	assert.Equal(t, "bob", resp.ClaimedByUsername)

	bare := svc.ToResponse(context.Background(), &domain.Item{ID: 6, Title: "Hat"})
	assert.Nil(t, bare.ImageURL)
	assert.Empty(t, bare.ClaimedByUsername)
}
