package service_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"lostfound/internal/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) GetByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) GetAdmin(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) MarkVerified(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, it *domain.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockItemRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(*domain.Item)
	return it, args.Error(1)
}

func (m *MockItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]*domain.Item, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]*domain.Item)
	return items, args.Error(1)
}

func (m *MockItemRepo) Approve(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepo) Claim(ctx context.Context, id, userID int64) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockItemRepo) Unclaim(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepo) SetStatus(ctx context.Context, id int64, status domain.ItemStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockItemRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockThreadRepo struct {
	mock.Mock
}

func (m *MockThreadRepo) Upsert(ctx context.Context, t *domain.Thread) (*domain.Thread, error) {
	args := m.Called(ctx, t)
	th, _ := args.Get(0).(*domain.Thread)
	return th, args.Error(1)
}

func (m *MockThreadRepo) GetByItem(ctx context.Context, itemID int64) (*domain.Thread, error) {
	args := m.Called(ctx, itemID)
	th, _ := args.Get(0).(*domain.Thread)
	return th, args.Error(1)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepo) ListForThread(ctx context.Context, threadID int64) ([]*domain.Message, error) {
	args := m.Called(ctx, threadID)
	msgs, _ := args.Get(0).([]*domain.Message)
	return msgs, args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Save(r io.Reader, origName string) (string, error) {
	args := m.Called(r, origName)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Path(filename string) (string, error) {
	args := m.Called(filename)
	return args.String(0), args.Error(1)
}

// recordingHub captures broadcast calls for assertions.
type recordingHub struct {
	userIDs  [][]int64
	payloads []any
}

func (h *recordingHub) BroadcastToUsers(userIDs []int64, payload any) {
	h.userIDs = append(h.userIDs, userIDs)
	h.payloads = append(h.payloads, payload)
}
