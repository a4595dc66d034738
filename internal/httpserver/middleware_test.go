package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/domain"
	"lostfound/internal/security"
)

// stubUserRepo serves a fixed set of users by ID.
type stubUserRepo struct {
	users map[int64]*domain.User
}

func (s *stubUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users[id], nil
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetAdmin(ctx context.Context) (*domain.User, error) { return nil, nil }
func (s *stubUserRepo) MarkVerified(ctx context.Context, id int64) error   { return nil }

const testCookieName = "token"

func sessionHandler(t *testing.T, repo *stubUserRepo) http.Handler {
	t.Helper()
	tokens := security.NewTokenService("test-secret", time.Hour)
	mw := SessionMiddleware(tokens, testCookieName, repo)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := CurrentUser(r); u != nil {
			w.Header().Set("X-User", u.Username)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSessionMiddleware(t *testing.T) {
	alice := &domain.User{ID: 1, Username: "alice"}
	repo := &stubUserRepo{users: map[int64]*domain.User{1: alice}}
	tokens := security.NewTokenService("test-secret", time.Hour)
	h := sessionHandler(t, repo)

	// Valid cookie attaches the user.
	token, err := tokens.CreateForUser(alice)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "alice", rec.Header().Get("X-User"))

	// No cookie: anonymous, not an error.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User"))

	// Garbage cookie: anonymous.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("X-User"))

	// Valid token for a deleted account: anonymous.
	ghostToken, err := tokens.CreateForUser(&domain.User{ID: 99, Username: "ghost"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: ghostToken})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("X-User"))

	// Token signed with another secret: anonymous.
	badToken, err := security.NewTokenService("other-secret", time.Hour).CreateForUser(alice)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: badToken})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("X-User"))
}

func TestRequireUser(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireUser(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), &domain.User{ID: 1}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequireAdmin(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), &domain.User{ID: 1}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), &domain.User{ID: 2, IsAdmin: true}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)
		assert.Equal(t, tc.code, rec.Code, "%v", tc.err)
	}
}
