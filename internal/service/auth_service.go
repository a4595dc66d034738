package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"lostfound/internal/domain"
	"lostfound/internal/mailer"
	"lostfound/internal/security"
)

// VerifyTokenTTL is how long an email verification link stays valid.
const VerifyTokenTTL = 24 * time.Hour

// AuthService handles signup, email verification, login, and logout.
type AuthService struct {
	users   domain.UserRepository
	tokens  *security.TokenService
	hash    *security.PasswordHasher
	mail    mailer.Mailer
	baseURL string
}

func NewAuthService(
	users domain.UserRepository,
	tokens *security.TokenService,
	hash *security.PasswordHasher,
	mail mailer.Mailer,
	baseURL string,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		hash:    hash,
		mail:    mail,
		baseURL: baseURL,
	}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the signed session token and the redirect target
// the frontend expects (admins land on the admin queue).
type LoginResult struct {
	AccessToken string
	RedirectTo  string
	User        *domain.User
}

// Signup creates an unverified account and fires the verification
// email. Mail delivery is best-effort: a failure is logged and the
// signup still succeeds.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, domain.ErrConflict
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := security.GenerateVerifyToken()
	if err != nil {
		return nil, fmt.Errorf("generate verify token: %w", err)
	}
	expiry := time.Now().UTC().Add(VerifyTokenTTL)

	user := &domain.User{
		Username:          in.Username,
		Email:             in.Email,
		HashedPassword:    hashed,
		IsAdmin:           false,
		IsVerified:        false,
		VerifyToken:       &token,
		VerifyTokenExpiry: &expiry,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	go s.sendVerificationEmail(user.Username, user.Email, token)

	return user, nil
}

func (s *AuthService) sendVerificationEmail(username, email, token string) {
	verifyURL := fmt.Sprintf("%s/api/users/verify?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		`<p>Hello %s,</p><p>Click <a href="%s">this link</a> to verify your email. It expires in 24 hours.</p>`,
		username, verifyURL,
	)
	if err := s.mail.Send(email, "Verify your email", body); err != nil {
		log.Printf("verification mail to %s failed: %v", email, err)
	}
}

// Verify marks the account behind a valid, unexpired token as verified
// and clears the token.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidInput
	}
	user, err := s.users.GetByVerifyToken(ctx, token)
	if err != nil {
		return fmt.Errorf("lookup verify token: %w", err)
	}
	if user == nil {
		return domain.ErrInvalidInput
	}
	if user.VerifyTokenExpiry == nil || time.Now().After(*user.VerifyTokenExpiry) {
		return domain.ErrInvalidInput
	}
	return s.users.MarkVerified(ctx, user.ID)
}

// Login checks credentials and issues a session token. Verification is
// not required to log in.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.tokens.CreateForUser(user)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	redirect := "/add_item"
	if user.IsAdmin {
		redirect = "/admin"
	}
	return &LoginResult{
		AccessToken: token,
		RedirectTo:  redirect,
		User:        user,
	}, nil
}

// GetUser loads the identity behind a session, for /me.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
