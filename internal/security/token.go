package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lostfound/internal/domain"
)

// SessionClaims is the signed payload carried by the session cookie.
type SessionClaims struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenService wraps JWT creation and validation for session cookies.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// TTL returns the configured token lifetime, used to set cookie expiry.
func (t *TokenService) TTL() time.Duration {
	return t.expiresIn
}

// CreateForUser creates a signed session token for the given user.
func (t *TokenService) CreateForUser(u *domain.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns its claims. Any failure (bad
// signature, expiry, malformed payload) is an error; callers treat it
// as an anonymous request.
func (t *TokenService) Parse(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims, ok := token.Claims.(*SessionClaims); ok {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}
