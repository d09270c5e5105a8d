// Package auth handles credential checks and bearer-token issuance for
// the admin API. Tokens are stateless JWTs; logout is a client-side
// token discard, the server keeps no session state.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// UserSource is the slice of the users repository the service needs.
type UserSource interface {
	GetByEmail(email string) (*entities.User, error)
	GetByID(id uint) (*entities.User, error)
}

// Claims is the JWT payload for an access token.
type Claims struct {
	UserID uint              `json:"uid"`
	Email  string            `json:"email"`
	Role   entities.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates users and mints access tokens.
type Service struct {
	users  UserSource
	secret []byte
	expiry time.Duration
	cost   int
}

// NewService creates an authentication service.
func NewService(users UserSource, cfg config.Auth) *Service {
	expiry := cfg.TokenExpiry
	if expiry == 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		expiry: expiry,
		cost:   cfg.BcryptCost,
	}
}

// Authenticate validates credentials and returns the matching user.
// A missing user and a wrong password are indistinguishable to callers.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken mints a signed access token for the user.
func (s *Service) IssueToken(user *entities.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token string and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CurrentUser resolves the user behind a set of claims. The database is
// consulted so revoked accounts stop resolving even with a live token.
func (s *Service) CurrentUser(claims *Claims) (*entities.User, error) {
	return s.users.GetByID(claims.UserID)
}

// HashPassword hashes with the service's configured bcrypt cost.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.cost)
}

// GenerateSecret returns a random hex-encoded signing secret for
// deployments that did not configure one.
func GenerateSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}
