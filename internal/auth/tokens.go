package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/models"
)

// DefaultOneTimeTTL is how long email-verification and password-reset
// tokens stay valid.
const DefaultOneTimeTTL = 20 * time.Minute

var (
	ErrTokenMissing  = errors.New("token missing")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrInvalidConfig = errors.New("invalid token configuration")
)

// TokenConfig carries the secrets and lifetimes used by TokenService.
type TokenConfig struct {
	AccessSecret  string        `yaml:"access_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshSecret string        `yaml:"refresh_secret"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
	OneTimeTTL    time.Duration `yaml:"one_time_ttl"`
}

// Validate rejects empty secrets and non-positive lifetimes.
func (c TokenConfig) Validate() error {
	switch {
	case c.AccessSecret == "" || c.RefreshSecret == "":
		return fmt.Errorf("%w: secrets must not be empty", ErrInvalidConfig)
	case c.AccessTTL <= 0 || c.RefreshTTL <= 0 || c.OneTimeTTL <= 0:
		return fmt.Errorf("%w: lifetimes must be positive", ErrInvalidConfig)
	}
	return nil
}

// AccessClaims are carried by access tokens.
type AccessClaims struct {
	UserID   uint64 `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens.
type RefreshClaims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// RefreshTokenStore persists the single active refresh token of a user.
type RefreshTokenStore interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID uint64, token *string) error
}

// TokenService issues and verifies access, refresh and one-time tokens.
type TokenService struct {
	cfg   TokenConfig
	store RefreshTokenStore
	now   func() time.Time
}

// NewTokenService creates a TokenService. store may be nil for callers that
// only need access and one-time tokens.
func NewTokenService(cfg TokenConfig, store RefreshTokenStore) *TokenService {
	return &TokenService{
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// IssueAccessToken signs a short-lived token for user.
func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := AccessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// IssueRefreshToken signs a long-lived token for user and stores it as the
// user's only valid refresh token, replacing any earlier one.
func (s *TokenService) IssueRefreshToken(ctx context.Context, user *models.User) (string, error) {
	now := s.now()
	claims := RefreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.store.SetRefreshToken(ctx, user.ID, &token); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	user.RefreshToken = &token

	return token, nil
}

// VerifyAccessToken checks signature and expiry of an access token.
func (s *TokenService) VerifyAccessToken(token string) (*AccessClaims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	claims := &AccessClaims{}
	if err := s.parse(token, s.cfg.AccessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken checks signature and expiry of a refresh token and that
// it is the token currently stored for its user.
func (s *TokenService) VerifyRefreshToken(ctx context.Context, token string) (*RefreshClaims, *models.User, error) {
	if token == "" {
		return nil, nil, ErrTokenMissing
	}

	claims := &RefreshClaims{}
	if err := s.parse(token, s.cfg.RefreshSecret, claims); err != nil {
		return nil, nil, err
	}

	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: user not found", ErrTokenInvalid)
		}
		return nil, nil, fmt.Errorf("failed to load refresh token owner: %w", err)
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(token)) != 1 {
		return nil, nil, ErrTokenRevoked
	}

	return claims, user, nil
}

func (s *TokenService) parse(token, secret string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

// IsTokenError reports whether err is a verification failure caused by the
// presented token, as opposed to a storage failure.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenRevoked)
}

// Reason returns the client-facing reason for a token verification failure.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return "missing token"
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	case errors.Is(err, ErrTokenRevoked):
		return "token revoked"
	default:
		return "invalid token"
	}
}
