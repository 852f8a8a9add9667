package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// lastLoginTimeout bounds the detached last-login write.
const lastLoginTimeout = 5 * time.Second

// Claims extends JWT standard claims with the principal fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int        `json:"user_id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// Principal returns the identity carried by the claims.
func (c *Claims) Principal() *model.Principal {
	return &model.Principal{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// AuthService handles credentials, JWT issuance/verification and token revocation.
type AuthService struct {
	cfg   *config.Config
	users UserStore
	rdb   *redis.Client
	log   zerolog.Logger
	now   func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new AuthService. rdb may be nil, which disables revocation.
func NewAuthService(cfg *config.Config, users UserStore, rdb *redis.Client, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:   cfg,
		users: users,
		rdb:   rdb,
		log:   log.With().Str("component", "auth_service").Logger(),
		now:   time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// VerifyCredentials resolves a user from email and password.
// Unknown email and wrong password both return ErrInvalidCredentials.
// On success the last-login timestamp is written in the background.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a comparison so a miss costs the same as a mismatch.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	go s.touchLastLogin(user.ID)

	return user, nil
}

func (s *AuthService) touchLastLogin(userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), lastLoginTimeout)
	defer cancel()
	if err := s.users.UpdateLastLogin(ctx, userID, s.now()); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("last login update failed")
	}
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("smsi-dummy-password"), s.cfg.BcryptCost)
	})
	return s.dummyHash
}

// IssueToken signs an HS256 JWT for the principal.
func (s *AuthService) IssueToken(p *model.Principal) (string, *Claims, error) {
	now := s.now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(p.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: p.ID,
		Email:  p.Email,
		Role:   p.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// VerifyToken parses and validates a JWT. Every failure returns ErrTokenInvalid.
func (s *AuthService) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke denylists the token until its natural expiry.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	if s.rdb == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(claims.ID), 1, ttl).Err()
}

// IsRevoked reports whether a token ID has been denylisted.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Register creates a learner account with recorded consent.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		ConsentRGPD:  req.ConsentRGPD,
		ConsentDate:  &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetProfile returns the account of an authenticated principal.
func (s *AuthService) GetProfile(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
