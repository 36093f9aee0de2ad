// internal/auth/service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// Config holds auth service configuration
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
}

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*User, *TokenPair, error)
	Login(ctx context.Context, req *LoginRequest) (*User, *TokenPair, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*Claims, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	Contact(ctx context.Context, userID int64) (email, phone string, err error)
}

type service struct {
	repo         Repository
	redisClient  *redis.Client
	tokenManager *TokenManager
	bcryptCost   int
}

func NewService(repo Repository, redisClient *redis.Client, cfg *Config) Service {
	return &service{
		repo:         repo,
		redisClient:  redisClient,
		tokenManager: NewTokenManager(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry),
		bcryptCost:   cfg.BCryptCost,
	}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*User, *TokenPair, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, user, req.DisplayName, req.Age, req.Gender); err != nil {
		return nil, nil, err
	}

	tokens, err := s.tokenManager.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*User, *TokenPair, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.tokenManager.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Logout places the token on the redis denylist until its natural expiry.
func (s *service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenManager.ParseToken(token)
	if err != nil {
		return err
	}

	if s.redisClient == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	return s.redisClient.Set(ctx, revocationKey(token), "1", ttl).Err()
}

// ValidateToken parses a token and checks the revocation denylist. Expiry is
// checked here on every request rather than by any ambient timer.
func (s *service) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokenManager.ParseToken(token)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		revoked, err := s.redisClient.Exists(ctx, revocationKey(token)).Result()
		if err == nil && revoked > 0 {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// Contact resolves a user's delivery addresses for outbound notifications.
func (s *service) Contact(ctx context.Context, userID int64) (string, string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}

	return user.Email, phone, nil
}

func revocationKey(token string) string {
	return "auth:revoked:" + token
}
