package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/thereayou/planner-collab/internal/apperr"
	"github.com/thereayou/planner-collab/internal/middleware"
	"github.com/thereayou/planner-collab/internal/models"
	"github.com/thereayou/planner-collab/pkg/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the database the auth service needs.
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type RegisterRequest struct {
	FullName string
	Email    string
	Password string
}

type AuthResponse struct {
	User  *models.User
	Token string
}

type AuthService struct {
	users      UserStore
	jwtManager *auth.JWTManager
	redis      *redis.Client
}

func NewAuthService(users UserStore, jwtMgr *auth.JWTManager, rdb *redis.Client) *AuthService {
	return &AuthService{users: users, jwtManager: jwtMgr, redis: rdb}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// Logout blacklists the token in redis until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	exp, err := s.jwtManager.Expiry(rawToken)
	if err != nil {
		return err
	}

	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, middleware.BlacklistKey(rawToken), 1, ttl).Err()
}
