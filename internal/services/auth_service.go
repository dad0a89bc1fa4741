// internal/services/auth_service.go
// Operator authentication service

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benchbalancer/rotation-engine/internal/config"
	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates the single operator credential set read from
// config. There is no registration flow: operator accounts are provisioned
// out of band by setting OPERATOR_USERNAME/OPERATOR_PASSWORD_HASH.
type AuthService struct {
	config config.AuthConfig
	cache  *CacheService
	logger *log.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(cfg config.AuthConfig, cache *CacheService, logger *log.Logger) *AuthService {
	return &AuthService{config: cfg, cache: cache, logger: logger}
}

// Login authenticates the operator and returns a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	if username != s.config.OperatorUsername {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.OperatorPasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(username)
}

// RefreshToken generates new tokens using a refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	cacheKey := fmt.Sprintf("refresh_token_%s", refreshToken)
	var username string
	if err := s.cache.Get(cacheKey, &username); err != nil {
		return nil, ErrInvalidToken
	}
	s.cache.Delete(cacheKey)
	return s.generateTokenPair(username)
}

func (s *AuthService) generateTokenPair(username string) (*models.TokenPair, error) {
	accessToken, err := utils.GenerateJWT(username, "operator", s.config.JWTSecret, s.config.JWTExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	cacheKey := fmt.Sprintf("refresh_token_%s", refreshToken)
	if err := s.cache.Set(cacheKey, username, s.config.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("failed to cache refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.config.JWTExpiration),
	}, nil
}

// ValidateToken validates a JWT token and returns the operator username.
func (s *AuthService) ValidateToken(token string) (string, error) {
	username, _, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return "", ErrInvalidToken
	}
	return username, nil
}

// Logout invalidates a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		s.cache.Delete(fmt.Sprintf("refresh_token_%s", refreshToken))
	}
	return nil
}
