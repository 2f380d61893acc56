// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
)

// ErrInvalidCredentials is returned for any failed login: unknown
// username, wrong password, or authentication disabled. Callers must
// not distinguish these cases in responses.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates the admin account and manages its tokens.
type Service struct {
	cfg config.AuthConfig
	jwt *JWTManager
}

// NewService builds the auth service. Returns a disabled service when
// no password hash is configured; errors only on a broken configuration
// (hash set but no JWT secret).
func NewService(cfg config.AuthConfig) (*Service, error) {
	if cfg.AdminPasswordHash == "" {
		logging.Warn().Msg("ADMIN_PASSWORD_HASH not set, admin endpoints disabled")
		return &Service{cfg: cfg}, nil
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is set but JWT_SECRET is empty")
	}

	jwtManager, err := NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("create jwt manager: %w", err)
	}
	return &Service{cfg: cfg, jwt: jwtManager}, nil
}

// Enabled reports whether admin authentication is configured.
func (s *Service) Enabled() bool {
	return s.jwt != nil
}

// Login verifies credentials and issues a token. The username check is
// constant time and the bcrypt comparison always runs, so response
// timing does not reveal which part failed.
func (s *Service) Login(username, password string) (token string, expiresAt time.Time, err error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrInvalidCredentials
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passwordMatch := VerifyPassword(s.cfg.AdminPasswordHash, password)
	if !usernameMatch || !passwordMatch {
		logging.Warn().Str("username", username).Msg("Failed admin login attempt")
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err = s.jwt.GenerateToken(username)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	logging.Info().Str("username", username).Time("expires_at", expiresAt).Msg("Admin login")
	return token, expiresAt, nil
}

// Validate checks a bearer token and returns its claims.
func (s *Service) Validate(token string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrInvalidCredentials
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("unexpected role %q", claims.Role)
	}
	return claims, nil
}
