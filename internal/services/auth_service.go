package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nexora/internal/auth"
	"nexora/internal/models"
	"nexora/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when the session secret is missing.
var ErrNotConfigured = errors.New("authentication is not configured")

// AuthConfig configures session tokens and the admin allow-list.
type AuthConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	AdminEmails []string
}

// AuthService handles sign-in and session tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	verifier   auth.IdentityVerifier
	jwtSecret  []byte
	tokenDurat time.Duration
	admins     map[string]struct{}
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, verifier auth.IdentityVerifier, cfg AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &AuthService{
		userRepo:   userRepo,
		verifier:   verifier,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenDurat: ttl,
		admins:     admins,
	}
}

// SignInWithGoogle verifies a Google ID token, records the user's profile
// and issues a session token.
func (s *AuthService) SignInWithGoogle(ctx context.Context, idToken string) (string, *models.User, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return "", nil, fmt.Errorf("google sign-in failed: %w", err)
	}

	user, err := s.upsertUser(ctx, identity)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	zap.L().Info("user signed in", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return token, user, nil
}

func (s *AuthService) upsertUser(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	user, err := s.userRepo.GetBySubject(ctx, identity.Subject)
	switch {
	case repositories.IsNotFound(err):
		user = &models.User{
			Subject: identity.Subject,
			Email:   identity.Email,
			Name:    identity.Name,
			Picture: identity.Picture,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to record user: %w", err)
		}
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.Email != identity.Email || user.Name != identity.Name || user.Picture != identity.Picture {
		user.Email = identity.Email
		user.Name = identity.Name
		user.Picture = identity.Picture
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}
	return user, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", ErrNotConfigured
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
		"jti":     uuid.New().String(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrNotConfigured
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		zap.L().Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// IsAdmin reports whether email may use the admin area. With no allow-list
// configured every signed-in user is an admin.
func (s *AuthService) IsAdmin(email string) bool {
	if len(s.admins) == 0 {
		return email != ""
	}
	_, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// CurrentUser loads the user a session token was issued to.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
