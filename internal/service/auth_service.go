package service

import (
	"context"
	"log/slog"

	"github.com/potluckapp/potluck/internal/apperr"
	"github.com/potluckapp/potluck/internal/auth"
	"github.com/potluckapp/potluck/internal/models"
	"github.com/potluckapp/potluck/internal/storage"
)

// AuthService handles registration, login and current-user lookup.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Register creates a new user account and issues a session token.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*models.User, string, error) {
	s.logger.Info("Register request", "email", email)

	if email == "" || password == "" || displayName == "" {
		return nil, "", apperr.New(apperr.KindValidation, "email, password, and display name are required")
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user and issues a session token. The error is
// the same for unknown emails and wrong passwords.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, "", apperr.New(apperr.KindValidation, "email and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// CurrentUser returns the account behind an authenticated user ID.
// A valid token for a deleted account yields not-found.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("CurrentUser lookup failed", "user_id", userID, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	return user, nil
}
