package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
)

const passwordChangedMessage = "Password changed successfully!"

// Service is the main auth service with dependencies
type Service struct {
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(tokenGen TokenGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// Login accepts any non-empty email and password and issues a session for role.
func (s *Service) Login(ctx context.Context, dto LoginDTO, role Role) (*SessionResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, internal.ErrInsufficientRole
	}

	email := strings.TrimSpace(dto.Email)
	token, expiresAt, err := s.tokenGenerator.GenerateSessionToken(email, role)
	if err != nil {
		s.logger.Error("failed to issue session token", "error", err, "role", role)
		return nil, internal.NewInternalError("could not create session", err)
	}

	s.logger.Info("session issued", "email", email, "role", role)

	return &SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     email,
		Role:      role,
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ChangePassword checks the form and reports success. Nothing is stored.
func (s *Service) ChangePassword(ctx context.Context, dto ChangePasswordDTO) (*MessageResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if sess, ok := internal.SessionFromContext(ctx); ok {
		s.logger.Info("admin password change accepted", "email", sess.Email)
	}

	return &MessageResponse{Message: passwordChangedMessage}, nil
}
