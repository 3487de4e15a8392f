package auth

import (
	"context"
	"log/slog"
	"time"
)

type Service struct {
	repo       RepositoryAPI
	tokenGen   *JWTTokenGenerator
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen *JWTTokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokenGen:   tokenGen,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate verifies credentials and issues a token pair. Credential
// failures and inactive accounts both surface as ErrInvalidCredentials to
// the caller so the response does not leak which part failed.
func (s *Service) Authenticate(ctx context.Context, dto SigninDTO) (*SigninResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	passwordHash, userID, err := s.repo.GetCredentialsByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Warn("signin failed: unknown email", "email", dto.Email)
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, dto.Password); err != nil {
		s.logger.Warn("signin failed: wrong password", "user_id", userID)
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserWithRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn("signin rejected: inactive account", "user_id", userID)
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logger.Error("failed to update last login", "user_id", user.ID, "error", err)
	}

	return &SigninResult{Tokens: tokens, User: user}, nil
}

// RefreshTokens exchanges a valid refresh token for a fresh pair. The user
// is reloaded so a deactivation or role change since issuance takes effect.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.repo.GetUserWithRole(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(user)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

func (s *Service) GetUserWithRole(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserWithRole(ctx, userID)
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issueTokens(user *User) (AuthTokens, error) {
	accessToken, err := s.tokenGen.GenerateAccessToken(user.ID, user.Email, user.RoleName)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokenGen.GenerateRefreshToken(user.ID, user.Email, user.RoleName)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
