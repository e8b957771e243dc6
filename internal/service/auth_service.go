package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/metrics"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/pkg/tokens"
)

type AuthService struct {
	repo     repository.Repository
	tokenGen *tokens.TokenGenerator
	auditLog *audit.Logger
}

func NewAuthService(repo repository.Repository, tokenGen *tokens.TokenGenerator, auditLog *audit.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		tokenGen: tokenGen,
		auditLog: auditLog,
	}
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.auditLog.Record(ctx, req.Email, models.ActionLogin, models.EntitySession, "", "user not found")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.auditLog.Record(ctx, user.Email, models.ActionLogin, models.EntitySession, "", "account disabled")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.auditLog.Record(ctx, user.Email, models.ActionLogin, models.EntitySession, "", "invalid password")
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokenGen.GenerateAccessToken(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenGen.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	sessionID, _ := uuid.NewV7()
	session := &models.Session{
		ID:           sessionID.String(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.tokenGen.RefreshTTL()),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.auditLog.Record(ctx, user.Email, models.ActionLogin, models.EntitySession, session.ID, "signed in")

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokenGen.AccessTTL().Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// Refresh exchanges a live refresh token for a fresh access token. The
// refresh token itself is not rotated; its session row bounds its lifetime.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	session, err := s.repo.GetSession(ctx, refreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidToken
	}
	if !session.IsActive() {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidToken
	}

	accessToken, err := s.tokenGen.GenerateAccessToken(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokenGen.AccessTTL().Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (s *AuthService) Validate(tokenString string) *models.ValidateTokenResponse {
	claims, err := s.tokenGen.ValidateAccessToken(tokenString)
	if err != nil {
		return &models.ValidateTokenResponse{Valid: false}
	}
	return &models.ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Roles:  claims.Roles,
	}
}

func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	if err := s.repo.RevokeSession(ctx, refreshToken); err != nil {
		return err
	}
	session, err := s.repo.GetSession(ctx, refreshToken)
	if err == nil {
		s.auditLog.Record(ctx, "", models.ActionLogout, models.EntitySession, session.ID, "session revoked")
	}
	return nil
}

// Me returns the account behind a validated access token.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
