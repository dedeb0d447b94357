package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/pkg/validate"
)

// Service issues and validates bearer sessions. Credential verification
// (email/phone + OTP) lives in an excluded outer layer: that layer calls
// IssueSession once a user is verified, and the router middleware calls
// ValidateAccessToken on every gated request.

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	DeleteSession(ctx context.Context, sid string) error
}

type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, sessions SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	return &Service{
		jwt:        jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *Service) IssueSession(ctx context.Context, userID int64, role enums.Role) (IssueResult, error) {
	if userID <= 0 {
		return IssueResult{}, ErrInvalidInput
	}
	if s.sessions == nil {
		return IssueResult{}, fmt.Errorf("session store is nil")
	}

	sid := uuid.NewString()
	expiresAt := s.now().UTC().Add(s.sessionTTL)
	if err := s.sessions.Create(ctx, SessionRecord{
		SID:       sid,
		UserID:    userID,
		Role:      string(role),
		ExpiresAt: expiresAt,
	}); err != nil {
		return IssueResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, tokenExpires, err := s.jwt.GenerateAccessToken(userID, sid, string(role))
	if err != nil {
		return IssueResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return IssueResult{
		AccessToken: accessToken,
		ExpiresAt:   tokenExpires,
		SID:         sid,
	}, nil
}

// ValidateAccessToken checks the token signature and that the backing
// session still exists, so a logout invalidates outstanding tokens.
func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	if s.jwt == nil {
		return AccessClaims{}, fmt.Errorf("jwt manager is nil")
	}

	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, err
	}

	if s.sessions != nil {
		session, err := s.sessions.GetSession(ctx, claims.SID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				return AccessClaims{}, ErrUnauthorized
			}
			return AccessClaims{}, fmt.Errorf("get session: %w", err)
		}
		if session.UserID != claims.UserID {
			return AccessClaims{}, ErrUnauthorized
		}
		if s.now().UTC().After(session.ExpiresAt) {
			return AccessClaims{}, ErrUnauthorized
		}
	}

	return claims, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if !validate.Required(sid) {
		return ErrInvalidInput
	}
	if s.sessions == nil {
		return fmt.Errorf("session store is nil")
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
