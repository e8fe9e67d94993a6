package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/ws"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/jwt"

	"github.com/google/uuid"
)

// SessionIdleTimeout ends a session when no heartbeat arrived for this long.
const SessionIdleTimeout = 5 * time.Minute

var (
	ErrInvalidCredentials = apperror.New(apperror.CodeUnauthorized, "invalid email or password")
	ErrUserInactive       = apperror.New(apperror.CodeForbidden, "user account is inactive")
	ErrSessionReplaced    = apperror.New(apperror.CodeUnauthorized, "session expired (logged in on another device)")
	ErrSessionTimeout     = apperror.New(apperror.CodeUnauthorized, "session expired due to inactivity")
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	events   EventPublisher
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, events EventPublisher) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		events:   publisherOrNoop(events),
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(&req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// single session: a fresh version invalidates tokens issued earlier
	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, apperror.Internal(err, "failed to update session")
	}
	if err := s.userRepo.UpdateLastSeen(ctx, user.ID, s.now()); err != nil {
		return nil, apperror.Internal(err, "failed to update session")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, roleCode, user.GetPrivilegeCodes(), version)
	if err != nil {
		return nil, apperror.Internal(err, "failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Authenticate resolves a bearer token to its live user, enforcing the single
// session and the idle timeout.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingToken) {
			return nil, apperror.New(apperror.CodeUnauthorized, "missing token")
		}
		return nil, apperror.New(apperror.CodeUnauthorized, "invalid or expired token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.New(apperror.CodeUnauthorized, "user not found")
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > SessionIdleTimeout {
		return nil, ErrSessionTimeout
	}
	return user, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	if err := s.userRepo.UpdateLastSeen(ctx, userID, now); err != nil {
		return apperror.Internal(err, "failed to record heartbeat")
	}
	s.events.Publish(ws.Event{
		Type:   "user_status_update",
		Action: "online",
		Data: map[string]interface{}{
			"userId":     userID.String(),
			"lastSeenAt": now,
		},
	})
	return nil
}
