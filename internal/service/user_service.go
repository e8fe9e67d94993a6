package service

import (
	"context"
	"errors"
	"strings"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/logger"

	"gorm.io/gorm"
)

// AdminSeed describes the bootstrap account created on first start.
type AdminSeed struct {
	Email    string
	Password string
	FullName string
}

type UserService interface {
	List(ctx context.Context, search string) ([]model.UserResponse, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	SeedDefaults(ctx context.Context, admin AdminSeed) error
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	log           *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, logg *logger.Logger) UserService {
	if logg == nil {
		logg = logger.Nop()
	}
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
		log:           logg,
	}
}

func (s *userService) List(ctx context.Context, search string) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, apperror.Internal(err, "failed to list users")
	}
	out := make([]model.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, nil
}

func (s *userService) ListRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list roles")
	}
	return roles, nil
}

// ResetPassword sets a new password and rotates the token version, ending any live session.
func (s *userService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 6 {
		return apperror.Validation("Password must be at least 6 characters")
	}
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return notFoundOr(err, "User not found", "failed to load user")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return apperror.Internal(err, "failed to hash password")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return apperror.Internal(err, "failed to update password")
	}
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, ""); err != nil {
		return apperror.Internal(err, "failed to revoke session")
	}
	return nil
}

// SeedDefaults creates privileges, roles and, when missing, the admin account
// with every MASTER_ADMIN privilege granted directly.
func (s *userService) SeedDefaults(ctx context.Context, admin AdminSeed) error {
	if err := s.privilegeRepo.SeedDefaults(ctx); err != nil {
		return apperror.Internal(err, "failed to seed privileges")
	}
	if err := s.roleRepo.SeedDefaults(ctx); err != nil {
		return apperror.Internal(err, "failed to seed roles")
	}
	if admin.Email == "" {
		return nil
	}

	_, err := s.userRepo.FindByEmail(ctx, admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Internal(err, "failed to load admin user")
	}

	role, err := s.roleRepo.FindByCode(ctx, model.RoleMasterAdmin)
	if err != nil {
		return apperror.Internal(err, "failed to load master admin role")
	}

	user := &model.User{
		Email:    admin.Email,
		FullName: admin.FullName,
		RoleID:   &role.ID,
		IsActive: true,
	}
	if user.FullName == "" {
		user.FullName = "Administrator"
	}
	if err := user.SetPassword(admin.Password); err != nil {
		return apperror.Internal(err, "failed to hash admin password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return apperror.Internal(err, "failed to create admin user")
	}
	if err := s.userRepo.UpdatePrivileges(ctx, user.ID, role.Privileges); err != nil {
		return apperror.Internal(err, "failed to grant admin privileges")
	}
	s.log.Info(s.log.WithField(ctx, "email", admin.Email), "default admin user created")
	return nil
}
