package service

import (
	"context"
	"testing"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepo(db)
	return NewUserService(users, repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db), nil), users
}

func TestSeedDefaultsCreatesRolesAndAdmin(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()
	seed := AdminSeed{Email: "admin@handicraft.local", Password: "admin123"}

	require.NoError(t, svc.SeedDefaults(ctx, seed))
	// idempotent
	require.NoError(t, svc.SeedDefaults(ctx, seed))

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	byCode := map[string]model.Role{}
	for _, r := range roles {
		byCode[r.Code] = r
	}
	assert.Len(t, byCode[model.RoleMasterAdmin].Privileges, len(model.DefaultPrivileges))
	for _, p := range byCode[model.RoleAdmin].Privileges {
		assert.False(t, model.IsDeletePrivilege(p.Code), p.Code)
	}
	assert.Len(t, byCode[model.RoleAdmin].Privileges, len(model.DefaultPrivileges)-2)

	admin, err := users.FindByEmail(ctx, seed.Email)
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("admin123"))
	assert.True(t, admin.HasPrivilege(model.PrivTransferDelete))
	require.NotNil(t, admin.Role)
	assert.Equal(t, model.RoleMasterAdmin, admin.Role.Code)

	list, err := svc.List(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestResetPassword(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()
	require.NoError(t, svc.SeedDefaults(ctx, AdminSeed{Email: "ops@handicraft.local", Password: "first-pass"}))
	admin, err := users.FindByEmail(ctx, "ops@handicraft.local")
	require.NoError(t, err)
	require.NoError(t, users.UpdateTokenVersion(ctx, admin.ID, "live-session"))

	require.NoError(t, svc.ResetPassword(ctx, "ops@handicraft.local", "second-pass"))

	reloaded, err := users.FindByEmail(ctx, "ops@handicraft.local")
	require.NoError(t, err)
	assert.True(t, reloaded.CheckPassword("second-pass"))
	assert.Empty(t, reloaded.TokenVersion)

	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(svc.ResetPassword(ctx, "ops@handicraft.local", "123")))
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(svc.ResetPassword(ctx, "nobody@handicraft.local", "long-enough")))
}
