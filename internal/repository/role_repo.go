package repository

import (
	"context"
	"errors"

	"go-handicraft-ops/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults creates missing roles and (re)binds their privileges: MASTER_ADMIN
// gets every privilege, ADMIN every privilege except deletes. Privileges must be seeded first.
func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	db := r.db.WithContext(ctx)

	var all []model.Privilege
	if err := db.Find(&all).Error; err != nil {
		return err
	}

	for _, defaultRole := range model.DefaultRoles {
		role := defaultRole
		var existing model.Role
		err := db.Where("code = ?", role.Code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			existing = role
		case err != nil:
			return err
		}

		granted := make([]model.Privilege, 0, len(all))
		for _, p := range all {
			if role.GrantsByDefault(p.Code) {
				granted = append(granted, p)
			}
		}
		if err := db.Model(&existing).Association("Privileges").Replace(granted); err != nil {
			return err
		}
	}
	return nil
}
