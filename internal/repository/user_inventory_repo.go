package repository

import (
	"context"

	"go-handicraft-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserInventoryFilter struct {
	UserID        *uuid.UUID
	RawMaterialID *uuid.UUID
}

type UserInventoryRepository interface {
	WithTx(tx *gorm.DB) UserInventoryRepository
	Increment(ctx context.Context, userID, rawMaterialID uuid.UUID, unit string, qty int, actor string) error
	LockByUserAndMaterial(ctx context.Context, userID, rawMaterialID uuid.UUID) (*model.UserInventory, error)
	Decrement(ctx context.Context, id uuid.UUID, qty int, actor string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserInventoryFilter) ([]model.UserInventory, error)
}

type userInventoryRepo struct {
	db *gorm.DB
}

func NewUserInventoryRepo(db *gorm.DB) UserInventoryRepository {
	return &userInventoryRepo{db: db}
}

func (r *userInventoryRepo) WithTx(tx *gorm.DB) UserInventoryRepository {
	if tx == nil {
		return r
	}
	return &userInventoryRepo{db: tx}
}

// Increment upserts the (user, material) row, adding qty atomically on conflict.
func (r *userInventoryRepo) Increment(ctx context.Context, userID, rawMaterialID uuid.UUID, unit string, qty int, actor string) error {
	row := &model.UserInventory{
		UserID:        userID,
		RawMaterialID: rawMaterialID,
		Quantity:      qty,
		Unit:          unit,
	}
	row.CreatedBy = actor
	row.UpdatedBy = actor

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "raw_material_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("user_inventories.quantity + excluded.quantity"),
			"updated_by": actor,
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(row).Error
}

func (r *userInventoryRepo) LockByUserAndMaterial(ctx context.Context, userID, rawMaterialID uuid.UUID) (*model.UserInventory, error) {
	var inv model.UserInventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND raw_material_id = ?", userID, rawMaterialID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *userInventoryRepo) Decrement(ctx context.Context, id uuid.UUID, qty int, actor string) error {
	return r.db.WithContext(ctx).Model(&model.UserInventory{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_by": actor,
		}).Error
}

func (r *userInventoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.UserInventory{}, "id = ?", id).Error
}

func (r *userInventoryRepo) List(ctx context.Context, filter UserInventoryFilter) ([]model.UserInventory, error) {
	query := r.db.WithContext(ctx).
		Preload("User", selectUserSummary).
		Preload("RawMaterial")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.RawMaterialID != nil {
		query = query.Where("raw_material_id = ?", *filter.RawMaterialID)
	}
	var rows []model.UserInventory
	err := query.Order("updated_at DESC").Find(&rows).Error
	return rows, err
}

// selectUserSummary limits joined users to their public identity fields.
func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "full_name", "email")
}
