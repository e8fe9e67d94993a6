package repository

import (
	"context"
	"errors"

	"go-handicraft-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned when a decrement would take central stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type RawMaterialRepository interface {
	WithTx(tx *gorm.DB) RawMaterialRepository
	Create(ctx context.Context, material *model.RawMaterial) error
	FindAll(ctx context.Context) ([]model.RawMaterial, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error)
	FindByName(ctx context.Context, name string) (*model.RawMaterial, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error)
	Update(ctx context.Context, material *model.RawMaterial) error
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int, updatedBy string) error
}

type rawMaterialRepo struct {
	db *gorm.DB
}

func NewRawMaterialRepo(db *gorm.DB) RawMaterialRepository {
	return &rawMaterialRepo{db: db}
}

func (r *rawMaterialRepo) WithTx(tx *gorm.DB) RawMaterialRepository {
	if tx == nil {
		return r
	}
	return &rawMaterialRepo{db: tx}
}

func (r *rawMaterialRepo) Create(ctx context.Context, material *model.RawMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *rawMaterialRepo) FindAll(ctx context.Context) ([]model.RawMaterial, error) {
	var materials []model.RawMaterial
	err := r.db.WithContext(ctx).Order("name ASC").Find(&materials).Error
	return materials, err
}

func (r *rawMaterialRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error) {
	var material model.RawMaterial
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *rawMaterialRepo) FindByName(ctx context.Context, name string) (*model.RawMaterial, error) {
	var material model.RawMaterial
	if err := r.db.WithContext(ctx).First(&material, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

// LockByID reads the row with SELECT ... FOR UPDATE; only meaningful inside a transaction.
func (r *rawMaterialRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error) {
	var material model.RawMaterial
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *rawMaterialRepo) Update(ctx context.Context, material *model.RawMaterial) error {
	return r.db.WithContext(ctx).Model(&model.RawMaterial{}).
		Where("id = ?", material.ID).
		Updates(map[string]interface{}{
			"name":       material.Name,
			"quantity":   material.Quantity,
			"unit":       material.Unit,
			"updated_by": material.UpdatedBy,
		}).Error
}

// AdjustQuantity applies delta in a single UPDATE so concurrent adjustments never
// read-then-write. Negative deltas fail with ErrInsufficientStock instead of going below zero.
func (r *rawMaterialRepo) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int, updatedBy string) error {
	if delta == 0 {
		return nil
	}
	query := r.db.WithContext(ctx).Model(&model.RawMaterial{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	}
	res := query.Updates(map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_by": updatedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if delta < 0 {
			return ErrInsufficientStock
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}
