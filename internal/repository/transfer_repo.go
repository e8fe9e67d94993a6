package repository

import (
	"context"
	"strings"
	"time"

	"go-handicraft-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransferFilter struct {
	UserID        *uuid.UUID
	RawMaterialID *uuid.UUID
	Status        *model.TransferStatus
	Search        string
	From          *time.Time
	To            *time.Time
}

type TransferRepository interface {
	WithTx(tx *gorm.DB) TransferRepository
	Create(ctx context.Context, transfer *model.RawMaterialTransfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RawMaterialTransfer, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.RawMaterialTransfer, error)
	List(ctx context.Context, filter TransferFilter) ([]model.RawMaterialTransfer, error)
	// UpdateVersioned applies updates only while the stored version still equals
	// expectedVersion, bumping it by one. It returns the number of rows touched.
	UpdateVersioned(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db: db}
}

func (r *transferRepo) WithTx(tx *gorm.DB) TransferRepository {
	if tx == nil {
		return r
	}
	return &transferRepo{db: tx}
}

func (r *transferRepo) Create(ctx context.Context, transfer *model.RawMaterialTransfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

func (r *transferRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RawMaterialTransfer, error) {
	var transfer model.RawMaterialTransfer
	err := r.withRelations(r.db.WithContext(ctx)).First(&transfer, "raw_material_transfers.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.RawMaterialTransfer, error) {
	var transfer model.RawMaterialTransfer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transfer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepo) List(ctx context.Context, filter TransferFilter) ([]model.RawMaterialTransfer, error) {
	query := r.withRelations(r.db.WithContext(ctx).Model(&model.RawMaterialTransfer{}))

	if filter.UserID != nil {
		query = query.Where("raw_material_transfers.user_id = ?", *filter.UserID)
	}
	if filter.RawMaterialID != nil {
		query = query.Where("raw_material_transfers.raw_material_id = ?", *filter.RawMaterialID)
	}
	if filter.Status != nil {
		query = query.Where("raw_material_transfers.status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("raw_material_transfers.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("raw_material_transfers.created_at <= ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.
			Joins("LEFT JOIN users ON users.id = raw_material_transfers.user_id").
			Joins("LEFT JOIN raw_materials ON raw_materials.id = raw_material_transfers.raw_material_id").
			Where("LOWER(users.full_name) LIKE ? OR LOWER(raw_materials.name) LIKE ? OR LOWER(raw_material_transfers.notes) LIKE ?", like, like, like)
	}

	var transfers []model.RawMaterialTransfer
	err := query.Order("raw_material_transfers.created_at DESC").Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) UpdateVersioned(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]interface{}) (int64, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).Model(&model.RawMaterialTransfer{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *transferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.RawMaterialTransfer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *transferRepo) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User", selectUserSummary).Preload("RawMaterial")
}
