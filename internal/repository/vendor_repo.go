package repository

import (
	"context"
	"strings"

	"go-handicraft-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	FindAll(ctx context.Context, search string) ([]model.Vendor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type vendorRepo struct {
	db *gorm.DB
}

func NewVendorRepo(db *gorm.DB) VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) Create(ctx context.Context, vendor *model.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepo) FindAll(ctx context.Context, search string) ([]model.Vendor, error) {
	query := r.db.WithContext(ctx)
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var vendors []model.Vendor
	err := query.Order("name ASC").Find(&vendors).Error
	return vendors, err
}

func (r *vendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Vendor{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
