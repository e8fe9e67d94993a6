package repository

import (
	"context"

	"go-handicraft-ops/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusCount is one row of a GROUP BY status aggregate.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DashboardRepository interface {
	CountRawMaterials(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	CountTransfersByStatus(ctx context.Context) ([]StatusCount, error)
	SumOpenCreditNotes(ctx context.Context) (decimal.Decimal, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) CountRawMaterials(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RawMaterial{}).Count(&count).Error
	return count, err
}

// CountLowStock counts materials whose central quantity is below threshold.
func (r *dashboardRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RawMaterial{}).Where("quantity < ?", threshold).Count(&count).Error
	return count, err
}

func (r *dashboardRepo) CountTransfersByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&model.RawMaterialTransfer{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

// SumOpenCreditNotes totals credit notes still owed against a bill (DRAFT or ISSUED).
func (r *dashboardRepo) SumOpenCreditNotes(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.VendorCreditNote{}).
		Where("status IN ?", []model.CreditNoteStatus{model.CreditNoteDraft, model.CreditNoteIssued}).
		Select("SUM(total_amount)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
