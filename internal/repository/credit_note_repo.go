package repository

import (
	"context"
	"strings"

	"go-handicraft-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditNoteFilter struct {
	Search   string
	Status   *model.CreditNoteStatus
	VendorID *uuid.UUID
}

type CreditNoteRepository interface {
	Create(ctx context.Context, note *model.VendorCreditNote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VendorCreditNote, error)
	NumberTaken(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter CreditNoteFilter) ([]model.VendorCreditNote, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteDraft(ctx context.Context, id uuid.UUID) error
}

type creditNoteRepo struct {
	db *gorm.DB
}

func NewCreditNoteRepo(db *gorm.DB) CreditNoteRepository {
	return &creditNoteRepo{db: db}
}

func (r *creditNoteRepo) Create(ctx context.Context, note *model.VendorCreditNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *creditNoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VendorCreditNote, error) {
	var note model.VendorCreditNote
	err := r.db.WithContext(ctx).
		Preload("Vendor", selectVendorSummary).
		First(&note, "vendor_credit_notes.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// NumberTaken reports whether another credit note already uses number.
func (r *creditNoteRepo) NumberTaken(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.VendorCreditNote{}).Where("credit_note_number = ?", number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *creditNoteRepo) List(ctx context.Context, filter CreditNoteFilter) ([]model.VendorCreditNote, error) {
	query := r.db.WithContext(ctx).Model(&model.VendorCreditNote{}).Preload("Vendor", selectVendorSummary)

	if filter.Status != nil {
		query = query.Where("vendor_credit_notes.status = ?", *filter.Status)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_credit_notes.vendor_id = ?", *filter.VendorID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.
			Joins("LEFT JOIN vendors ON vendors.id = vendor_credit_notes.vendor_id").
			Where(
				"LOWER(vendor_credit_notes.credit_note_number) LIKE ? OR LOWER(vendor_credit_notes.bill_number) LIKE ? OR LOWER(vendor_credit_notes.reason) LIKE ? OR LOWER(vendors.name) LIKE ?",
				like, like, like, like,
			)
	}

	var notes []model.VendorCreditNote
	err := query.Order("vendor_credit_notes.created_at DESC").Find(&notes).Error
	return notes, err
}

func (r *creditNoteRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.VendorCreditNote{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteDraft deletes the note only while it is still DRAFT. It returns
// gorm.ErrRecordNotFound when no DRAFT row with that id exists.
func (r *creditNoteRepo) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("status = ?", model.CreditNoteDraft).
		Delete(&model.VendorCreditNote{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func selectVendorSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}
