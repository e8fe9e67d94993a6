package service

import (
	"context"
	"strings"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/pkg/apperror"

	"github.com/google/uuid"
)

type VendorRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address"`
}

type VendorService interface {
	Create(ctx context.Context, req VendorRequest, actor Actor) (*model.Vendor, error)
	List(ctx context.Context, search string) ([]model.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
}

type vendorService struct {
	vendors repository.VendorRepository
}

func NewVendorService(vendors repository.VendorRepository) VendorService {
	return &vendorService{vendors: vendors}
}

func (s *vendorService) Create(ctx context.Context, req VendorRequest, actor Actor) (*model.Vendor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(&req); err != nil {
		return nil, err
	}

	vendor := &model.Vendor{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	vendor.CreatedBy = actor.auditID()
	vendor.UpdatedBy = actor.auditID()

	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, apperror.Internal(err, "failed to create vendor")
	}
	return vendor, nil
}

func (s *vendorService) List(ctx context.Context, search string) ([]model.Vendor, error) {
	vendors, err := s.vendors.FindAll(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, apperror.Internal(err, "failed to list vendors")
	}
	return vendors, nil
}

func (s *vendorService) Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Vendor not found", "failed to load vendor")
	}
	return vendor, nil
}
