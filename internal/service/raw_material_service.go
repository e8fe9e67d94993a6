package service

import (
	"context"
	"fmt"
	"strings"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/ws"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/database"

	"github.com/google/uuid"
)

type RawMaterialRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Unit     string `json:"unit" validate:"max=20"`
}

type RawMaterialService interface {
	Create(ctx context.Context, req RawMaterialRequest, actor Actor) (*model.RawMaterial, error)
	Update(ctx context.Context, id uuid.UUID, req RawMaterialRequest, actor Actor) (*model.RawMaterial, error)
	Get(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error)
	List(ctx context.Context) ([]model.RawMaterial, error)
	ListInventories(ctx context.Context, filter repository.UserInventoryFilter) ([]model.UserInventory, error)
}

type rawMaterialService struct {
	materials   repository.RawMaterialRepository
	inventories repository.UserInventoryRepository
	events      EventPublisher
}

func NewRawMaterialService(materials repository.RawMaterialRepository, inventories repository.UserInventoryRepository, events EventPublisher) RawMaterialService {
	return &rawMaterialService{
		materials:   materials,
		inventories: inventories,
		events:      publisherOrNoop(events),
	}
}

func (s *rawMaterialService) Create(ctx context.Context, req RawMaterialRequest, actor Actor) (*model.RawMaterial, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(&req); err != nil {
		return nil, err
	}

	if existing, err := s.materials.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, apperror.Conflict(fmt.Sprintf("Raw material '%s' already exists", req.Name))
	}

	material := &model.RawMaterial{Name: req.Name, Quantity: req.Quantity, Unit: req.Unit}
	material.CreatedBy = actor.auditID()
	material.UpdatedBy = actor.auditID()

	if err := s.materials.Create(ctx, material); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, apperror.Conflict(fmt.Sprintf("Raw material '%s' already exists", req.Name))
		}
		return nil, apperror.Internal(err, "failed to create raw material")
	}

	s.publish(material, "material_created", actor)
	return material, nil
}

func (s *rawMaterialService) Update(ctx context.Context, id uuid.UUID, req RawMaterialRequest, actor Actor) (*model.RawMaterial, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(&req); err != nil {
		return nil, err
	}

	existing, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Raw material not found", "failed to load raw material")
	}
	if other, err := s.materials.FindByName(ctx, req.Name); err == nil && other.ID != existing.ID {
		return nil, apperror.Conflict(fmt.Sprintf("Raw material '%s' already exists", req.Name))
	}

	existing.Name = req.Name
	existing.Quantity = req.Quantity
	existing.Unit = req.Unit
	existing.UpdatedBy = actor.auditID()

	if err := s.materials.Update(ctx, existing); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, apperror.Conflict(fmt.Sprintf("Raw material '%s' already exists", req.Name))
		}
		return nil, apperror.Internal(err, "failed to update raw material")
	}

	updated, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load raw material")
	}
	s.publish(updated, "material_updated", actor)
	return updated, nil
}

func (s *rawMaterialService) Get(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error) {
	material, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Raw material not found", "failed to load raw material")
	}
	return material, nil
}

func (s *rawMaterialService) List(ctx context.Context) ([]model.RawMaterial, error) {
	materials, err := s.materials.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list raw materials")
	}
	return materials, nil
}

func (s *rawMaterialService) ListInventories(ctx context.Context, filter repository.UserInventoryFilter) ([]model.UserInventory, error) {
	rows, err := s.inventories.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list user inventories")
	}
	return rows, nil
}

func (s *rawMaterialService) publish(material *model.RawMaterial, action string, actor Actor) {
	s.events.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: action,
		Data: map[string]interface{}{
			"id":       material.ID,
			"name":     material.Name,
			"quantity": material.Quantity,
			"unit":     material.Unit,
		},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s saved raw material '%s'", actor.displayName(), material.Name),
	})
}
