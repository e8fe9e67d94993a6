package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/ws"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/logger"
	"go-handicraft-ops/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultFinishedNote = "Repair finished"

type CreateTransferRequest struct {
	UserID         uuid.UUID `json:"userId" validate:"uuid_required"`
	RawMaterialID  uuid.UUID `json:"rawMaterialId" validate:"uuid_required"`
	QuantityIssued int       `json:"quantityIssued" validate:"gt=0"`
	Notes          string    `json:"notes" validate:"max=2000"`
}

// UpdateTransferRequest drives one state-machine step. Optional fields are
// pointers so "absent" and "zero" stay distinguishable.
type UpdateTransferRequest struct {
	Status           string   `json:"status" validate:"required"`
	Notes            *string  `json:"notes"`
	QuantityReturned *int     `json:"quantityReturned"`
	RejectionType    *string  `json:"rejectionType"`
	RejectionImages  []string `json:"rejectionImages"`
	RejectionReason  *string  `json:"rejectionReason"`
	Version          *int     `json:"version"`
}

type TransferListParams struct {
	UserID        *uuid.UUID
	RawMaterialID *uuid.UUID
	Status        string
	Search        string
	From          *time.Time
	To            *time.Time
}

type TransferService interface {
	Create(ctx context.Context, req CreateTransferRequest, actor Actor) (*model.RawMaterialTransfer, error)
	Get(ctx context.Context, id uuid.UUID) (*model.RawMaterialTransfer, error)
	List(ctx context.Context, params TransferListParams) ([]model.RawMaterialTransfer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateTransferRequest, actor Actor) (*model.RawMaterialTransfer, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
}

type transferService struct {
	db          *gorm.DB
	transfers   repository.TransferRepository
	materials   repository.RawMaterialRepository
	inventories repository.UserInventoryRepository
	users       repository.UserRepository
	events      EventPublisher
	metrics     *metrics.Workflow
	log         *logger.Logger
	now         func() time.Time
}

func NewTransferService(
	db *gorm.DB,
	transfers repository.TransferRepository,
	materials repository.RawMaterialRepository,
	inventories repository.UserInventoryRepository,
	users repository.UserRepository,
	events EventPublisher,
	workflow *metrics.Workflow,
	logg *logger.Logger,
) TransferService {
	if workflow == nil {
		workflow = metrics.NewWorkflow(nil)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &transferService{
		db:          db,
		transfers:   transfers,
		materials:   materials,
		inventories: inventories,
		users:       users,
		events:      publisherOrNoop(events),
		metrics:     workflow,
		log:         logg,
		now:         time.Now,
	}
}

func (s *transferService) Create(ctx context.Context, req CreateTransferRequest, actor Actor) (*model.RawMaterialTransfer, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, req.UserID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if !exists {
		return nil, apperror.NotFound("User not found")
	}

	started := s.now()
	transfer := &model.RawMaterialTransfer{
		UserID:          req.UserID,
		RawMaterialID:   req.RawMaterialID,
		QuantityIssued:  req.QuantityIssued,
		Status:          model.TransferSent,
		Notes:           req.Notes,
		RejectionImages: datatypes.JSONSlice[string]{},
		Version:         1,
	}
	transfer.CreatedBy = actor.auditID()
	transfer.UpdatedBy = actor.auditID()

	var materialName string
	err = runInTx(ctx, s.db, func(tx *gorm.DB) error {
		material, err := s.materials.WithTx(tx).LockByID(ctx, req.RawMaterialID)
		if err != nil {
			return notFoundOr(err, "Raw material not found", "failed to load raw material")
		}
		if material.Quantity < req.QuantityIssued {
			return apperror.Validation(fmt.Sprintf("Insufficient stock: only %d %s available", material.Quantity, material.Unit))
		}
		materialName = material.Name

		if err := s.materials.WithTx(tx).AdjustQuantity(ctx, material.ID, -req.QuantityIssued, actor.auditID()); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return apperror.Validation("Insufficient stock")
			}
			return apperror.Internal(err, "failed to update stock")
		}
		if err := s.transfers.WithTx(tx).Create(ctx, transfer); err != nil {
			return apperror.Internal(err, "failed to create transfer")
		}
		return nil
	})
	s.metrics.ObserveDuration("create", s.now().Sub(started))
	if err != nil {
		return nil, err
	}

	created, err := s.transfers.FindByID(ctx, transfer.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load transfer")
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventTransferUpdate,
		Action:  "transfer_created",
		Data:    created,
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s issued %d of '%s'", actor.displayName(), req.QuantityIssued, materialName),
	})
	return created, nil
}

func (s *transferService) Get(ctx context.Context, id uuid.UUID) (*model.RawMaterialTransfer, error) {
	transfer, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Transfer not found", "failed to load transfer")
	}
	return transfer, nil
}

func (s *transferService) List(ctx context.Context, params TransferListParams) ([]model.RawMaterialTransfer, error) {
	filter := repository.TransferFilter{
		UserID:        params.UserID,
		RawMaterialID: params.RawMaterialID,
		Search:        params.Search,
		From:          params.From,
		To:            params.To,
	}
	if params.Status != "" {
		status, err := model.ParseTransferStatus(params.Status)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("Invalid status filter. Allowed: %s, %s",
				model.TransferSent, model.JoinTransferStatuses(model.UpdatableTransferStatuses)))
		}
		filter.Status = &status
	}

	transfers, err := s.transfers.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list transfers")
	}
	return transfers, nil
}

// UpdateStatus validates the requested step, then applies every counter change
// and the status write in one transaction with the transfer and material rows locked.
func (s *transferService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateTransferRequest, actor Actor) (*model.RawMaterialTransfer, error) {
	target, err := model.ParseTransferStatus(req.Status)
	if err != nil || !target.IsUpdatable() {
		s.metrics.Rejected("invalid", "invalid_status")
		return nil, apperror.Validation(fmt.Sprintf("Invalid status. Allowed: %s", model.JoinTransferStatuses(model.UpdatableTransferStatuses)))
	}
	if req.QuantityReturned != nil && *req.QuantityReturned < 0 {
		s.metrics.Rejected(target.String(), "invalid_quantity")
		return nil, apperror.Validation("Return quantity cannot be negative")
	}

	ctx = s.log.WithFields(ctx, map[string]any{"transfer_id": id.String(), "target_status": target.String()})
	started := s.now()

	var previous model.TransferStatus
	var restored, discarded int
	err = runInTx(ctx, s.db, func(tx *gorm.DB) error {
		transfers := s.transfers.WithTx(tx)
		materials := s.materials.WithTx(tx)
		inventories := s.inventories.WithTx(tx)

		current, err := transfers.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.metrics.Rejected(target.String(), "not_found")
			}
			return notFoundOr(err, "Transfer not found", "failed to load transfer")
		}
		previous = current.Status

		if req.Version != nil && *req.Version != current.Version {
			s.metrics.Rejected(target.String(), "stale_version")
			return apperror.New(apperror.CodeStaleWrite,
				fmt.Sprintf("Transfer was modified by another request (expected version %d, current %d)", *req.Version, current.Version))
		}
		if !current.Status.CanTransitionTo(target) {
			s.metrics.Rejected(target.String(), "disallowed")
			return apperror.Conflict(fmt.Sprintf("Cannot change transfer status from %s to %s", current.Status, target))
		}

		updates := map[string]interface{}{
			"status":     target,
			"updated_by": actor.auditID(),
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}

		switch target {
		case model.TransferUsed:
			material, err := materials.LockByID(ctx, current.RawMaterialID)
			if err != nil {
				return notFoundOr(err, "Raw material not found", "failed to load raw material")
			}
			if err := inventories.Increment(ctx, current.UserID, current.RawMaterialID, material.Unit, current.QuantityIssued, actor.auditID()); err != nil {
				return apperror.Internal(err, "failed to update user inventory")
			}
			updates["quantity_approved"] = current.QuantityIssued
			updates["quantity_rejected"] = 0
			updates["rejection_images"] = datatypes.JSONSlice[string]{}

		case model.TransferReturned:
			returnQty := current.QuantityIssued
			if req.QuantityReturned != nil {
				returnQty = *req.QuantityReturned
			}
			if returnQty > current.QuantityIssued {
				s.metrics.Rejected(target.String(), "over_return")
				return apperror.Validation(fmt.Sprintf("Return quantity cannot exceed issued quantity (max %d)", current.QuantityIssued))
			}
			approvedQty := current.QuantityIssued - returnQty

			material, err := materials.LockByID(ctx, current.RawMaterialID)
			if err != nil {
				return notFoundOr(err, "Raw material not found", "failed to load raw material")
			}
			if err := materials.AdjustQuantity(ctx, material.ID, returnQty, actor.auditID()); err != nil {
				return apperror.Internal(err, "failed to restore stock")
			}
			if approvedQty > 0 {
				if err := inventories.Increment(ctx, current.UserID, current.RawMaterialID, material.Unit, approvedQty, actor.auditID()); err != nil {
					return apperror.Internal(err, "failed to update user inventory")
				}
			}
			restored = returnQty
			updates["quantity_rejected"] = returnQty
			updates["quantity_approved"] = approvedQty
			updates["rejection_reason"] = firstNonNil(req.RejectionType, req.RejectionReason)
			updates["rejection_images"] = imagesOrEmpty(req.RejectionImages)

		case model.TransferFinished:
			// restores the full issued quantity regardless of what RETURNED already restored
			material, err := materials.LockByID(ctx, current.RawMaterialID)
			if err != nil {
				return notFoundOr(err, "Raw material not found", "failed to load raw material")
			}
			if err := materials.AdjustQuantity(ctx, material.ID, current.QuantityIssued, actor.auditID()); err != nil {
				return apperror.Internal(err, "failed to restore stock")
			}
			restored = current.QuantityIssued
			if req.Notes == nil || *req.Notes == "" {
				updates["notes"] = defaultFinishedNote
			}

		case model.TransferRepairing:
			// status only

		case model.TransferUnused:
			discarded = current.QuantityIssued
			updates["quantity_rejected"] = current.QuantityIssued
			updates["quantity_approved"] = 0
			updates["rejection_reason"] = firstNonNil(req.RejectionReason, req.RejectionType)

		case model.TransferCancelled:
			updates["quantity_rejected"] = 0
			updates["quantity_approved"] = 0
			updates["rejection_images"] = datatypes.JSONSlice[string]{}
		}

		affected, err := transfers.UpdateVersioned(ctx, current.ID, current.Version, updates)
		if err != nil {
			return apperror.Internal(err, "failed to update transfer")
		}
		if affected == 0 {
			s.metrics.Rejected(target.String(), "stale_version")
			return apperror.New(apperror.CodeStaleWrite, "Transfer was modified by another request")
		}
		return nil
	})
	s.metrics.ObserveDuration("update_status", s.now().Sub(started))
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeInternal {
			s.log.Error(ctx, "transfer status update failed", err)
		}
		return nil, err
	}

	s.metrics.Transition(previous.String(), target.String())
	s.metrics.StockRestored(restored)
	s.metrics.StockDiscarded(discarded)

	updated, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load transfer")
	}

	s.log.Info(ctx, "transfer status updated")
	s.events.Publish(ws.Event{
		Type:    ws.EventTransferUpdate,
		Action:  "status_changed",
		Data:    updated,
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s marked transfer as %s", actor.displayName(), target),
	})
	if restored > 0 {
		s.publishStock(ctx, updated, actor)
	}
	return updated, nil
}

// Delete removes a transfer, reversing the inventory and stock effects of an approved (USED) one.
func (s *transferService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	ctx = s.log.WithField(ctx, "transfer_id", id.String())
	started := s.now()

	var deleted *model.RawMaterialTransfer
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		transfers := s.transfers.WithTx(tx)

		current, err := transfers.LockByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Transfer not found", "failed to load transfer")
		}

		if current.Status == model.TransferUsed {
			materials := s.materials.WithTx(tx)
			inventories := s.inventories.WithTx(tx)

			if _, err := materials.LockByID(ctx, current.RawMaterialID); err != nil {
				return notFoundOr(err, "Raw material not found", "failed to load raw material")
			}
			inv, err := inventories.LockByUserAndMaterial(ctx, current.UserID, current.RawMaterialID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// nothing held by the user anymore
			case err != nil:
				return apperror.Internal(err, "failed to load user inventory")
			case inv.Quantity <= current.QuantityIssued:
				if err := inventories.Delete(ctx, inv.ID); err != nil {
					return apperror.Internal(err, "failed to remove user inventory")
				}
			default:
				if err := inventories.Decrement(ctx, inv.ID, current.QuantityIssued, actor.auditID()); err != nil {
					return apperror.Internal(err, "failed to update user inventory")
				}
			}
			if err := materials.AdjustQuantity(ctx, current.RawMaterialID, current.QuantityIssued, actor.auditID()); err != nil {
				return apperror.Internal(err, "failed to restore stock")
			}
		}

		// every other status only drops the row; a SENT transfer's issued units stay out of stock
		if err := transfers.Delete(ctx, current.ID); err != nil {
			return notFoundOr(err, "Transfer not found", "failed to delete transfer")
		}
		deleted = current
		return nil
	})
	s.metrics.ObserveDuration("delete", s.now().Sub(started))
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeInternal {
			s.log.Error(ctx, "transfer delete failed", err)
		}
		return err
	}

	if deleted.Status == model.TransferUsed {
		s.metrics.StockRestored(deleted.QuantityIssued)
		s.publishStock(ctx, deleted, actor)
	}
	s.events.Publish(ws.Event{
		Type:    ws.EventTransferUpdate,
		Action:  "transfer_deleted",
		Data:    map[string]interface{}{"id": deleted.ID, "status": deleted.Status},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s deleted a %s transfer", actor.displayName(), deleted.Status),
	})
	return nil
}

func (s *transferService) publishStock(ctx context.Context, transfer *model.RawMaterialTransfer, actor Actor) {
	material, err := s.materials.FindByID(ctx, transfer.RawMaterialID)
	if err != nil {
		return
	}
	s.events.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: "stock_restored",
		Data: map[string]interface{}{
			"id":       material.ID,
			"name":     material.Name,
			"quantity": material.Quantity,
			"unit":     material.Unit,
		},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("Stock of '%s' is now %d", material.Name, material.Quantity),
	})
}

func firstNonNil(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

func imagesOrEmpty(images []string) datatypes.JSONSlice[string] {
	if images == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](images)
}
