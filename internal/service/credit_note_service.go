package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/ws"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/database"
	"go-handicraft-ops/pkg/logger"
	"go-handicraft-ops/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const creditNoteNumberIndex = "idx_vendor_credit_notes_number"

type CreateCreditNoteRequest struct {
	VendorID         uuid.UUID        `json:"vendorId" validate:"uuid_required"`
	CreditNoteNumber string           `json:"creditNoteNumber" validate:"required,max=50"`
	BillNumber       string           `json:"billNumber" validate:"max=50"`
	Reason           string           `json:"reason" validate:"required"`
	Amount           decimal.Decimal  `json:"amount"`
	TaxAmount        *decimal.Decimal `json:"taxAmount"`
	Notes            string           `json:"notes"`
	Status           string           `json:"status"`
}

type UpdateCreditNoteRequest struct {
	ID            uuid.UUID `json:"id" validate:"uuid_required"`
	Status        *string   `json:"status"`
	Notes         *string   `json:"notes"`
	AppliedToBill *bool     `json:"appliedToBill"`
	AppliedBillID *string   `json:"appliedBillId"`
}

type CreditNoteListParams struct {
	Search   string
	Status   string
	VendorID *uuid.UUID
}

type CreditNoteService interface {
	Create(ctx context.Context, req CreateCreditNoteRequest, actor Actor) (*model.VendorCreditNote, error)
	Get(ctx context.Context, id uuid.UUID) (*model.VendorCreditNote, error)
	List(ctx context.Context, params CreditNoteListParams) ([]model.VendorCreditNote, error)
	Update(ctx context.Context, req UpdateCreditNoteRequest, actor Actor) (*model.VendorCreditNote, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
}

type creditNoteService struct {
	notes   repository.CreditNoteRepository
	vendors repository.VendorRepository
	events  EventPublisher
	metrics *metrics.Workflow
	log     *logger.Logger
	now     func() time.Time
}

func NewCreditNoteService(
	notes repository.CreditNoteRepository,
	vendors repository.VendorRepository,
	events EventPublisher,
	workflow *metrics.Workflow,
	logg *logger.Logger,
) CreditNoteService {
	if workflow == nil {
		workflow = metrics.NewWorkflow(nil)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &creditNoteService{
		notes:   notes,
		vendors: vendors,
		events:  publisherOrNoop(events),
		metrics: workflow,
		log:     logg,
		now:     time.Now,
	}
}

func (s *creditNoteService) Create(ctx context.Context, req CreateCreditNoteRequest, actor Actor) (*model.VendorCreditNote, error) {
	req.CreditNoteNumber = strings.TrimSpace(req.CreditNoteNumber)
	req.Reason = strings.TrimSpace(req.Reason)
	if err := validate(&req); err != nil {
		return nil, err
	}
	// money is stored with two decimals; validate what will be stored
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperror.Validation("Amount must be greater than 0")
	}
	tax := decimal.Zero
	if req.TaxAmount != nil {
		tax = req.TaxAmount.Round(2)
	}
	if tax.IsNegative() {
		return nil, apperror.Validation("Tax amount cannot be negative")
	}

	status := model.CreditNoteDraft
	if req.Status != "" {
		parsed, err := model.ParseCreditNoteStatus(req.Status)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("Invalid status. Allowed: %s", model.CreditNoteStatusList()))
		}
		status = parsed
	}

	exists, err := s.vendors.Exists(ctx, req.VendorID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load vendor")
	}
	if !exists {
		return nil, apperror.NotFound("Vendor not found")
	}

	taken, err := s.notes.NumberTaken(ctx, req.CreditNoteNumber, nil)
	if err != nil {
		return nil, apperror.Internal(err, "failed to check credit note number")
	}
	if taken {
		s.metrics.CreditNote("duplicate_number")
		return nil, apperror.Conflict(fmt.Sprintf("Credit note number '%s' already exists", req.CreditNoteNumber))
	}

	note := &model.VendorCreditNote{
		CreditNoteNumber: req.CreditNoteNumber,
		VendorID:         req.VendorID,
		BillNumber:       req.BillNumber,
		Reason:           req.Reason,
		Amount:           amount,
		TaxAmount:        tax,
		TotalAmount:      amount.Add(tax),
		Status:           status,
		Notes:            req.Notes,
	}
	if status == model.CreditNoteIssued {
		issued := s.now()
		note.IssuedDate = &issued
	}
	note.CreatedBy = actor.auditID()
	note.UpdatedBy = actor.auditID()

	if err := s.notes.Create(ctx, note); err != nil {
		// lost a race with a concurrent insert of the same number
		if database.IsUniqueViolation(err, creditNoteNumberIndex) {
			s.metrics.CreditNote("duplicate_number")
			return nil, apperror.Conflict(fmt.Sprintf("Credit note number '%s' already exists", req.CreditNoteNumber))
		}
		s.log.Error(ctx, "create credit note failed", err)
		return nil, apperror.Internal(err, "failed to create credit note")
	}
	s.metrics.CreditNote("created")

	created, err := s.notes.FindByID(ctx, note.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load credit note")
	}
	s.publish(created, "credit_note_created", actor)
	return created, nil
}

func (s *creditNoteService) Get(ctx context.Context, id uuid.UUID) (*model.VendorCreditNote, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Credit note not found", "failed to load credit note")
	}
	return note, nil
}

func (s *creditNoteService) List(ctx context.Context, params CreditNoteListParams) ([]model.VendorCreditNote, error) {
	filter := repository.CreditNoteFilter{
		Search:   strings.TrimSpace(params.Search),
		VendorID: params.VendorID,
	}
	if params.Status != "" {
		status, err := model.ParseCreditNoteStatus(params.Status)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("Invalid status. Allowed: %s", model.CreditNoteStatusList()))
		}
		filter.Status = &status
	}
	notes, err := s.notes.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list credit notes")
	}
	return notes, nil
}

// Update applies a partial change. Status moves follow the credit-note lifecycle;
// the applied flag sets or clears appliedDate and appliedBillId together.
func (s *creditNoteService) Update(ctx context.Context, req UpdateCreditNoteRequest, actor Actor) (*model.VendorCreditNote, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	if req.AppliedToBill != nil && *req.AppliedToBill && (req.AppliedBillID == nil || strings.TrimSpace(*req.AppliedBillID) == "") {
		return nil, apperror.Validation("appliedBillId is required when appliedToBill is true")
	}

	current, err := s.notes.FindByID(ctx, req.ID)
	if err != nil {
		return nil, notFoundOr(err, "Credit note not found", "failed to load credit note")
	}

	updates := map[string]interface{}{"updated_by": actor.auditID()}
	event := "updated"

	if req.Status != nil {
		next, err := model.ParseCreditNoteStatus(*req.Status)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("Invalid status. Allowed: %s", model.CreditNoteStatusList()))
		}
		if !current.Status.CanTransitionTo(next) {
			s.metrics.CreditNote("transition_rejected")
			return nil, apperror.Conflict(fmt.Sprintf("Cannot change credit note status from %s to %s", current.Status, next))
		}
		if next != current.Status {
			updates["status"] = next
			event = strings.ToLower(string(next))
			if next == model.CreditNoteIssued {
				updates["issued_date"] = s.now()
			}
		}
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.AppliedToBill != nil {
		updates["applied_to_bill"] = *req.AppliedToBill
		if *req.AppliedToBill {
			updates["applied_date"] = s.now()
			updates["applied_bill_id"] = strings.TrimSpace(*req.AppliedBillID)
		} else {
			updates["applied_date"] = nil
			updates["applied_bill_id"] = nil
		}
	}

	if err := s.notes.Update(ctx, current.ID, updates); err != nil {
		return nil, notFoundOr(err, "Credit note not found", "failed to update credit note")
	}
	s.metrics.CreditNote(event)

	updated, err := s.notes.FindByID(ctx, current.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load credit note")
	}
	s.publish(updated, "credit_note_updated", actor)
	return updated, nil
}

// Delete removes a credit note. Only DRAFT notes may be deleted; posted notes are immutable.
func (s *creditNoteService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	current, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Credit note not found", "failed to load credit note")
	}
	if current.Status != model.CreditNoteDraft {
		s.metrics.CreditNote("delete_rejected")
		return apperror.Conflict(fmt.Sprintf("Only DRAFT credit notes can be deleted (current status: %s)", current.Status))
	}
	if err := s.notes.DeleteDraft(ctx, id); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Internal(err, "failed to delete credit note")
		}
		// the row vanished or left DRAFT after the status check
		latest, findErr := s.notes.FindByID(ctx, id)
		if findErr != nil {
			return notFoundOr(findErr, "Credit note not found", "failed to load credit note")
		}
		s.metrics.CreditNote("delete_rejected")
		return apperror.Conflict(fmt.Sprintf("Only DRAFT credit notes can be deleted (current status: %s)", latest.Status))
	}
	s.metrics.CreditNote("deleted")

	s.events.Publish(ws.Event{
		Type:    ws.EventCreditNoteUpdate,
		Action:  "credit_note_deleted",
		Data:    map[string]interface{}{"id": current.ID, "creditNoteNumber": current.CreditNoteNumber},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s deleted credit note %s", actor.displayName(), current.CreditNoteNumber),
	})
	return nil
}

func (s *creditNoteService) publish(note *model.VendorCreditNote, action string, actor Actor) {
	s.events.Publish(ws.Event{
		Type:    ws.EventCreditNoteUpdate,
		Action:  action,
		Data:    note,
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s saved credit note %s (%s)", actor.displayName(), note.CreditNoteNumber, note.Status),
	})
}
