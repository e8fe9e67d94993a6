package handler

import (
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreditNoteHandler struct {
	service service.CreditNoteService
	log     *logger.Logger
}

func NewCreditNoteHandler(s service.CreditNoteService, logg *logger.Logger) *CreditNoteHandler {
	return &CreditNoteHandler{service: s, log: logg}
}

// GET /api/v1/vendor-credit-notes?search&status&vendorId
func (h *CreditNoteHandler) GetCreditNotes(c *fiber.Ctx) error {
	vendorID, ok := optionalUUIDQuery(c, "vendorId")
	if !ok {
		return response.BadRequest(c, "Invalid vendorId")
	}

	notes, err := h.service.List(c.UserContext(), service.CreditNoteListParams{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		VendorID: vendorID,
	})
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(notes)
}

// GET /api/v1/vendor-credit-notes/:id
func (h *CreditNoteHandler) GetCreditNote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid credit note ID")
	}

	note, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(note)
}

// POST /api/v1/vendor-credit-notes
func (h *CreditNoteHandler) CreateCreditNote(c *fiber.Ctx) error {
	var req service.CreateCreditNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	note, err := h.service.Create(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// UpdateCreditNote takes the note id in the body
// PUT /api/v1/vendor-credit-notes
func (h *CreditNoteHandler) UpdateCreditNote(c *fiber.Ctx) error {
	var req service.UpdateCreditNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	note, err := h.service.Update(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(note)
}

// DELETE /api/v1/vendor-credit-notes?id=
func (h *CreditNoteHandler) DeleteCreditNote(c *fiber.Ctx) error {
	raw := c.Query("id")
	if raw == "" {
		return response.BadRequest(c, "Credit note ID is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return response.BadRequest(c, "Invalid credit note ID")
	}

	if err := h.service.Delete(c.UserContext(), id, actorFrom(c)); err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Credit note deleted successfully"})
}
