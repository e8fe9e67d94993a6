package handler

import (
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransferHandler struct {
	service service.TransferService
	log     *logger.Logger
}

func NewTransferHandler(s service.TransferService, logg *logger.Logger) *TransferHandler {
	return &TransferHandler{service: s, log: logg}
}

// GetTransfers lists transfers newest first
// GET /api/v1/transfers?status&userId&rawMaterialId&search&from&to
func (h *TransferHandler) GetTransfers(c *fiber.Ctx) error {
	params := service.TransferListParams{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	var ok bool
	if params.UserID, ok = optionalUUIDQuery(c, "userId"); !ok {
		return response.BadRequest(c, "Invalid userId")
	}
	if params.RawMaterialID, ok = optionalUUIDQuery(c, "rawMaterialId"); !ok {
		return response.BadRequest(c, "Invalid rawMaterialId")
	}
	if params.From, ok = optionalDateQuery(c, "from"); !ok {
		return response.BadRequest(c, "Invalid from date")
	}
	if params.To, ok = optionalDateQuery(c, "to"); !ok {
		return response.BadRequest(c, "Invalid to date")
	}

	transfers, err := h.service.List(c.UserContext(), params)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(transfers)
}

// CreateTransfer issues raw material to a user
// POST /api/v1/transfers
func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	var req service.CreateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	transfer, err := h.service.Create(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(transfer)
}

// GET /api/v1/transfers/:id
func (h *TransferHandler) GetTransfer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid transfer ID")
	}

	transfer, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(transfer)
}

// UpdateTransfer applies one status transition
// PUT /api/v1/transfers/:id
func (h *TransferHandler) UpdateTransfer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid transfer ID")
	}

	var req service.UpdateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateStatus(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(updated)
}

// DeleteTransfer removes a transfer and reverses its counters
// DELETE /api/v1/transfers/:id
func (h *TransferHandler) DeleteTransfer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid transfer ID")
	}

	if err := h.service.Delete(c.UserContext(), id, actorFrom(c)); err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer deleted successfully"})
}
