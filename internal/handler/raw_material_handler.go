package handler

import (
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RawMaterialHandler struct {
	service service.RawMaterialService
	log     *logger.Logger
}

func NewRawMaterialHandler(s service.RawMaterialService, logg *logger.Logger) *RawMaterialHandler {
	return &RawMaterialHandler{service: s, log: logg}
}

func (h *RawMaterialHandler) GetRawMaterials(c *fiber.Ctx) error {
	materials, err := h.service.List(c.UserContext())
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(materials)
}

func (h *RawMaterialHandler) GetRawMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid raw material ID")
	}

	material, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(material)
}

func (h *RawMaterialHandler) CreateRawMaterial(c *fiber.Ctx) error {
	var req service.RawMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	material, err := h.service.Create(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(material)
}

func (h *RawMaterialHandler) UpdateRawMaterial(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid raw material ID")
	}

	var req service.RawMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	material, err := h.service.Update(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(material)
}

// GetUserInventories lists what each user currently holds
// GET /api/v1/user-inventories?userId&rawMaterialId
func (h *RawMaterialHandler) GetUserInventories(c *fiber.Ctx) error {
	var filter repository.UserInventoryFilter
	var ok bool
	if filter.UserID, ok = optionalUUIDQuery(c, "userId"); !ok {
		return response.BadRequest(c, "Invalid userId")
	}
	if filter.RawMaterialID, ok = optionalUUIDQuery(c, "rawMaterialId"); !ok {
		return response.BadRequest(c, "Invalid rawMaterialId")
	}

	inventories, err := h.service.ListInventories(c.UserContext(), filter)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(inventories)
}
