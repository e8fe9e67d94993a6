package handler

import (
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type VendorHandler struct {
	service service.VendorService
	log     *logger.Logger
}

func NewVendorHandler(s service.VendorService, logg *logger.Logger) *VendorHandler {
	return &VendorHandler{service: s, log: logg}
}

// GET /api/v1/vendors?search
func (h *VendorHandler) GetVendors(c *fiber.Ctx) error {
	vendors, err := h.service.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(vendors)
}

// POST /api/v1/vendors
func (h *VendorHandler) CreateVendor(c *fiber.Ctx) error {
	var req service.VendorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid JSON")
	}

	vendor, err := h.service.Create(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(vendor)
}
