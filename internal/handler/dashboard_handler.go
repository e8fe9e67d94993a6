package handler

import (
	"go-handicraft-ops/internal/handler/response"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *logger.Logger
}

func NewDashboardHandler(s service.DashboardService, logg *logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, log: logg}
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.UserContext())
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(stats)
}
