package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/service"
)

// StatisticsHandler serves the dashboard aggregates.
type StatisticsHandler struct {
	statistics *service.StatisticsService
}

// NewStatisticsHandler constructs the handler.
func NewStatisticsHandler(statisticsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statisticsService}
}

// Get GET /statistics.
func (h *StatisticsHandler) Get(c *fiber.Ctx) error {
	stats, err := h.statistics.Compute(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
