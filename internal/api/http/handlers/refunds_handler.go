package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/api/dto"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/service"
)

// RefundsHandler handles refund request review.
type RefundsHandler struct {
	refunds   *service.RefundService
	validator *Validator
}

// NewRefundsHandler constructs the handler.
func NewRefundsHandler(refundService *service.RefundService, validator *Validator) *RefundsHandler {
	return &RefundsHandler{refunds: refundService, validator: validator}
}

// List GET /refunds.
func (h *RefundsHandler) List(c *fiber.Ctx) error {
	filter := service.RefundListFilter{Limit: parseIntQuery(c, "limit", 0)}
	if val := c.Query("status"); val != "" {
		status := domain.RefundStatus(val)
		filter.Status = &status
	}
	refunds, err := h.refunds.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": refunds})
}

// GetByReference GET /refunds/:reference. Accepts a reference number or a document id.
func (h *RefundsHandler) GetByReference(c *fiber.Ctx) error {
	refund, err := h.refunds.GetByReference(c.UserContext(), c.Params("reference"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": refund})
}

// UpdateStatus PUT /refunds/:id/status.
func (h *RefundsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.RefundStatusRequest
	if err := h.validator.bind(c, &req); err != nil {
		return err
	}
	refund, err := h.refunds.UpdateStatus(c.UserContext(), actor, c.Params("id"), domain.RefundStatus(req.Status), req.AdminNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": refund})
}
