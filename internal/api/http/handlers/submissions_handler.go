package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/api/dto"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/service"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// SubmissionsHandler handles coupon submission review.
type SubmissionsHandler struct {
	submissions *service.SubmissionService
	validator   *Validator
}

// NewSubmissionsHandler constructs the handler.
func NewSubmissionsHandler(submissionService *service.SubmissionService, validator *Validator) *SubmissionsHandler {
	return &SubmissionsHandler{submissions: submissionService, validator: validator}
}

// List GET /submissions.
func (h *SubmissionsHandler) List(c *fiber.Ctx) error {
	filter := service.SubmissionListFilter{Limit: parseIntQuery(c, "limit", 0)}
	if val := c.Query("status"); val != "" {
		status := domain.SubmissionStatus(val)
		filter.Status = &status
	}
	if val := c.Query("type"); val != "" {
		filter.Type = &val
	}
	submissions, err := h.submissions.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submissions})
}

// Get GET /submissions/:id.
func (h *SubmissionsHandler) Get(c *fiber.Ctx) error {
	submission, err := h.submissions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submission})
}

// UpdateCouponStatus PUT /submissions/:id/coupons/:index/status.
func (h *SubmissionsHandler) UpdateCouponStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return apperrors.NewValidationError("coupon index must be an integer", map[string]any{"index": c.Params("index")})
	}
	var req dto.CouponStatusRequest
	if err := h.validator.bind(c, &req); err != nil {
		return err
	}
	submission, err := h.submissions.UpdateCouponStatus(c.UserContext(), actor, c.Params("id"), index, domain.CouponStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submission})
}

// UpdateStatus PUT /submissions/:id/status.
func (h *SubmissionsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.SubmissionStatusRequest
	if err := h.validator.bind(c, &req); err != nil {
		return err
	}
	submission, err := h.submissions.UpdateAllCoupons(c.UserContext(), actor, c.Params("id"), domain.CouponStatus(req.Status), req.AdminNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submission})
}

// MarkEmailSent POST /submissions/:id/email-sent.
func (h *SubmissionsHandler) MarkEmailSent(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	submission, err := h.submissions.MarkEmailSent(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submission})
}
