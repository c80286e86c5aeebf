package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/service"
)

// AdminsHandler exposes admin account management.
type AdminsHandler struct {
	admins *service.AdminService
}

// NewAdminsHandler constructs the handler.
func NewAdminsHandler(adminService *service.AdminService) *AdminsHandler {
	return &AdminsHandler{admins: adminService}
}

// List GET /admins.
func (h *AdminsHandler) List(c *fiber.Ctx) error {
	admins, err := h.admins.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": admins})
}

// ListPending GET /admins/pending.
func (h *AdminsHandler) ListPending(c *fiber.Ctx) error {
	admins, err := h.admins.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": admins})
}

// Get GET /admins/:id.
func (h *AdminsHandler) Get(c *fiber.Ctx) error {
	admin, err := h.admins.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": admin})
}

// Authorize POST /admins/:id/authorize.
func (h *AdminsHandler) Authorize(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	admin, err := h.admins.Authorize(c.UserContext(), principal.Admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": admin})
}

// Revoke POST /admins/:id/revoke.
func (h *AdminsHandler) Revoke(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	admin, err := h.admins.Revoke(c.UserContext(), principal.Admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": admin})
}

// Deactivate POST /admins/:id/deactivate.
func (h *AdminsHandler) Deactivate(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	admin, err := h.admins.Deactivate(c.UserContext(), principal.Admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": admin})
}
