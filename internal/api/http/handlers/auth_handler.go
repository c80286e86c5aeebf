package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/api/dto"
	"github.com/spec-kit/verif-backoffice/internal/service"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	validator   *Validator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, validator *Validator) *AuthHandler {
	return &AuthHandler{authService: authService, validator: validator}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := h.validator.bind(c, &req); err != nil {
		return err
	}
	result, err := h.authService.Login(c.UserContext(), req.Login(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:          result.Token,
		ExpiresAt:      result.ExpiresAt,
		SessionID:      result.Session.ID,
		Admin:          result.Admin,
		PasswordStatus: passwordStatusResponse(result.PasswordStatus),
	}})
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterAdminRequest
	if err := h.validator.bind(c, &req); err != nil {
		return err
	}
	admin, err := h.authService.RegisterAdmin(c.UserContext(), service.RegisterAdminInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": admin})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.UserContext(), principal.Session.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MeResponse{
		Admin:            principal.Admin.WithoutSecrets(),
		SessionExpiresAt: principal.Session.ExpiresAt,
		PasswordStatus:   passwordStatusResponse(h.authService.PasswordStatus(principal.Admin)),
	}})
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := h.validator.bind(c, &req); err != nil {
		return err
	}
	if err := h.authService.ChangePassword(c.UserContext(), principal.Admin.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func passwordStatusResponse(status service.PasswordStatus) dto.PasswordStatusResponse {
	return dto.PasswordStatusResponse{
		MustChange:      status.MustChange,
		LastChanged:     status.LastChanged,
		DaysSinceChange: status.DaysSinceChange,
		MaxAgeDays:      status.MaxAgeDays,
	}
}
