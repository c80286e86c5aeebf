package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/service"
)

// ContactsHandler handles the contact inbox.
type ContactsHandler struct {
	contacts *service.ContactService
}

// NewContactsHandler constructs the handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{contacts: contactService}
}

// List GET /contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	var (
		messages []domain.ContactMessage
		err      error
	)
	if parseBoolQuery(c, "unread", false) {
		messages, err = h.contacts.ListUnread(c.UserContext())
	} else {
		messages, err = h.contacts.List(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messages})
}

// Get GET /contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	msg, err := h.contacts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": msg})
}

// MarkRead POST /contacts/:id/read.
func (h *ContactsHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	msg, err := h.contacts.MarkRead(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": msg})
}

// MarkUnread POST /contacts/:id/unread.
func (h *ContactsHandler) MarkUnread(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	msg, err := h.contacts.MarkUnread(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": msg})
}

// Delete DELETE /contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.contacts.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
