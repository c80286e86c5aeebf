package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/verif-backoffice/internal/api/dto"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/service"
)

const defaultKeepAlive = 25 * time.Second

// NotificationsHandler serves the admin notification feed.
type NotificationsHandler struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	keepAlive     time.Duration
}

// NewNotificationsHandler constructs the handler.
func NewNotificationsHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationsHandler{notifications: notificationService, logger: logger, keepAlive: defaultKeepAlive}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	var (
		items []domain.Notification
		err   error
	)
	limit := parseIntQuery(c, "limit", 0)
	if parseBoolQuery(c, "unread", false) {
		items, err = h.notifications.ListUnread(c.UserContext(), limit)
	} else {
		items, err = h.notifications.List(c.UserContext(), limit)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Count GET /notifications/count.
func (h *NotificationsHandler) Count(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Count: count}})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	count, err := h.notifications.MarkAllRead(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Count: count}})
}

// Stream GET /notifications/stream. Pushes new notifications as server-sent events.
func (h *NotificationsHandler) Stream(c *fiber.Ctx) error {
	// The request context ends when this handler returns, long before the stream does.
	ctx, cancel := context.WithCancel(context.Background())
	updates, unsubscribe, err := h.notifications.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	keepAlive := h.keepAlive
	logger := h.logger
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil || w.Flush() != nil {
			return
		}
		for {
			select {
			case n, ok := <-updates:
				if !ok {
					return
				}
				payload, err := json.Marshal(n)
				if err != nil {
					logger.Warn("skipping unencodable notification", zap.String("notification_id", n.ID), zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "event: notification\nid: %s\ndata: %s\n\n", n.ID, payload)
			case <-ticker.C:
				fmt.Fprint(w, ": keepalive\n\n")
			}
			if err := w.Flush(); err != nil {
				logger.Debug("notification stream closed", zap.Error(err))
				return
			}
		}
	})
	return nil
}
