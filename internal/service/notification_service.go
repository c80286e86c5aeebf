package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/verif-backoffice/internal/config"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/feed"
	"github.com/spec-kit/verif-backoffice/internal/messaging"
	"github.com/spec-kit/verif-backoffice/internal/repository"
)

// NotificationService turns domain events into admin notifications and outbound commands.
type NotificationService struct {
	notifications repository.NotificationRepository
	feed          feed.Feed
	publisher     messaging.Publisher
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
	now           func() time.Time
}

// NotificationDependencies bundles requirements for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	Feed             feed.Feed
	Publisher        messaging.Publisher
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		feed:          deps.Feed,
		publisher:     deps.Publisher,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		cfg:           cfg,
		now:           time.Now,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventNewSubmission, n.handleNewSubmission)
	n.dispatcher.Subscribe(events.EventSubmissionCouponStatusChanged, n.handleCouponStatusChanged)
	n.dispatcher.Subscribe(events.EventSubmissionStatusChanged, n.handleSubmissionStatusChanged)
	n.dispatcher.Subscribe(events.EventNewRefundRequest, n.handleNewRefundRequest)
	n.dispatcher.Subscribe(events.EventRefundStatusChanged, n.handleRefundStatusChanged)
	n.dispatcher.Subscribe(events.EventNewContactMessage, n.handleNewContactMessage)
	n.dispatcher.Subscribe(events.EventContactMessageUpdated, n.handleContactMessageUpdated)
	n.dispatcher.Subscribe(events.EventAdminRegistered, n.handleAdminRegistered)
}

// List returns notifications newest first.
func (n *NotificationService) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	return n.notifications.List(ctx, false, clampLimit(limit))
}

// ListUnread returns unread notifications newest first.
func (n *NotificationService) ListUnread(ctx context.Context, limit int) ([]domain.Notification, error) {
	return n.notifications.List(ctx, true, clampLimit(limit))
}

// UnreadCount counts unread notifications.
func (n *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	return n.notifications.CountUnread(ctx)
}

// MarkRead flags one notification as read.
func (n *NotificationService) MarkRead(ctx context.Context, id string) error {
	return n.notifications.MarkRead(ctx, id, n.now().UTC())
}

// MarkAllRead flags every unread notification as read and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context) (int, error) {
	unread, err := n.notifications.List(ctx, true, 0)
	if err != nil {
		return 0, err
	}
	now := n.now().UTC()
	for _, item := range unread {
		if err := n.notifications.MarkRead(ctx, item.ID, now); err != nil {
			return 0, err
		}
	}
	return len(unread), nil
}

// Subscribe attaches a live listener to the notification feed.
func (n *NotificationService) Subscribe(ctx context.Context) (<-chan domain.Notification, func(), error) {
	return n.feed.Subscribe(ctx)
}

func (n *NotificationService) handleNewSubmission(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.NewSubmissionPayload)
	n.logger.Info("NewSubmission", zap.String("submission_id", event.EntityID))
	return n.notify(ctx, domain.NotificationNewSubmission,
		"New submission",
		fmt.Sprintf("%s sent %d %s coupon(s) totalling %s", payload.Email, payload.CouponCount, payload.Type, payload.TotalAmount),
		map[string]any{"submissionId": event.EntityID, "type": payload.Type})
}

func (n *NotificationService) handleCouponStatusChanged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SubmissionCouponStatusChangedPayload)
	n.logger.Info("SubmissionCouponStatusChanged",
		zap.String("submission_id", event.EntityID),
		zap.Int("coupon_index", payload.CouponIndex),
		zap.String("coupon_status", string(payload.NewCouponStatus)),
		zap.String("actor", event.Actor.Name()))
	return nil
}

func (n *NotificationService) handleSubmissionStatusChanged(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SubmissionStatusChangedPayload)
	n.logger.Info("SubmissionStatusChanged",
		zap.String("submission_id", event.EntityID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	if err := n.notify(ctx, domain.NotificationSubmissionUpdated,
		"Submission updated",
		fmt.Sprintf("Submission from %s is now %s (by %s)", payload.Email, payload.NewStatus, event.Actor.Name()),
		map[string]any{"submissionId": event.EntityID, "status": string(payload.NewStatus)}); err != nil {
		return err
	}

	switch payload.NewStatus {
	case domain.SubmissionStatusVerified, domain.SubmissionStatusPartiallyVerified:
		n.dispatch(ctx, messaging.CommandGeneratePDF, payload.Email, "submission_certificate", "", event)
		n.dispatch(ctx, messaging.CommandSendEmail, payload.Email, "submission_"+string(payload.NewStatus),
			"Your coupons have been verified", event)
	case domain.SubmissionStatusRejected:
		n.dispatch(ctx, messaging.CommandSendEmail, payload.Email, "submission_rejected",
			"Your coupons could not be verified", event)
	case domain.SubmissionStatusPendingCorrection:
		n.dispatch(ctx, messaging.CommandSendEmail, payload.Email, "submission_pending_correction",
			"A correction is needed on your submission", event)
	}
	return nil
}

func (n *NotificationService) handleNewRefundRequest(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.NewRefundRequestPayload)
	n.logger.Info("NewRefundRequest", zap.String("refund_id", event.EntityID))
	return n.notify(ctx, domain.NotificationNewRefundRequest,
		"New refund request",
		fmt.Sprintf("%s asked for a refund of %s (%s)", payload.FullName, payload.TotalAmount, payload.ReferenceNumber),
		map[string]any{"refundId": event.EntityID, "referenceNumber": payload.ReferenceNumber})
}

func (n *NotificationService) handleRefundStatusChanged(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.RefundStatusChangedPayload)
	n.logger.Info("RefundStatusChanged",
		zap.String("refund_id", event.EntityID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	if err := n.notify(ctx, domain.NotificationRefundUpdated,
		"Refund updated",
		fmt.Sprintf("Refund %s is now %s (by %s)", payload.ReferenceNumber, payload.NewStatus, event.Actor.Name()),
		map[string]any{"refundId": event.EntityID, "referenceNumber": payload.ReferenceNumber, "status": string(payload.NewStatus)}); err != nil {
		return err
	}

	if payload.NewStatus == domain.RefundStatusPending || payload.NewStatus == payload.OldStatus {
		return nil
	}
	n.dispatch(ctx, messaging.CommandSendEmail, payload.Email, "refund_"+string(payload.NewStatus),
		"Your refund request "+payload.ReferenceNumber, event)
	if payload.NewStatus == domain.RefundStatusCompleted {
		n.dispatch(ctx, messaging.CommandGeneratePDF, payload.Email, "refund_receipt", "", event)
	}
	return nil
}

func (n *NotificationService) handleNewContactMessage(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.NewContactMessagePayload)
	n.logger.Info("NewContactMessage", zap.String("contact_id", event.EntityID))
	return n.notify(ctx, domain.NotificationNewContactMessage,
		"New contact message",
		fmt.Sprintf("%s: %s", payload.Name, payload.Subject),
		map[string]any{"messageId": event.EntityID})
}

func (n *NotificationService) handleContactMessageUpdated(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ContactMessageUpdatedPayload)
	state := "unread"
	switch {
	case payload.Deleted:
		state = "deleted"
	case payload.IsRead:
		state = "read"
	}
	n.logger.Info("ContactMessageUpdated", zap.String("contact_id", event.EntityID), zap.String("state", state))
	return n.notify(ctx, domain.NotificationContactMessageUpdated,
		"Contact message updated",
		fmt.Sprintf("%q marked %s by %s", payload.Subject, state, event.Actor.Name()),
		map[string]any{"messageId": event.EntityID, "state": state})
}

func (n *NotificationService) handleAdminRegistered(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AdminRegisteredPayload)
	n.logger.Info("AdminRegistered", zap.String("admin_id", event.EntityID), zap.String("status", string(payload.Status)))
	return n.notify(ctx, domain.NotificationAdminRegistered,
		"New admin registration",
		fmt.Sprintf("%s (%s) registered and is %s", payload.Username, payload.Email, strings.ReplaceAll(string(payload.Status), "_", " ")),
		map[string]any{"adminId": event.EntityID})
}

// notify stores a notification and pushes it to live listeners.
func (n *NotificationService) notify(ctx context.Context, kind domain.NotificationType, title, message string, data map[string]any) error {
	item := &domain.Notification{
		Type:      kind,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: n.now().UTC(),
	}
	if err := n.notifications.Create(ctx, item); err != nil {
		return err
	}
	if n.feed != nil {
		if err := n.feed.Publish(ctx, *item); err != nil {
			n.logger.Warn("feed publish failed", zap.String("notification_id", item.ID), zap.Error(err))
		}
	}
	return nil
}

func (n *NotificationService) dispatch(ctx context.Context, kind messaging.CommandKind, target, template, subject string, event events.Event) {
	if n.publisher == nil || strings.TrimSpace(target) == "" {
		return
	}
	cmd := messaging.Command{
		Kind:     kind,
		Target:   target,
		Template: template,
		Subject:  subject,
		Data: map[string]any{
			"entityId":  event.EntityID,
			"eventType": string(event.Type),
			"payload":   event.Payload,
		},
		CreatedAt: n.now().UTC(),
	}
	if kind == messaging.CommandSendEmail {
		cmd.From = n.cfg.EmailFrom
	}
	if err := n.publisher.Publish(ctx, cmd); err != nil {
		n.logger.Warn("command dispatch failed",
			zap.String("kind", string(kind)),
			zap.String("template", template),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}
