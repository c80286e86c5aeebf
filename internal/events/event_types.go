package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/verif-backoffice/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionCouponStatusChanged EventType = "submission_coupon_status_changed"
	EventSubmissionStatusChanged       EventType = "submission_status_changed"
	EventRefundStatusChanged           EventType = "refund_status_changed"
	EventContactMessageUpdated         EventType = "contact_message_updated"
	EventAdminRegistered               EventType = "admin_registered"
	EventNewSubmission                 EventType = "new_submission"
	EventNewRefundRequest              EventType = "new_refund_request"
	EventNewContactMessage             EventType = "new_contact_message"
)

// Actor identifies the admin behind an event. Zero for events raised by the arrival watcher.
type Actor struct {
	AdminID  string `json:"admin_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// ActorFromAdmin builds an Actor for an admin account.
func ActorFromAdmin(admin *domain.AdminAccount) Actor {
	if admin == nil {
		return Actor{}
	}
	return Actor{AdminID: admin.ID, Username: admin.Username}
}

// Name returns a printable actor name.
func (a Actor) Name() string {
	if a.Username != "" {
		return a.Username
	}
	if a.AdminID != "" {
		return a.AdminID
	}
	return "system"
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps a new event.
func NewEvent(eventType EventType, entityID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SubmissionCouponStatusChangedPayload payload.
type SubmissionCouponStatusChangedPayload struct {
	Email           string                  `json:"email"`
	CouponIndex     int                     `json:"coupon_index"`
	CouponCode      string                  `json:"coupon_code"`
	OldCouponStatus domain.CouponStatus     `json:"old_coupon_status"`
	NewCouponStatus domain.CouponStatus     `json:"new_coupon_status"`
	OldStatus       domain.SubmissionStatus `json:"old_status"`
	NewStatus       domain.SubmissionStatus `json:"new_status"`
	SubmissionType  string                  `json:"submission_type"`
	ReferenceNumber string                  `json:"reference_number,omitempty"`
}

// SubmissionStatusChangedPayload payload.
type SubmissionStatusChangedPayload struct {
	Email           string                  `json:"email"`
	OldStatus       domain.SubmissionStatus `json:"old_status"`
	NewStatus       domain.SubmissionStatus `json:"new_status"`
	SubmissionType  string                  `json:"submission_type"`
	ReferenceNumber string                  `json:"reference_number,omitempty"`
	AdminNotes      string                  `json:"admin_notes,omitempty"`
}

// RefundStatusChangedPayload payload.
type RefundStatusChangedPayload struct {
	ReferenceNumber string              `json:"reference_number"`
	Email           string              `json:"email"`
	FullName        string              `json:"full_name"`
	OldStatus       domain.RefundStatus `json:"old_status"`
	NewStatus       domain.RefundStatus `json:"new_status"`
	TotalAmount     string              `json:"total_amount"`
	AdminNotes      string              `json:"admin_notes,omitempty"`
}

// ContactMessageUpdatedPayload payload.
type ContactMessageUpdatedPayload struct {
	Subject string `json:"subject"`
	IsRead  bool   `json:"is_read"`
	Deleted bool   `json:"deleted,omitempty"`
}

// AdminRegisteredPayload payload.
type AdminRegisteredPayload struct {
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Name     string             `json:"name"`
	Status   domain.AdminStatus `json:"status"`
}

// NewSubmissionPayload payload.
type NewSubmissionPayload struct {
	Email       string `json:"email"`
	Type        string `json:"type"`
	CouponCount int    `json:"coupon_count"`
	TotalAmount string `json:"total_amount"`
}

// NewRefundRequestPayload payload.
type NewRefundRequestPayload struct {
	ReferenceNumber string `json:"reference_number"`
	FullName        string `json:"full_name"`
	TotalAmount     string `json:"total_amount"`
}

// NewContactMessagePayload payload.
type NewContactMessagePayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
}
