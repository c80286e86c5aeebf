package domain

import "time"

// NotificationType classifies admin feed entries.
type NotificationType string

const (
	NotificationNewSubmission         NotificationType = "new_submission"
	NotificationSubmissionUpdated     NotificationType = "submission_updated"
	NotificationNewRefundRequest      NotificationType = "new_refund_request"
	NotificationRefundUpdated         NotificationType = "refund_updated"
	NotificationNewContactMessage     NotificationType = "new_contact_message"
	NotificationContactMessageUpdated NotificationType = "contact_message_updated"
	NotificationAdminRegistered       NotificationType = "admin_registered"
)

// Notification is an entry of the admin notification feed.
type Notification struct {
	ID        string           `json:"id,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	Read      bool             `json:"read"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
