package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundStatus represents the status of a refund request.
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "pending"
	RefundStatusProcessing RefundStatus = "processing"
	RefundStatusApproved   RefundStatus = "approved"
	RefundStatusRejected   RefundStatus = "rejected"
	RefundStatusCompleted  RefundStatus = "completed"
)

// Valid reports whether s is a known refund status.
func (s RefundStatus) Valid() bool {
	switch s {
	case RefundStatusPending, RefundStatusProcessing, RefundStatusApproved,
		RefundStatusRejected, RefundStatusCompleted:
		return true
	}
	return false
}

// RefundCoupon is a coupon a customer asks to be refunded.
type RefundCoupon struct {
	Code   string          `json:"code"`
	Type   string          `json:"type,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// RefundRequest is a customer request to reclaim funds.
type RefundRequest struct {
	ID              string          `json:"id,omitempty"`
	ReferenceNumber string          `json:"referenceNumber"`
	FullName        string          `json:"fullName"`
	Email           string          `json:"email"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	RefundMethod    string          `json:"refundMethod"`
	Coupons         []RefundCoupon  `json:"coupons"`
	Status          RefundStatus    `json:"status"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	ProcessedBy     string          `json:"processedBy,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	AdminNotes      string          `json:"adminNotes,omitempty"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
}
