package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponStatus is the verification state of a single coupon inside a submission.
type CouponStatus string

const (
	CouponStatusPending           CouponStatus = "pending"
	CouponStatusProcessing        CouponStatus = "processing"
	CouponStatusVerified          CouponStatus = "verified"
	CouponStatusRejected          CouponStatus = "rejected"
	CouponStatusPendingCorrection CouponStatus = "pending_correction"
)

// Valid reports whether s is a status an admin may assign to a coupon.
func (s CouponStatus) Valid() bool {
	switch s {
	case CouponStatusPending, CouponStatusProcessing, CouponStatusVerified,
		CouponStatusRejected, CouponStatusPendingCorrection:
		return true
	}
	return false
}

// SubmissionStatus is the aggregate state of a submission.
type SubmissionStatus string

const (
	SubmissionStatusPending           SubmissionStatus = "pending"
	SubmissionStatusProcessing        SubmissionStatus = "processing"
	SubmissionStatusVerified          SubmissionStatus = "verified"
	SubmissionStatusRejected          SubmissionStatus = "rejected"
	SubmissionStatusPartiallyVerified SubmissionStatus = "partially_verified"
	SubmissionStatusPendingCorrection SubmissionStatus = "pending_correction"
)

// CouponItem is one coupon or gift card of a submission.
type CouponItem struct {
	Code                  string          `json:"code"`
	OriginalCode          string          `json:"originalCode,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	Status                CouponStatus    `json:"status"`
	UpdatedAt             *time.Time      `json:"updatedAt,omitempty"`
	CorrectionSubmittedAt *time.Time      `json:"correctionSubmittedAt,omitempty"`
	CorrectionSubmittedBy string          `json:"correctionSubmittedBy,omitempty"`
}

// EffectiveStatus returns the coupon status, defaulting to pending when unset.
func (c CouponItem) EffectiveStatus() CouponStatus {
	if c.Status == "" {
		return CouponStatusPending
	}
	return c.Status
}

// Submission is a customer's batch of coupons sent for verification.
type Submission struct {
	ID              string           `json:"id,omitempty"`
	Email           string           `json:"email"`
	FullName        string           `json:"fullName,omitempty"`
	ReferenceNumber string           `json:"referenceNumber,omitempty"`
	Type            string           `json:"type"`
	Coupons         []CouponItem     `json:"coupons"`
	Status          SubmissionStatus `json:"status"`
	AdminNotes      string           `json:"adminNotes,omitempty"`
	EmailSent       bool             `json:"emailSent,omitempty"`
	EmailSentAt     *time.Time       `json:"emailSentAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       *time.Time       `json:"updatedAt,omitempty"`
	UpdatedBy       string           `json:"updatedBy,omitempty"`
}

// TotalAmount sums the amounts of every coupon.
func (s Submission) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.Coupons {
		total = total.Add(c.Amount)
	}
	return total
}

// ResolveSubmissionStatus derives the aggregate status from the coupon statuses.
// Rules are evaluated in order and the first match wins, so a pending correction
// outranks a verified/rejected mix.
func ResolveSubmissionStatus(coupons []CouponItem) SubmissionStatus {
	if len(coupons) == 0 {
		return SubmissionStatusPending
	}

	var verified, rejected, correction, waiting int
	for _, c := range coupons {
		switch c.EffectiveStatus() {
		case CouponStatusVerified:
			verified++
		case CouponStatusRejected:
			rejected++
		case CouponStatusPendingCorrection:
			correction++
		case CouponStatusPending, CouponStatusProcessing:
			waiting++
		}
	}

	total := len(coupons)
	switch {
	case verified == total:
		return SubmissionStatusVerified
	case rejected == total:
		return SubmissionStatusRejected
	case correction > 0:
		return SubmissionStatusPendingCorrection
	case verified > 0 && rejected > 0:
		return SubmissionStatusPartiallyVerified
	case waiting == total:
		return SubmissionStatusProcessing
	}
	// Mixes such as [pending, rejected] land here and stay pending.
	return SubmissionStatusPending
}
