package dto

// CouponStatusRequest sets the status of a single coupon.
type CouponStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing verified rejected pending_correction"`
}

// SubmissionStatusRequest sets every coupon of a submission at once.
type SubmissionStatusRequest struct {
	Status     string  `json:"status" validate:"required,oneof=pending processing verified rejected pending_correction"`
	AdminNotes *string `json:"admin_notes" validate:"omitempty,max=2000"`
}

// RefundStatusRequest moves a refund request to a new status.
type RefundStatusRequest struct {
	Status     string  `json:"status" validate:"required,oneof=pending processing approved rejected completed"`
	AdminNotes *string `json:"admin_notes" validate:"omitempty,max=2000"`
}

// CountResponse wraps a single counter.
type CountResponse struct {
	Count int `json:"count"`
}
