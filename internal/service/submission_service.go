package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// SubmissionService coordinates coupon verification workflows.
type SubmissionService struct {
	submissions repository.SubmissionRepository
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// SubmissionDependencies bundles requirements for the submission service.
type SubmissionDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	Dispatcher     events.Dispatcher
}

// SubmissionListFilter describes listing filters.
type SubmissionListFilter struct {
	Status *domain.SubmissionStatus
	Type   *string
	Limit  int
}

// NewSubmissionService constructs the service.
func NewSubmissionService(deps SubmissionDependencies) *SubmissionService {
	return &SubmissionService{submissions: deps.SubmissionRepo, dispatcher: deps.Dispatcher, now: time.Now}
}

// List returns submissions newest first.
func (s *SubmissionService) List(ctx context.Context, filter SubmissionListFilter) ([]domain.Submission, error) {
	return s.submissions.List(ctx, repository.SubmissionFilter{
		Status: filter.Status,
		Type:   filter.Type,
		Limit:  clampLimit(filter.Limit),
	})
}

// Get returns one submission.
func (s *SubmissionService) Get(ctx context.Context, id string) (*domain.Submission, error) {
	return s.submissions.GetByID(ctx, id)
}

// UpdateCouponStatus sets the status of one coupon and recomputes the submission status
// in the same write.
func (s *SubmissionService) UpdateCouponStatus(ctx context.Context, actor events.Actor, id string, index int, status domain.CouponStatus) (*domain.Submission, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown coupon status", map[string]any{"status": status})
	}
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(submission.Coupons) {
		return nil, apperrors.NewValidationError("coupon index out of range", map[string]any{
			"index":   index,
			"coupons": len(submission.Coupons),
		})
	}

	now := s.now().UTC()
	oldCoupon := submission.Coupons[index].EffectiveStatus()
	oldStatus := submission.Status
	submission.Coupons[index].Status = status
	submission.Coupons[index].UpdatedAt = &now

	if err := s.save(ctx, actor, submission, nil, now); err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.NewEvent(events.EventSubmissionCouponStatusChanged, id, actor, events.SubmissionCouponStatusChangedPayload{
		Email:           submission.Email,
		CouponIndex:     index,
		CouponCode:      submission.Coupons[index].Code,
		OldCouponStatus: oldCoupon,
		NewCouponStatus: status,
		OldStatus:       oldStatus,
		NewStatus:       submission.Status,
		SubmissionType:  submission.Type,
		ReferenceNumber: submission.ReferenceNumber,
	}))
	s.publishStatusChange(ctx, actor, submission, oldStatus)
	return submission, nil
}

// UpdateAllCoupons applies one decision to every coupon, then recomputes the submission status.
func (s *SubmissionService) UpdateAllCoupons(ctx context.Context, actor events.Actor, id string, status domain.CouponStatus, notes *string) (*domain.Submission, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown coupon status", map[string]any{"status": status})
	}
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	oldStatus := submission.Status
	for i := range submission.Coupons {
		submission.Coupons[i].Status = status
		submission.Coupons[i].UpdatedAt = &now
	}
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		notes = &trimmed
		submission.AdminNotes = trimmed
	}

	if err := s.save(ctx, actor, submission, notes, now); err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, actor, submission, oldStatus)
	return submission, nil
}

// MarkEmailSent records that the customer was notified.
func (s *SubmissionService) MarkEmailSent(ctx context.Context, actor events.Actor, id string) (*domain.Submission, error) {
	now := s.now().UTC()
	sent := true
	if err := s.submissions.Update(ctx, id, repository.SubmissionPatch{
		EmailSent:   &sent,
		EmailSentAt: &now,
		UpdatedAt:   &now,
		UpdatedBy:   actorName(actor),
	}); err != nil {
		return nil, err
	}
	return s.submissions.GetByID(ctx, id)
}

// save writes coupons and the status derived from them in one update.
func (s *SubmissionService) save(ctx context.Context, actor events.Actor, submission *domain.Submission, notes *string, now time.Time) error {
	status := domain.ResolveSubmissionStatus(submission.Coupons)
	by := actorName(actor)
	if err := s.submissions.Update(ctx, submission.ID, repository.SubmissionPatch{
		Coupons:    submission.Coupons,
		Status:     &status,
		AdminNotes: notes,
		UpdatedAt:  &now,
		UpdatedBy:  by,
	}); err != nil {
		return err
	}
	submission.Status = status
	submission.UpdatedAt = &now
	submission.UpdatedBy = *by
	return nil
}

func (s *SubmissionService) publishStatusChange(ctx context.Context, actor events.Actor, submission *domain.Submission, oldStatus domain.SubmissionStatus) {
	if submission.Status == oldStatus {
		return
	}
	publish(ctx, s.dispatcher, events.NewEvent(events.EventSubmissionStatusChanged, submission.ID, actor, events.SubmissionStatusChangedPayload{
		Email:           submission.Email,
		OldStatus:       oldStatus,
		NewStatus:       submission.Status,
		SubmissionType:  submission.Type,
		ReferenceNumber: submission.ReferenceNumber,
		AdminNotes:      submission.AdminNotes,
	}))
}
