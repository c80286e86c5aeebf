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

// RefundService coordinates refund request handling.
type RefundService struct {
	refunds    repository.RefundRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// RefundDependencies bundles requirements for the refund service.
type RefundDependencies struct {
	RefundRepo repository.RefundRepository
	Dispatcher events.Dispatcher
}

// RefundListFilter describes listing filters.
type RefundListFilter struct {
	Status *domain.RefundStatus
	Limit  int
}

// NewRefundService constructs the service.
func NewRefundService(deps RefundDependencies) *RefundService {
	return &RefundService{refunds: deps.RefundRepo, dispatcher: deps.Dispatcher, now: time.Now}
}

// List returns refund requests newest first.
func (s *RefundService) List(ctx context.Context, filter RefundListFilter) ([]domain.RefundRequest, error) {
	return s.refunds.List(ctx, repository.RefundFilter{Status: filter.Status, Limit: clampLimit(filter.Limit)})
}

// GetByReference looks a refund up by reference number or id.
func (s *RefundService) GetByReference(ctx context.Context, reference string) (*domain.RefundRequest, error) {
	return s.refunds.GetByReference(ctx, strings.TrimSpace(reference))
}

// UpdateStatus moves a refund to status. Any transition is accepted.
func (s *RefundService) UpdateStatus(ctx context.Context, actor events.Actor, id string, status domain.RefundStatus, notes *string) (*domain.RefundRequest, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown refund status", map[string]any{"status": status})
	}
	refund, err := s.refunds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	patch := repository.RefundPatch{Status: &status, UpdatedAt: &now}
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		patch.AdminNotes = &trimmed
	}
	switch status {
	case domain.RefundStatusProcessing, domain.RefundStatusApproved, domain.RefundStatusRejected:
		patch.ProcessedAt = &now
		patch.ProcessedBy = actorName(actor)
	case domain.RefundStatusCompleted:
		patch.CompletedAt = &now
	}
	if err := s.refunds.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	updated, err := s.refunds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.NewEvent(events.EventRefundStatusChanged, id, actor, events.RefundStatusChangedPayload{
		ReferenceNumber: updated.ReferenceNumber,
		Email:           updated.Email,
		FullName:        updated.FullName,
		OldStatus:       refund.Status,
		NewStatus:       status,
		TotalAmount:     updated.TotalAmount.StringFixed(2),
		AdminNotes:      updated.AdminNotes,
	}))
	return updated, nil
}
