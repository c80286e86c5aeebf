package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
)

// RefundFilter captures listing parameters for refund requests.
type RefundFilter struct {
	Status *domain.RefundStatus
	Limit  int
}

// RefundPatch lists the refund fields an update may touch.
type RefundPatch struct {
	Status      *domain.RefundStatus `json:"status,omitempty"`
	AdminNotes  *string              `json:"adminNotes,omitempty"`
	ProcessedAt *time.Time           `json:"processedAt,omitempty"`
	ProcessedBy *string              `json:"processedBy,omitempty"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
	UpdatedAt   *time.Time           `json:"updatedAt,omitempty"`
}

// RefundRepository encapsulates refund request persistence.
type RefundRepository interface {
	Create(ctx context.Context, refund *domain.RefundRequest) error
	Update(ctx context.Context, id string, patch RefundPatch) error
	GetByID(ctx context.Context, id string) (*domain.RefundRequest, error)
	GetByReference(ctx context.Context, reference string) (*domain.RefundRequest, error)
	List(ctx context.Context, filter RefundFilter) ([]domain.RefundRequest, error)
	Latest(ctx context.Context) (*domain.RefundRequest, error)
}

type refundRepository struct {
	store persistence.DocumentStore
}

// NewRefundRepository instantiates repository.
func NewRefundRepository(store persistence.DocumentStore) RefundRepository {
	return &refundRepository{store: store}
}

func (r *refundRepository) Create(ctx context.Context, refund *domain.RefundRequest) error {
	doc, err := encode(refund)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, persistence.CollectionRefunds, doc)
	if err != nil {
		return err
	}
	refund.ID = id
	return nil
}

func (r *refundRepository) Update(ctx context.Context, id string, patch RefundPatch) error {
	fields, err := encode(patch)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, persistence.CollectionRefunds, id, fields)
}

func (r *refundRepository) GetByID(ctx context.Context, id string) (*domain.RefundRequest, error) {
	doc, err := r.store.Get(ctx, persistence.CollectionRefunds, id)
	if err != nil {
		return nil, err
	}
	var refund domain.RefundRequest
	if err := decode(doc, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// GetByReference matches the customer-facing reference number, then falls back to the document id.
func (r *refundRepository) GetByReference(ctx context.Context, reference string) (*domain.RefundRequest, error) {
	docs, err := r.store.Find(ctx, persistence.CollectionRefunds, persistence.Query{
		Where: map[string]any{"referenceNumber": reference},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	refund, err := decodeFirst[domain.RefundRequest](docs)
	if err != nil || refund != nil {
		return refund, err
	}
	refund, err = r.GetByID(ctx, reference)
	if errors.Is(err, persistence.ErrDocumentNotFound) {
		return nil, persistence.ErrDocumentNotFound
	}
	return refund, err
}

func (r *refundRepository) List(ctx context.Context, filter RefundFilter) ([]domain.RefundRequest, error) {
	where := map[string]any{}
	if filter.Status != nil {
		where["status"] = string(*filter.Status)
	}
	docs, err := r.store.Find(ctx, persistence.CollectionRefunds, persistence.Query{
		Where:       where,
		NewestFirst: true,
		Limit:       filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.RefundRequest](docs)
}

func (r *refundRepository) Latest(ctx context.Context) (*domain.RefundRequest, error) {
	docs, err := r.store.Find(ctx, persistence.CollectionRefunds, persistence.Query{NewestFirst: true, Limit: 1})
	if err != nil {
		return nil, err
	}
	return decodeFirst[domain.RefundRequest](docs)
}
