package repository

import (
	"context"
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
)

// SubmissionFilter captures listing parameters for coupon submissions.
type SubmissionFilter struct {
	Status *domain.SubmissionStatus
	Type   *string
	Limit  int
}

// SubmissionPatch lists the submission fields an update may touch.
// A nil Coupons slice leaves the stored coupons unchanged.
type SubmissionPatch struct {
	Coupons     []domain.CouponItem      `json:"coupons,omitempty"`
	Status      *domain.SubmissionStatus `json:"status,omitempty"`
	AdminNotes  *string                  `json:"adminNotes,omitempty"`
	EmailSent   *bool                    `json:"emailSent,omitempty"`
	EmailSentAt *time.Time               `json:"emailSentAt,omitempty"`
	UpdatedAt   *time.Time               `json:"updatedAt,omitempty"`
	UpdatedBy   *string                  `json:"updatedBy,omitempty"`
}

// SubmissionRepository encapsulates coupon submission persistence.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	Update(ctx context.Context, id string, patch SubmissionPatch) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, error)
	Latest(ctx context.Context) (*domain.Submission, error)
}

type submissionRepository struct {
	store persistence.DocumentStore
}

// NewSubmissionRepository instantiates repository.
func NewSubmissionRepository(store persistence.DocumentStore) SubmissionRepository {
	return &submissionRepository{store: store}
}

func (r *submissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	doc, err := encode(submission)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, persistence.CollectionSubmissions, doc)
	if err != nil {
		return err
	}
	submission.ID = id
	return nil
}

func (r *submissionRepository) Update(ctx context.Context, id string, patch SubmissionPatch) error {
	fields, err := encode(patch)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, persistence.CollectionSubmissions, id, fields)
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	doc, err := r.store.Get(ctx, persistence.CollectionSubmissions, id)
	if err != nil {
		return nil, err
	}
	var submission domain.Submission
	if err := decode(doc, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, error) {
	where := map[string]any{}
	if filter.Status != nil {
		where["status"] = string(*filter.Status)
	}
	if filter.Type != nil {
		where["type"] = *filter.Type
	}
	docs, err := r.store.Find(ctx, persistence.CollectionSubmissions, persistence.Query{
		Where:       where,
		NewestFirst: true,
		Limit:       filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Submission](docs)
}

func (r *submissionRepository) Latest(ctx context.Context) (*domain.Submission, error) {
	docs, err := r.store.Find(ctx, persistence.CollectionSubmissions, persistence.Query{NewestFirst: true, Limit: 1})
	if err != nil {
		return nil, err
	}
	return decodeFirst[domain.Submission](docs)
}
