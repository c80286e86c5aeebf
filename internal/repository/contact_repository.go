package repository

import (
	"context"
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
)

// ContactRepository handles persistence for contact form messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool) ([]domain.ContactMessage, error)
	Latest(ctx context.Context) (*domain.ContactMessage, error)
	SetRead(ctx context.Context, id string, read bool, at time.Time, by string) error
	Delete(ctx context.Context, id string) error
}

type contactRepository struct {
	store persistence.DocumentStore
}

// NewContactRepository instantiates repository.
func NewContactRepository(store persistence.DocumentStore) ContactRepository {
	return &contactRepository{store: store}
}

func (r *contactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	doc, err := encode(msg)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, persistence.CollectionContacts, doc)
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	doc, err := r.store.Get(ctx, persistence.CollectionContacts, id)
	if err != nil {
		return nil, err
	}
	var msg domain.ContactMessage
	if err := decode(doc, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *contactRepository) List(ctx context.Context, unreadOnly bool) ([]domain.ContactMessage, error) {
	q := persistence.Query{NewestFirst: true}
	if unreadOnly {
		q.Where = map[string]any{"isRead": false}
	}
	docs, err := r.store.Find(ctx, persistence.CollectionContacts, q)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ContactMessage](docs)
}

func (r *contactRepository) Latest(ctx context.Context) (*domain.ContactMessage, error) {
	docs, err := r.store.Find(ctx, persistence.CollectionContacts, persistence.Query{NewestFirst: true, Limit: 1})
	if err != nil {
		return nil, err
	}
	return decodeFirst[domain.ContactMessage](docs)
}

// SetRead flags a message read by an admin, or clears the read markers when read is false.
func (r *contactRepository) SetRead(ctx context.Context, id string, read bool, at time.Time, by string) error {
	fields := persistence.Document{"isRead": read, "readAt": nil, "readBy": nil}
	if read {
		fields["readAt"] = at
		fields["readBy"] = by
	}
	return r.store.Update(ctx, persistence.CollectionContacts, id, fields)
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, persistence.CollectionContacts, id)
}
