package repository

import (
	"context"
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
)

// NotificationRepository persists the admin notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
}

type notificationRepository struct {
	store persistence.DocumentStore
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(store persistence.DocumentStore) NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	doc, err := encode(n)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, persistence.CollectionNotifications, doc)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *notificationRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	q := persistence.Query{NewestFirst: true, Limit: limit}
	if unreadOnly {
		q.Where = map[string]any{"read": false}
	}
	docs, err := r.store.Find(ctx, persistence.CollectionNotifications, q)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Notification](docs)
}

func (r *notificationRepository) CountUnread(ctx context.Context) (int, error) {
	docs, err := r.store.Find(ctx, persistence.CollectionNotifications, persistence.Query{
		Where: map[string]any{"read": false},
	})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	return r.store.Update(ctx, persistence.CollectionNotifications, id, persistence.Document{
		"read":   true,
		"readAt": at,
	})
}
