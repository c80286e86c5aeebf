package service

import (
	"context"
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/repository"
)

// ContactService manages messages from the public contact form.
type ContactService struct {
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ContactDependencies bundles requirements for the contact service.
type ContactDependencies struct {
	ContactRepo repository.ContactRepository
	Dispatcher  events.Dispatcher
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	return &ContactService{contacts: deps.ContactRepo, dispatcher: deps.Dispatcher, now: time.Now}
}

// List returns messages newest first.
func (s *ContactService) List(ctx context.Context) ([]domain.ContactMessage, error) {
	return s.contacts.List(ctx, false)
}

// ListUnread returns unread messages newest first.
func (s *ContactService) ListUnread(ctx context.Context) ([]domain.ContactMessage, error) {
	return s.contacts.List(ctx, true)
}

// Get returns one message.
func (s *ContactService) Get(ctx context.Context, id string) (*domain.ContactMessage, error) {
	return s.contacts.GetByID(ctx, id)
}

// MarkRead flags a message as read by actor.
func (s *ContactService) MarkRead(ctx context.Context, actor events.Actor, id string) (*domain.ContactMessage, error) {
	return s.setRead(ctx, actor, id, true)
}

// MarkUnread clears the read flag.
func (s *ContactService) MarkUnread(ctx context.Context, actor events.Actor, id string) (*domain.ContactMessage, error) {
	return s.setRead(ctx, actor, id, false)
}

// Delete removes a message.
func (s *ContactService) Delete(ctx context.Context, actor events.Actor, id string) error {
	msg, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.dispatcher, events.NewEvent(events.EventContactMessageUpdated, id, actor, events.ContactMessageUpdatedPayload{
		Subject: msg.Subject,
		IsRead:  msg.IsRead,
		Deleted: true,
	}))
	return nil
}

func (s *ContactService) setRead(ctx context.Context, actor events.Actor, id string, read bool) (*domain.ContactMessage, error) {
	if err := s.contacts.SetRead(ctx, id, read, s.now().UTC(), actor.Name()); err != nil {
		return nil, err
	}
	msg, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.NewEvent(events.EventContactMessageUpdated, id, actor, events.ContactMessageUpdatedPayload{
		Subject: msg.Subject,
		IsRead:  msg.IsRead,
	}))
	return msg, nil
}
