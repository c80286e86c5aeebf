package service

import (
	"context"

	"github.com/spec-kit/verif-backoffice/internal/events"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

func actorName(actor events.Actor) *string {
	name := actor.Name()
	return &name
}
