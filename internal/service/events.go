package service

import (
	"context"

	"github.com/iliyamo/fridge-share/internal/queue"
)

// EventPublisher receives domain events. Implementations must not block
// for long; failures are logged by the caller and otherwise ignored.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.Event) error { return nil }
