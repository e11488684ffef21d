package services

import (
	"context"
	"time"

	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// EventPublisher receives account lifecycle events.
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, event types.AccountEvent) error
}

// eventEmitter publishes best-effort: a failed publish is logged and never
// fails the request that caused it.
type eventEmitter struct {
	publisher EventPublisher
	logger    logging.Logger
	now       func() time.Time
}

func newEventEmitter(publisher EventPublisher, logger logging.Logger) *eventEmitter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &eventEmitter{publisher: publisher, logger: logger, now: time.Now}
}

func (e *eventEmitter) emit(ctx context.Context, eventType types.AccountEventType, user types.User, actorID int) {
	if e.publisher == nil {
		return
	}
	event := types.AccountEvent{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		ActorID:    actorID,
		OccurredAt: e.now().UTC(),
	}
	if err := e.publisher.PublishAccountEvent(ctx, event); err != nil {
		e.logger.Warn(ctx, "account event not published", "type", eventType, "user_id", user.ID, "error", err)
	}
}
