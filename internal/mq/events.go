package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tudao164/KiemThuPhanMem/types"
)

const attrEventType = "event-type"

// EventPublisher publishes account lifecycle events to one channel.
// A nil *EventPublisher, or one without a queue, drops events silently.
type EventPublisher struct {
	mq      *MQ
	channel string
}

func NewEventPublisher(mq *MQ, channel string) *EventPublisher {
	return &EventPublisher{mq: mq, channel: channel}
}

// PublishAccountEvent encodes event as JSON and publishes it.
func (p *EventPublisher) PublishAccountEvent(ctx context.Context, event types.AccountEvent) error {
	if p == nil || p.mq == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode account event: %w", err)
	}
	attrs := map[string]string{
		AttrContentType: "application/json",
		attrEventType:   string(event.Type),
	}
	if _, err := p.mq.Publish(ctx, p.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// SubscribeAccountEvents decodes every message on the channel and passes it
// to handle. Messages that are not account events are acknowledged and
// skipped so they are not redelivered forever.
func (p *EventPublisher) SubscribeAccountEvents(ctx context.Context, handle func(context.Context, types.AccountEvent) error) error {
	if p == nil || p.mq == nil {
		return fmt.Errorf("no message queue configured")
	}
	return p.mq.Subscribe(ctx, p.channel, func(ctx context.Context, msg Message) error {
		var event types.AccountEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil || event.Type == "" {
			return nil
		}
		return handle(ctx, event)
	})
}

// Channel returns the channel events are published to.
func (p *EventPublisher) Channel() string {
	return p.channel
}
