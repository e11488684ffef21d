package server

import (
	"context"

	"github.com/tudao164/KiemThuPhanMem/internal/obs"
	"github.com/tudao164/KiemThuPhanMem/internal/services"
	"github.com/tudao164/KiemThuPhanMem/types"
)

// countingPublisher records the outcome of every account event publish.
type countingPublisher struct {
	next    services.EventPublisher
	metrics *obs.Metrics
}

func (p countingPublisher) PublishAccountEvent(ctx context.Context, event types.AccountEvent) error {
	err := p.next.PublishAccountEvent(ctx, event)
	p.metrics.AccountEvent(string(event.Type), err)
	return err
}
