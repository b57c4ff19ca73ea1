package finance

import (
	"context"

	"github.com/himfirm/backend/internal/domain/shared"
)

// eventSource is the slice of an aggregate root the publishing helper needs
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents drains an aggregate's pending events onto the bus after a
// successful save. Delivery is best effort; handlers reconcile from
// persisted state if an event is lost.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, sources ...eventSource) {
	if publisher == nil {
		return
	}
	for _, src := range sources {
		for _, event := range src.GetDomainEvents() {
			_ = publisher.Publish(ctx, event)
		}
		src.ClearDomainEvents()
	}
}
