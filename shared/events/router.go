package events

import (
	"context"

	"github.com/ordermesh/order-system/shared/dedup"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Router dispatches bus events to handlers through a static table. Unknown
// event types are logged and dropped, never retried and never fatal. When a
// dedup store is attached, an event ID seen before by THIS consumer is
// dropped the same way, since the bus delivers at least once; dedup keys are
// scoped by router ID because one event fans out to several services, and a
// failed dispatch withdraws the mark so the redelivery is processed.
type Router struct {
	id       string
	handlers map[EventType]HandlerFunc
	dedup    dedup.Store
	log      *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithDedup attaches an idempotency store consulted before dispatch.
func WithDedup(store dedup.Store) RouterOption {
	return func(r *Router) {
		r.dedup = store
	}
}

// NewRouter builds a router over a static handler table.
func NewRouter(id string, handlers map[EventType]HandlerFunc, log *zap.Logger, opts ...RouterOption) *Router {
	r := &Router{
		id:       id,
		handlers: handlers,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandlerID implements the Handler interface.
func (r *Router) HandlerID() string {
	return r.id
}

// Handles returns the event types this router dispatches. Tests compare it
// against the service's declared slice of the catalog.
func (r *Router) Handles() []EventType {
	types := make([]EventType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Handle implements the Handler interface.
func (r *Router) Handle(ctx context.Context, event *Event) error {
	handler, ok := r.handlers[event.DetailType]
	if !ok {
		r.log.Info("dropping unrouted event",
			zap.String("detail_type", event.DetailType.String()),
			zap.String("source", event.Source),
		)
		return nil
	}

	key := r.id + ":" + event.ID.String()
	if r.dedup != nil {
		seen, err := r.dedup.Seen(ctx, key)
		if err != nil {
			return errors.Wrap(err, "dedup check failed")
		}
		if seen {
			r.log.Info("dropping duplicate event",
				zap.String("event_id", event.ID.String()),
				zap.String("detail_type", event.DetailType.String()),
			)
			return nil
		}
	}

	r.log.Debug("dispatching event",
		zap.String("detail_type", event.DetailType.String()),
		zap.String("source", event.Source),
	)

	if err := handler(ctx, event); err != nil {
		if r.dedup != nil {
			if ferr := r.dedup.Forget(ctx, key); ferr != nil {
				r.log.Warn("failed to withdraw dedup mark, redelivery may be dropped",
					zap.String("event_id", event.ID.String()),
					zap.Error(ferr),
				)
			}
		}
		return errors.Wrapf(err, "handler for %s failed", event.DetailType)
	}
	return nil
}
