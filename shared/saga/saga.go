// Package saga holds the choreography helpers shared by every service.
//
// There is no central orchestrator: each service reacts to events and
// publishes its own outcome as part of the business flow. Compensation is a
// service's reaction to a failure event, not a coordinator's decision.
package saga

import (
	"context"

	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/ledger"
)

// PublishOutcome routes the result of a local transition through its declared
// (OK, KO) event pair. Exactly one of the two is published once the mutation
// has committed:
//
//   - err == nil: the transition applied, publish ok.
//   - err is a business outcome (condition not met, not found): publish ko,
//     or swallow it when the step declares no KO event.
//   - anything else is an infrastructure fault and propagates; the bus's
//     redelivery is the only retry.
func PublishOutcome(ctx context.Context, pub events.Publisher, source string, ok, ko events.EventType, detail events.Detail, err error) error {
	switch {
	case err == nil:
		return pub.Publish(ctx, events.New(source, ok, detail))
	case ledger.IsBusinessOutcome(err):
		if ko == "" {
			return nil
		}
		return pub.Publish(ctx, events.New(source, ko, detail))
	default:
		return err
	}
}
