// Package eventstest provides test doubles for the events package.
package eventstest

import (
	"context"
	"sync"

	"github.com/ordermesh/order-system/shared/events"
)

// CapturingPublisher records every published event in order. Err, when set,
// is returned instead of recording.
type CapturingPublisher struct {
	mu     sync.Mutex
	Err    error
	events []*events.Event
}

func NewCapturingPublisher() *CapturingPublisher {
	return &CapturingPublisher{}
}

func (p *CapturingPublisher) Publish(_ context.Context, evts ...*events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, evts...)
	return nil
}

// Events returns a copy of everything published so far.
func (p *CapturingPublisher) Events() []*events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*events.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the detail types published so far, in order.
func (p *CapturingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.DetailType
	}
	return out
}

// Last returns the most recently published event, or nil.
func (p *CapturingPublisher) Last() *events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

// Reset drops all recorded events.
func (p *CapturingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
