package registry

import (
	"github.com/gamekit/protoreg/id"
)

// EventKind categorizes registry change notifications.
type EventKind string

const (
	// Added indicates a prototype was inserted into a collection.
	Added EventKind = "added"

	// Removed indicates a prototype was removed from a collection.
	Removed EventKind = "removed"
)

// Event is one registry change notification.
type Event struct {
	Kind   EventKind
	Type   *Type
	Name   id.ErasedNamed
	Record Prototype
}

type subscriber struct {
	ch     chan Event
	cancel chan struct{}
}

// Watch subscribes to Added/Removed events for t. Events are delivered
// on the returned channel, buffered to buf; when a subscriber falls
// behind, further events for it are dropped and counted rather than
// blocking registry mutation. The returned stop function ends the
// subscription and closes the channel.
//
// Only mutation through the Registry emits events; reads, View lookups
// and Clear never do.
func (r *Registry) Watch(t *Type, buf int) (<-chan Event, func()) {
	if buf < 1 {
		buf = 1
	}
	sub := &subscriber{
		ch:     make(chan Event, buf),
		cancel: make(chan struct{}),
	}

	r.subMu.Lock()
	r.subscribers[t] = append(r.subscribers[t], sub)
	r.subMu.Unlock()

	stop := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()

		select {
		case <-sub.cancel:
			return // already stopped
		default:
		}
		close(sub.cancel)

		subs := r.subscribers[t]
		for i, s := range subs {
			if s == sub {
				r.subscribers[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(sub.ch)
	}

	return sub.ch, stop
}

// emit delivers an event to every subscriber of the event's type.
func (r *Registry) emit(ev Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	for _, sub := range r.subscribers[ev.Type] {
		select {
		case <-sub.cancel:
		case sub.ch <- ev:
		default:
			r.dropped++
			r.logger.Warn("registry event dropped: subscriber not keeping up",
				"kind", ev.Kind,
				"type", ev.Type.Discriminant(),
				"name", ev.Name.String())
		}
	}
}

// DroppedEvents reports how many events were discarded because a
// subscriber's buffer was full.
func (r *Registry) DroppedEvents() uint64 {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	return r.dropped
}
