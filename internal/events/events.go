// Package events carries committed ledger changes to subscribers such as the
// admin websocket feed.
package events

import (
	"sync"
	"time"
)

const (
	PaymentRecorded   = "payment.recorded"
	FeeRevised        = "fee.revised"
	FeeDeleted        = "fee.deleted"
	VehicleCheckedOut = "vehicle.checked_out"
	VehicleDeleted    = "vehicle.deleted"
	RoomDeleted       = "room.deleted"
	PersonsDeleted    = "persons.deleted"
)

type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

func New(eventType string, data any) Event {
	return Event{Type: eventType, At: time.Now().UTC(), Data: data}
}

// Publisher receives events after the transaction that produced them has
// committed. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

type nop struct{}

func (nop) Publish(Event) {}

// Nop discards every event.
var Nop Publisher = nop{}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Types() []string {
	events := r.Events()
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
