package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
)

// Emitter collects the events of one decision.
//
// Every event shares the decision timestamp unless it is emitted with At.
// The first marshal failure is kept and reported by Events, so handlers can
// emit in sequence and check once.
type Emitter struct {
	at     time.Time
	events []event.Event
	err    error
}

// NewEmitter returns an emitter stamping events with at.
func NewEmitter(at time.Time) *Emitter {
	return &Emitter{at: at.UTC()}
}

// Emit appends an event of type t.
func (e *Emitter) Emit(t event.Type, payload any) {
	e.EmitAt(e.at, t, payload)
}

// EmitAt appends an event with its own timestamp.
func (e *Emitter) EmitAt(at time.Time, t event.Type, payload any) {
	if e.err != nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		e.err = fmt.Errorf("marshal %s payload: %w", t, err)
		return
	}
	e.events = append(e.events, event.Event{
		Type:        t,
		Timestamp:   at.UTC(),
		PayloadJSON: data,
	})
}

// PhaseChange emits PHASE_CHANGED from -> to.
func (e *Emitter) PhaseChange(from, to Phase) {
	e.Emit(EventTypePhaseChanged, PhaseChangedPayload{From: from, To: to})
}

// Append adds already built events, such as a battle trace.
func (e *Emitter) Append(events ...event.Event) {
	if e.err != nil {
		return
	}
	e.events = append(e.events, events...)
}

// Now returns the decision timestamp.
func (e *Emitter) Now() time.Time {
	return e.at
}

// Events returns the collected events, or the first error.
func (e *Emitter) Events() ([]event.Event, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.events, nil
}
