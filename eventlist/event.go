package eventlist

// Callback is invoked when an Event is processed by an EventList. The event
// itself is passed so the callback can inspect its time, name, or payload,
// and may schedule further events on the list that is driving it.
type Callback func(e Event)

// Event is a (time, tiebreaker, callback, payload, name) record enrolled in
// at most one EventList at a time. While an event is enrolled, its Time and
// Deconflict fields must not be mutated by external code; the engine
// treats such mutation as undefined behavior.
type Event interface {
	// Time returns the time at which this event is, or is to be,
	// scheduled.
	Time() float64

	// SetTime sets the scheduled time. Callers must not call this while
	// the event is enrolled in an EventList.
	SetTime(time float64)

	// Name returns the advisory display name of the event. Never
	// inspected by the engine itself.
	Name() string

	// SetName sets the display name.
	SetName(name string)

	// Payload returns the opaque user payload associated with the
	// event, or nil.
	Payload() any

	// SetPayload sets the opaque user payload.
	SetPayload(payload any)

	// Callback returns the callback to invoke when this event is
	// processed. May be nil, in which case the event acts as a pure
	// time marker.
	Callback() Callback

	// SetCallback sets the callback.
	SetCallback(cb Callback)

	// Deconflict returns the engine-assigned tiebreaker used to lift
	// the partial (time) order into a total order. Assigned by the
	// EventList on insertion; read by the comparator.
	Deconflict() int64

	// SetDeconflict sets the tiebreaker. For EventList implementations
	// only; external code must not call this while the event is
	// enrolled.
	SetDeconflict(value int64)
}

// BaseEvent is the concrete, general-purpose implementation of Event used
// whenever a caller does not need a custom Event type.
type BaseEvent struct {
	id         string
	time       float64
	name       string
	payload    any
	callback   Callback
	deconflict int64
}

// NewBaseEvent creates a new *BaseEvent with the given time, callback, and
// name. The deconflict value is left at its zero value; an EventList
// assigns it on insertion.
func NewBaseEvent(time float64, cb Callback, name string) *BaseEvent {
	return &BaseEvent{
		id:       GetIDGenerator().Generate(),
		time:     time,
		name:     name,
		callback: cb,
	}
}

// ID returns the engine-assigned identity of this event, useful for
// logging and tracing; never inspected by the scheduling core itself.
func (e *BaseEvent) ID() string { return e.id }

// Time implements Event.
func (e *BaseEvent) Time() float64 { return e.time }

// SetTime implements Event.
func (e *BaseEvent) SetTime(time float64) { e.time = time }

// Name implements Event.
func (e *BaseEvent) Name() string { return e.name }

// SetName implements Event.
func (e *BaseEvent) SetName(name string) { e.name = name }

// Payload implements Event.
func (e *BaseEvent) Payload() any { return e.payload }

// SetPayload implements Event.
func (e *BaseEvent) SetPayload(payload any) { e.payload = payload }

// Callback implements Event.
func (e *BaseEvent) Callback() Callback { return e.callback }

// SetCallback implements Event.
func (e *BaseEvent) SetCallback(cb Callback) { e.callback = cb }

// Deconflict implements Event.
func (e *BaseEvent) Deconflict() int64 { return e.deconflict }

// SetDeconflict implements Event.
func (e *BaseEvent) SetDeconflict(value int64) { e.deconflict = value }

// String returns the event's name if set, else its generated ID.
func (e *BaseEvent) String() string {
	if e.name != "" {
		return e.name
	}
	return e.id
}
