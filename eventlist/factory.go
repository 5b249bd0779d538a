package eventlist

// EventFactory mints a fresh Event from a (time, callback, name) triple,
// for callers that schedule by that triple rather than by constructing an
// Event themselves. Supply one at construction time via WithFactory if
// BaseEvent is not the right concrete type.
//
// A factory may fail (e.g. a pool exhausted, a validation rule violated);
// a returned error surfaces to the caller as *IllegalStateError.
type EventFactory func(time float64, cb Callback, name string) (Event, error)

// defaultFactory is used when no EventFactory is configured. It never
// fails.
func defaultFactory(time float64, cb Callback, name string) (Event, error) {
	return NewBaseEvent(time, cb, name), nil
}
