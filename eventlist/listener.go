package eventlist

// ResetListener is the coarsest listener capability: notified only when
// the event list is reset.
type ResetListener interface {
	OnReset(list *EventList)
}

// Listener adds update and empty notifications on top of ResetListener.
type Listener interface {
	ResetListener
	OnUpdate(list *EventList, time float64)
	OnEmpty(list *EventList, time float64)
}

// FineListener adds a per-event "about to process" notification on top of
// Listener. FineListener.OnNextEvent fires once per processed event,
// before it is removed from the list; Listener.OnUpdate fires only when
// the clock actually advances (or on the very first event after
// construction/reset).
type FineListener interface {
	Listener
	OnNextEvent(list *EventList, timeOfPreviousEvent float64)
}

// listenerRegistry holds the three disjoint listener buckets (by
// capability) and mirror slices for allocation-free fan-out.
//
// A listener registered under a richer capability is dispatched only
// through that bucket: e.g. a FineListener is never duplicated into the
// plain Listener bucket. Buckets are disjoint, determined by the richest
// capability interface the listener satisfies at registration time.
type listenerRegistry struct {
	resetOnly    map[ResetListener]struct{}
	full         map[Listener]struct{}
	fine         map[FineListener]struct{}
	resetOnlyArr []ResetListener
	fullArr      []Listener
	fineArr      []FineListener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{
		resetOnly: make(map[ResetListener]struct{}),
		full:      make(map[Listener]struct{}),
		fine:      make(map[FineListener]struct{}),
	}
}

// add registers l under its richest supported capability. Nil is silently
// ignored. Already-registered listeners are not duplicated.
func (r *listenerRegistry) add(l ResetListener) {
	if l == nil {
		return
	}
	if fl, ok := l.(FineListener); ok {
		if _, exists := r.fine[fl]; !exists {
			r.fine[fl] = struct{}{}
			r.rebuildFine()
		}
		return
	}
	if fl, ok := l.(Listener); ok {
		if _, exists := r.full[fl]; !exists {
			r.full[fl] = struct{}{}
			r.rebuildFull()
		}
		return
	}
	if _, exists := r.resetOnly[l]; !exists {
		r.resetOnly[l] = struct{}{}
		r.rebuildResetOnly()
	}
}

// remove unregisters l from whichever bucket it was registered under.
// Nil and not-present are silently ignored.
func (r *listenerRegistry) remove(l ResetListener) {
	if l == nil {
		return
	}
	if fl, ok := l.(FineListener); ok {
		if _, exists := r.fine[fl]; exists {
			delete(r.fine, fl)
			r.rebuildFine()
		}
		return
	}
	if fl, ok := l.(Listener); ok {
		if _, exists := r.full[fl]; exists {
			delete(r.full, fl)
			r.rebuildFull()
		}
		return
	}
	if _, exists := r.resetOnly[l]; exists {
		delete(r.resetOnly, l)
		r.rebuildResetOnly()
	}
}

func (r *listenerRegistry) rebuildFine() {
	arr := make([]FineListener, 0, len(r.fine))
	for l := range r.fine {
		arr = append(arr, l)
	}
	r.fineArr = arr
}

func (r *listenerRegistry) rebuildFull() {
	arr := make([]Listener, 0, len(r.full))
	for l := range r.full {
		arr = append(arr, l)
	}
	r.fullArr = arr
}

func (r *listenerRegistry) rebuildResetOnly() {
	arr := make([]ResetListener, 0, len(r.resetOnly))
	for l := range r.resetOnly {
		arr = append(arr, l)
	}
	r.resetOnlyArr = arr
}

// fireReset dispatches to all three buckets: fine, then full, then
// reset-only.
func (r *listenerRegistry) fireReset(list *EventList) {
	for _, l := range r.fineArr {
		l.OnReset(list)
	}
	for _, l := range r.fullArr {
		l.OnReset(list)
	}
	for _, l := range r.resetOnlyArr {
		l.OnReset(list)
	}
}

// fireUpdate dispatches to fine and full listeners.
func (r *listenerRegistry) fireUpdate(list *EventList, time float64) {
	for _, l := range r.fineArr {
		l.OnUpdate(list, time)
	}
	for _, l := range r.fullArr {
		l.OnUpdate(list, time)
	}
}

// fireEmpty dispatches to fine and full listeners.
func (r *listenerRegistry) fireEmpty(list *EventList, time float64) {
	for _, l := range r.fineArr {
		l.OnEmpty(list, time)
	}
	for _, l := range r.fullArr {
		l.OnEmpty(list, time)
	}
}

// fireNextEvent dispatches to fine listeners only.
func (r *listenerRegistry) fireNextEvent(list *EventList, timeOfPreviousEvent float64) {
	for _, l := range r.fineArr {
		l.OnNextEvent(list, timeOfPreviousEvent)
	}
}
