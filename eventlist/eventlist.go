package eventlist

import (
	"fmt"
	"math"
	"sync/atomic"
)

// tiebreaker assigns deconflict values to events on insertion. The two
// concrete policies (ROEL, IOEL) differ only in this assignment; see
// roel.go and ioel.go.
type tiebreaker interface {
	assign(queueWasEmpty bool, e Event)
}

// EventList is a priority-ordered, time-stamped container of Events that
// advances a simulated clock by repeatedly extracting the earliest
// scheduled event and invoking its callback. See package doc for an
// overview; construct one with NewROEL or NewIOEL.
//
// EventList is not safe for concurrent use. It is a single-threaded
// cooperative engine core: all mutation and run loops are expected to
// execute on one goroutine. The only exception is Interrupt, which may be
// called from another goroutine to cooperatively break a running loop.
type EventList struct {
	clock            float64
	firstUpdate      bool
	defaultResetTime float64
	running          bool

	queue     *eventQueue
	listeners *listenerRegistry
	factory   EventFactory
	tiebreak  tiebreaker

	toStringFn func(*EventList) string

	interruptFlag int32 // atomic; set via Interrupt, polled by the run loop
}

// Option configures an EventList at construction time.
type Option func(*EventList)

// WithDefaultResetTime sets the clock value installed by a no-argument
// Reset. Defaults to negative infinity.
func WithDefaultResetTime(t float64) Option {
	return func(l *EventList) { l.defaultResetTime = t }
}

// WithFactory supplies the EventFactory used by ScheduleFunc and
// ScheduleNowFunc to mint events from a (time, callback, name) triple.
// Without this option, a default factory that constructs *BaseEvent
// values (and never fails) is used.
func WithFactory(f EventFactory) Option {
	return func(l *EventList) {
		if f != nil {
			l.factory = f
		}
	}
}

// WithToStringFunc supplies a custom debug renderer for String(). Without
// this option, String returns "EventList[t=<clock>]".
func WithToStringFunc(f func(*EventList) string) Option {
	return func(l *EventList) { l.toStringFn = f }
}

func newEventList(tb tiebreaker, opts ...Option) *EventList {
	l := &EventList{
		defaultResetTime: math.Inf(-1),
		firstUpdate:      true,
		queue:            newEventQueue(),
		listeners:        newListenerRegistry(),
		factory:          defaultFactory,
		tiebreak:         tb,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.clock = l.defaultResetTime
	return l
}

// GetTime returns the current clock value (the time of the most recently
// processed event, or the reset time if no event has been processed
// since construction or the last reset).
func (l *EventList) GetTime() float64 { return l.clock }

// DefaultResetTime returns the clock value a no-argument Reset installs.
func (l *EventList) DefaultResetTime() float64 { return l.defaultResetTime }

// SetDefaultResetTime sets the clock value a no-argument Reset installs.
// Takes effect on the next such Reset; does not itself touch the clock.
func (l *EventList) SetDefaultResetTime(t float64) { l.defaultResetTime = t }

// Len returns the number of events currently enrolled.
func (l *EventList) Len() int { return l.queue.Len() }

// Contains reports whether e is currently enrolled.
func (l *EventList) Contains(e Event) bool {
	if e == nil {
		return false
	}
	return l.queue.contains(e)
}

// PeekFirst returns the earliest-ordered enrolled event without removing
// it, and false if the list is empty. A read-only query useful to
// observers, such as a trace writer, that want to inspect the next event
// before it is processed; it never alters list state.
func (l *EventList) PeekFirst() (Event, bool) {
	if l.queue.Len() == 0 {
		return nil, false
	}
	return l.queue.peek(), true
}

// String renders a debug representation of the list, by default
// "EventList[t=<clock>]", customizable via WithToStringFunc.
func (l *EventList) String() string {
	if l.toStringFn != nil {
		return l.toStringFn(l)
	}
	return fmt.Sprintf("EventList[t=%v]", l.clock)
}

// Reset clears all enrolled events, sets the clock to the default reset
// time, and fires a reset notification. Fails with *IllegalStateError if
// a run is in progress.
func (l *EventList) Reset() error {
	return l.resetTo(l.defaultResetTime)
}

// ResetTo clears all enrolled events, sets the clock to t (ignoring the
// default reset time), and fires a reset notification. Fails with
// *IllegalStateError if a run is in progress.
func (l *EventList) ResetTo(t float64) error {
	return l.resetTo(t)
}

func (l *EventList) resetTo(t float64) error {
	if l.running {
		return newIllegalStateError("Reset", "cannot reset while a run is in progress")
	}
	l.queue.clear()
	l.clock = t
	l.firstUpdate = true
	l.listeners.fireReset(l)
	return nil
}

// Add enrolls e, assigning it a fresh deconflict value. Returns false
// without error if e is already enrolled (identity comparison). Unlike
// Schedule, Add does not validate e.Time() against the current clock.
// Fails with *IllegalArgumentError if e is nil, or
// *InvariantViolationError if the comparator detects a key collision.
func (l *EventList) Add(e Event) (bool, error) {
	if e == nil {
		return false, newIllegalArgumentError("Add", "event must not be nil")
	}
	if l.queue.contains(e) {
		return false, nil
	}

	queueWasEmpty := l.queue.Len() == 0
	l.tiebreak.assign(queueWasEmpty, e)

	if err := l.queue.push(e); err != nil {
		return false, err
	}
	return true, nil
}

// AddAll enrolls every event in events, as repeated calls to Add. Returns
// true if any event was newly enrolled. Fails with *IllegalArgumentError
// if events is nil.
func (l *EventList) AddAll(events []Event) (bool, error) {
	if events == nil {
		return false, newIllegalArgumentError("AddAll", "collection must not be nil")
	}
	changed := false
	for _, e := range events {
		ok, err := l.Add(e)
		if err != nil {
			return changed, err
		}
		changed = changed || ok
	}
	return changed, nil
}

// Remove unenrolls e, reporting whether it was present. A comparator
// invariant violation surfacing from the removal's internal heap fix-up
// indicates prior corruption and panics rather than returning an error,
// since Remove has no documented failure mode in the public contract.
func (l *EventList) Remove(e Event) bool {
	if e == nil {
		return false
	}
	ok, err := l.queue.remove(e)
	if err != nil {
		panic(err)
	}
	return ok
}

// Schedule enrolls event, taking the schedule time from the event itself.
// Fails with *IllegalArgumentError if event is nil, already enrolled, or
// has a scheduled time earlier than the current clock. This is the sole
// place (together with its relatives below) where "scheduling in the
// past" is detected at submission time; a nested Schedule call from
// within a callback during RunUntil is validated exactly the same way.
func (l *EventList) Schedule(event Event) error {
	if event == nil {
		return newIllegalArgumentError("Schedule", "event must not be nil")
	}
	if l.queue.contains(event) {
		return newIllegalArgumentError("Schedule", "event is already scheduled")
	}
	if event.Time() < l.clock {
		return newIllegalArgumentError("Schedule", "schedule time is in the past")
	}
	_, err := l.Add(event)
	return err
}

// ScheduleAt sets event's time to time, overriding whatever time was
// previously set on it, then Schedules it. Fails as Schedule does.
func (l *EventList) ScheduleAt(time float64, event Event) error {
	if event == nil {
		return newIllegalArgumentError("ScheduleAt", "event must not be nil")
	}
	event.SetTime(time)
	return l.Schedule(event)
}

// Reschedule removes event if present, sets its time to time, then
// Schedules it. Equivalent to Remove(event); event.SetTime(time);
// Schedule(event), with the scheduling-in-past check applied to time.
func (l *EventList) Reschedule(time float64, event Event) error {
	if event == nil {
		return newIllegalArgumentError("Reschedule", "event must not be nil")
	}
	l.Remove(event)
	return l.ScheduleAt(time, event)
}

// ScheduleFunc constructs an event via the configured EventFactory (or
// the default *BaseEvent constructor if none was supplied) and schedules
// it at time. Fails with *IllegalArgumentError if time is earlier than
// the current clock, or *IllegalStateError if construction fails.
func (l *EventList) ScheduleFunc(time float64, cb Callback, name string) (Event, error) {
	if time < l.clock {
		return nil, newIllegalArgumentError("ScheduleFunc", "schedule time is in the past")
	}
	e, err := l.factory(time, cb, name)
	if err != nil {
		return nil, newIllegalStateError("ScheduleFunc", "event construction failed: "+err.Error())
	}
	if _, err := l.Add(e); err != nil {
		return nil, err
	}
	return e, nil
}

// ScheduleNow sets event's time to the current clock, overriding whatever
// time was previously set on it, then Schedules it.
func (l *EventList) ScheduleNow(event Event) error {
	if event == nil {
		return newIllegalArgumentError("ScheduleNow", "event must not be nil")
	}
	event.SetTime(l.clock)
	return l.Schedule(event)
}

// ScheduleNowFunc constructs an event via ScheduleFunc at the current
// clock value.
func (l *EventList) ScheduleNowFunc(cb Callback, name string) (Event, error) {
	return l.ScheduleFunc(l.clock, cb, name)
}

// AddListener registers l under whichever of ResetListener, Listener, or
// FineListener is the richest capability it implements. Nil and
// already-registered listeners are silently ignored.
func (l *EventList) AddListener(listener ResetListener) {
	l.listeners.add(listener)
}

// RemoveListener unregisters listener. Nil and not-present listeners are
// silently ignored.
func (l *EventList) RemoveListener(listener ResetListener) {
	l.listeners.remove(listener)
}

// Interrupt cooperatively requests that a running RunUntil/Run exit at
// its next loop check, leaving the list non-empty (if events remain) and
// the clock at the last processed event's time. May be called from a
// goroutine other than the one driving the run loop. The flag is
// consumed by the first loop check that observes it; it does not persist
// across runs.
func (l *EventList) Interrupt() {
	atomic.StoreInt32(&l.interruptFlag, 1)
}

func (l *EventList) interrupted() bool {
	return atomic.CompareAndSwapInt32(&l.interruptFlag, 1, 0)
}

// clockAdvance moves the clock to newTime, enforcing monotonicity: it is
// an invariant violation for time to move backwards once the clock has
// been observed at least once. An update notification fires on the first
// observation and on every strict increase thereafter.
func (l *EventList) clockAdvance(newTime float64) error {
	if !l.firstUpdate && newTime < l.clock {
		return newInvariantViolationError("clock attempted to move backwards during a run")
	}
	if l.firstUpdate || newTime > l.clock {
		l.clock = newTime
		l.firstUpdate = false
		l.listeners.fireUpdate(l, l.clock)
	}
	return nil
}

// Run drains the list until it is empty or Interrupt is called. Fails
// with *IllegalStateError if a run is already in progress.
func (l *EventList) Run() error {
	return l.RunUntil(math.Inf(1), true, false)
}

// RunUntil processes events with time strictly less than end, plus the
// event(s) at time == end iff inclusive is true, then optionally advances
// the clock to end. Fails with *IllegalStateError if a run is already in
// progress, or *IllegalArgumentError if end is earlier than the current
// clock.
func (l *EventList) RunUntil(end float64, inclusive bool, setTimeToEnd bool) error {
	if l.running {
		return newIllegalStateError("RunUntil", "a run is already in progress")
	}
	if end < l.clock {
		return newIllegalArgumentError("RunUntil", "end time is earlier than the current clock")
	}

	l.running = true
	defer func() {
		l.running = false
		atomic.StoreInt32(&l.interruptFlag, 0)
	}()

	for {
		if l.queue.Len() == 0 {
			break
		}
		first := l.queue.peek()
		t := first.Time()
		if !(t < end || (inclusive && t == end)) {
			break
		}
		if l.interrupted() {
			break
		}

		l.listeners.fireNextEvent(l, l.clock)

		e, err := l.queue.pop()
		if err != nil {
			return err
		}
		if err := l.clockAdvance(e.Time()); err != nil {
			return err
		}
		if cb := e.Callback(); cb != nil {
			cb(e)
		}
	}

	if inclusive && setTimeToEnd && l.clock < end {
		if err := l.clockAdvance(end); err != nil {
			return err
		}
	}
	if l.queue.Len() == 0 {
		l.listeners.fireEmpty(l, l.clock)
	}
	return nil
}

// RunSingleStep processes at most one event (the earliest enrolled). A
// no-op on an empty list. Fails with *IllegalStateError if a run is
// already in progress.
func (l *EventList) RunSingleStep() error {
	if l.running {
		return newIllegalStateError("RunSingleStep", "a run is already in progress")
	}
	if l.queue.Len() == 0 {
		return nil
	}

	l.running = true
	defer func() { l.running = false }()

	l.listeners.fireNextEvent(l, l.clock)

	e, err := l.queue.pop()
	if err != nil {
		return err
	}
	if err := l.clockAdvance(e.Time()); err != nil {
		return err
	}
	if cb := e.Callback(); cb != nil {
		cb(e)
	}
	if l.queue.Len() == 0 {
		l.listeners.fireEmpty(l, l.clock)
	}
	return nil
}
