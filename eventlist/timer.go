package eventlist

import "math"

// Timer is a single-shot, cancellable delay abstraction layered on top of
// EventList: it owns one hidden event and re-exposes schedule/cancel/expire
// semantics through three overridable hooks. State machine: idle →
// scheduled (Schedule) → idle (on expiration or Cancel); a Timer may be
// re-scheduled on the same or a different list only once it has returned to
// idle.
//
// OnExpire clears the host list before invoking the user hook, so the
// hook may immediately reschedule the timer; OnCancel is never invoked
// for an already-idle Timer.
type Timer struct {
	name        string
	hostList    *EventList
	expireEvent *BaseEvent

	// OnSchedule, if set, is invoked after the expiration event has been
	// enrolled, with the clock value at the time of scheduling. The
	// default does nothing.
	OnSchedule func(time float64)

	// OnExpire, if set, is invoked when the timer's hidden event fires,
	// with the event's (expiration) time. By the time this hook runs the
	// timer is already idle. The default does nothing.
	OnExpire func(time float64)

	// OnCancel, if set, is invoked when a scheduled timer is canceled,
	// with the clock value captured before the timer returns to idle.
	// Never invoked for a Cancel on an already-idle timer. The default
	// does nothing.
	OnCancel func(time float64)
}

// NewTimer creates an idle Timer with the given display name.
func NewTimer(name string) *Timer {
	t := &Timer{name: name}
	t.expireEvent = NewBaseEvent(0, nil, name+"_expire")
	t.expireEvent.SetCallback(t.onExpireEvent)
	return t
}

// Name returns the timer's display name.
func (t *Timer) Name() string { return t.name }

// Scheduled reports whether the timer is currently scheduled on a list.
func (t *Timer) Scheduled() bool { return t.hostList != nil }

// Schedule enrolls the timer's hidden event on list, to fire after delay
// simulated time units. Fails with *IllegalArgumentError if delay is
// negative or infinite, list is nil, or list's current clock is infinite
// — a stricter rule than the list's own tolerance for -Inf clocks, since a
// delay added to an infinite clock can never produce a meaningful
// expiration time. Fails with *IllegalStateError if the timer is already
// scheduled.
func (t *Timer) Schedule(delay float64, list *EventList) error {
	if delay < 0 || math.IsInf(delay, 0) {
		return newIllegalArgumentError("Timer.Schedule", "delay must be finite and non-negative")
	}
	if list == nil {
		return newIllegalArgumentError("Timer.Schedule", "list must not be nil")
	}
	if math.IsInf(list.GetTime(), 0) {
		return newIllegalArgumentError("Timer.Schedule", "list's current time must be finite")
	}
	if t.hostList != nil {
		return newIllegalStateError("Timer.Schedule", "timer is already scheduled")
	}

	now := list.GetTime()
	t.expireEvent.SetTime(now + delay)
	if _, err := list.Add(t.expireEvent); err != nil {
		return err
	}
	t.hostList = list

	if t.OnSchedule != nil {
		t.OnSchedule(now)
	}
	return nil
}

// Cancel unschedules the timer's hidden event if scheduled; a no-op
// (including the OnCancel hook) if the timer is already idle.
func (t *Timer) Cancel() {
	if t.hostList == nil {
		return
	}
	list := t.hostList
	now := list.GetTime()
	list.Remove(t.expireEvent)
	t.hostList = nil
	if t.OnCancel != nil {
		t.OnCancel(now)
	}
}

// onExpireEvent is the hidden event's callback: it returns the timer to
// idle before invoking the user-overridable expiration hook, so OnExpire
// may immediately reschedule the timer (possibly on a different list).
func (t *Timer) onExpireEvent(e Event) {
	t.hostList = nil
	if t.OnExpire != nil {
		t.OnExpire(e.Time())
	}
}
