package eventlist

import "fmt"

// IllegalArgumentError reports a bad input: a nil event or collection where
// one is forbidden, a negative or infinite timer delay, an end time earlier
// than the current clock, scheduling an event already enrolled, or
// scheduling a time strictly earlier than the current clock.
type IllegalArgumentError struct {
	Op     string
	Reason string
}

func (e *IllegalArgumentError) Error() string {
	return fmt.Sprintf("eventlist: illegal argument in %s: %s", e.Op, e.Reason)
}

func newIllegalArgumentError(op, reason string) *IllegalArgumentError {
	return &IllegalArgumentError{Op: op, Reason: reason}
}

// IllegalStateError reports a lifecycle violation: a reentrant or
// concurrent run/reset, a timer that is already scheduled, or event
// construction failure via a caller-supplied factory.
type IllegalStateError struct {
	Op     string
	Reason string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("eventlist: illegal state in %s: %s", e.Op, e.Reason)
}

func newIllegalStateError(op, reason string) *IllegalStateError {
	return &IllegalStateError{Op: op, Reason: reason}
}

// InvariantViolationError reports a fatal bug: the comparator detected two
// distinct events sharing a (time, deconflict) key, two event references
// that are the same object producing a nonzero comparison, or the clock
// attempting to move backwards during a run.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("eventlist: invariant violation: %s", e.Reason)
}

func newInvariantViolationError(reason string) *InvariantViolationError {
	return &InvariantViolationError{Reason: reason}
}
