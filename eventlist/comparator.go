package eventlist

import "math"

// compare implements the event list's total order: primarily by Time
// (ascending, -Inf < finite < +Inf), secondarily by Deconflict (ascending,
// as signed 64-bit integers). It returns a negative number if a sorts
// before b, a positive number if a sorts after b, and zero if they are
// equal under the key.
//
// The comparator is pure: it never mutates or assigns Deconflict values;
// that is the insertion operation's responsibility (see roel.go, ioel.go).
//
// If the key comparison disagrees with object identity - that is, two
// distinct events compare equal, or the same event compares unequal to
// itself - an InvariantViolationError is returned alongside the
// (otherwise meaningless) ordering value. Callers must check the error.
func compare(a, b Event) (int, error) {
	c := compareFloat64(a.Time(), b.Time())
	if c == 0 {
		c = compareInt64(a.Deconflict(), b.Deconflict())
	}

	sameObject := sameEvent(a, b)
	if (sameObject && c != 0) || (!sameObject && c == 0) {
		return c, newInvariantViolationError("comparator detected same-key distinct events or mismatched self-comparison")
	}

	return c, nil
}

// sameEvent reports whether a and b are the same event object. Events are
// typically pointers (e.g. *BaseEvent); interface equality compares the
// dynamic type and value, i.e. pointer identity for pointer-typed events.
func sameEvent(a, b Event) bool {
	return a == b
}

func compareFloat64(x, y float64) int {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		panic("eventlist: NaN is not a permitted event time")
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareInt64(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
