package eventlist

import "math"

// ioelTiebreak assigns a monotonically increasing int64 deconflict value to
// every event added, reset to its seed whenever the queue is empty at the
// start of the add (amortising rollover across runs). Events scheduled at
// the same time are therefore processed in insertion order, as long as the
// counter does not wrap within a single non-empty interval.
type ioelTiebreak struct {
	counter int64
}

const ioelSeed = math.MinInt64

func newIOELTiebreak() *ioelTiebreak {
	return &ioelTiebreak{counter: ioelSeed}
}

func (t *ioelTiebreak) assign(queueWasEmpty bool, e Event) {
	if queueWasEmpty {
		t.counter = ioelSeed
	}
	t.counter++
	e.SetDeconflict(t.counter)
}

// NewIOEL constructs a new Insertion-Order Event List: events scheduled at
// the same time are processed in the order they were added.
func NewIOEL(opts ...Option) *EventList {
	return newEventList(newIOELTiebreak(), opts...)
}
