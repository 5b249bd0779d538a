package eventlist

import "math/rand"

// roelTiebreak assigns a uniformly random int64 deconflict value to every
// event added, drawn from a PRNG stream private to the list rather than
// any process-wide generator, so that two lists never interfere with each
// other's ordering. Two events landing on the same random value is
// astronomically unlikely but not impossible; when it happens the
// resulting comparator violation is surfaced, never silently resampled.
type roelTiebreak struct {
	rng *rand.Rand
}

func newROELTiebreak(seed int64) *roelTiebreak {
	return &roelTiebreak{rng: rand.New(rand.NewSource(seed))}
}

func (t *roelTiebreak) assign(_ bool, e Event) {
	// Full-width signed 64-bit draw; rand.Int63 alone only covers the
	// non-negative half of the range.
	e.SetDeconflict(int64(t.rng.Uint64()))
}

// setSeed reseeds the tiebreak stream. Future deconflict values are drawn
// from the reseeded stream; already-enrolled events are unaffected.
func (t *roelTiebreak) setSeed(seed int64) {
	t.rng = rand.New(rand.NewSource(seed))
}

// NewROEL constructs a new Random-Order Event List: events scheduled at the
// same time are processed in an order determined by the seeded random
// tiebreak stream, repeatable across runs given the same seed and the same
// insertion sequence.
func NewROEL(seed int64, opts ...Option) *EventList {
	return newEventList(newROELTiebreak(seed), opts...)
}

// SetROELSeed reseeds list's random tiebreak stream. Panics if list was not
// constructed with NewROEL.
func SetROELSeed(list *EventList, seed int64) {
	tb, ok := list.tiebreak.(*roelTiebreak)
	if !ok {
		panic("eventlist: SetROELSeed called on a non-ROEL EventList")
	}
	tb.setSeed(seed)
}
