// Package eventlist provides the scheduling core of a discrete-event
// simulation engine: a priority-ordered, time-stamped event list that
// advances a simulated clock by repeatedly extracting the earliest
// scheduled event and invoking its callback.
//
// Two tiebreak disciplines are provided for events scheduled at the same
// time: ROEL (random order, see NewROEL) and IOEL (insertion order, see
// NewIOEL). A single-shot Timer is layered directly on top of EventList.
package eventlist
