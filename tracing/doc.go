// Package tracing persists a structured record of every event processed by
// an eventlist.EventList to a local SQLite database. It observes the list
// strictly through the public FineListener contract; it never mutates the
// list and has no bearing on scheduling semantics.
package tracing
