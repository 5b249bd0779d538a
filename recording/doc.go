// Package recording exports aggregate run statistics for an
// eventlist.EventList — events processed, update count, run duration — to
// ClickHouse for long-term trend analysis across runs. It observes the
// list strictly through the public listener contract.
package recording
