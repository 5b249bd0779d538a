// Package monitoring turns a running eventlist.EventList into an HTTP
// server for external observation: current clock/queue-length status,
// process resource usage, and Go's standard profiling endpoints. It is a
// read-only window onto the list; it never schedules, cancels, or removes
// events.
package monitoring
