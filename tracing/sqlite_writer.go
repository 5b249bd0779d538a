package tracing

import (
	"database/sql"
	"fmt"
	"os"

	// Registers the "sqlite3" driver used by Open.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/jandejongh/jsimulation/eventlist"
)

// row is one processed-event record, captured just before the event is
// popped from its EventList (see Writer.OnNextEvent).
type row struct {
	id         string
	name       string
	time       float64
	deconflict int64
}

// Writer is a FineListener that records every event an EventList processes
// to a SQLite database, batching inserts and flushing on demand, on batch
// size overflow, or at process exit.
//
// The schema is a single (id, name, time, deconflict) row per processed
// event: the event-list core has no notion of tasks, milestones, or
// dependencies, so there is no richer table family to maintain.
type Writer struct {
	*sql.DB

	path      string
	sessionID string
	statement *sql.Stmt

	pending   []row
	batchSize int

	// lastEventID holds the ID of the event most recently seen by
	// OnNextEvent. Nothing else in the package reads it.
	lastEventID string
}

// NewWriter creates a Writer that will persist to a SQLite database file at
// path. Call Open before registering it as a listener.
func NewWriter(path string) *Writer {
	w := &Writer{
		path:      path,
		sessionID: xid.New().String(),
		batchSize: 1000,
	}
	atexit.Register(func() { w.Flush() })
	return w
}

// WithBatchSize overrides the default flush batch size of 1000 rows.
func (w *Writer) WithBatchSize(n int) *Writer {
	if n > 0 {
		w.batchSize = n
	}
	return w
}

// Open establishes the database connection, creates the trace table if
// necessary, and prepares the insert statement.
func (w *Writer) Open() error {
	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		return fmt.Errorf("tracing: open %s: %w", w.path, err)
	}
	w.DB = db

	if _, err := w.Exec(`
		CREATE TABLE IF NOT EXISTS event_trace (
			session_id varchar(40) not null,
			event_id   varchar(40) not null,
			name       varchar(200) not null default '',
			time       float not null,
			deconflict bigint not null
		)
	`); err != nil {
		return fmt.Errorf("tracing: create table: %w", err)
	}
	if _, err := w.Exec(`
		CREATE INDEX IF NOT EXISTS event_trace_time_index ON event_trace (time)
	`); err != nil {
		return fmt.Errorf("tracing: create index: %w", err)
	}

	stmt, err := w.Prepare(`
		INSERT INTO event_trace (session_id, event_id, name, time, deconflict)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("tracing: prepare insert: %w", err)
	}
	w.statement = stmt
	return nil
}

// OnReset implements eventlist.FineListener. A reset does not itself write
// a row; it is a no-op observation point.
func (w *Writer) OnReset(*eventlist.EventList) {}

// OnUpdate implements eventlist.FineListener. Clock advances are not
// separately traced; per-event rows carry the time already.
func (w *Writer) OnUpdate(*eventlist.EventList, float64) {}

// OnEmpty implements eventlist.FineListener. An empty list flushes any
// pending rows immediately rather than waiting for the batch to fill, so a
// run's trace is durable as soon as it drains.
func (w *Writer) OnEmpty(*eventlist.EventList, float64) {
	w.Flush()
}

// OnNextEvent implements eventlist.FineListener. It fires before the
// earliest event is popped, so it peeks the list's front event via
// EventList.PeekFirst to record it before it disappears from the queue.
func (w *Writer) OnNextEvent(list *eventlist.EventList, _ float64) {
	e, ok := list.PeekFirst()
	if !ok {
		return
	}

	id := e.Name()
	if bi, ok := e.(*eventlist.BaseEvent); ok {
		id = bi.ID()
	}
	w.lastEventID = id

	w.pending = append(w.pending, row{
		id:         id,
		name:       e.Name(),
		time:       e.Time(),
		deconflict: e.Deconflict(),
	})
	if len(w.pending) >= w.batchSize {
		w.Flush()
	}
}

// Flush writes all pending rows to the database in a single transaction.
// A no-op if there is nothing pending or Open has not yet been called.
func (w *Writer) Flush() {
	if len(w.pending) == 0 || w.statement == nil {
		return
	}

	tx, err := w.Begin()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracing: begin transaction: %v\n", err)
		return
	}

	stmt := tx.Stmt(w.statement)
	for _, r := range w.pending {
		if _, err := stmt.Exec(w.sessionID, r.id, r.name, r.time, r.deconflict); err != nil {
			fmt.Fprintf(os.Stderr, "tracing: insert row %+v: %v\n", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		fmt.Fprintf(os.Stderr, "tracing: commit transaction: %v\n", err)
	}
	w.pending = nil
}

var _ eventlist.FineListener = (*Writer)(nil)
