package recording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/jandejongh/jsimulation/eventlist"
)

// runEntry is one completed run's aggregate row.
type runEntry struct {
	RunID           string
	StartTime       float64
	EndTime         float64
	EventsProcessed uint64
	Updates         uint64
	DurationSeconds float64
}

// Recorder accumulates per-run statistics for one or more EventLists and
// batches them to ClickHouse, flushing on batch-size overflow or at process
// exit. It writes to a single "runs" table: a run is this domain's only
// aggregate of interest, with no further hierarchy to track underneath it.
//
// A "run" here is the span between two consecutive OnEmpty notifications
// (or between construction/reset and the first OnEmpty): the recorder
// observes the list as a FineListener so it can count processed events
// exactly via OnNextEvent, even though Listener capability alone would
// suffice for the update/empty bookkeeping.
type Recorder struct {
	conn      clickhouse.Conn
	tableName string
	batchSize int

	mu      sync.Mutex
	pending []runEntry

	runStart        float64
	runStarted      bool
	eventsProcessed uint64
	updates         uint64
	wallClockStart  time.Time
}

// NewRecorder dials ClickHouse at addr (host:port) and returns a Recorder
// that inserts into tableName (created if absent), batching up to
// batchSize rows before flushing.
func NewRecorder(addr, database, username, password, tableName string, batchSize int) (*Recorder, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("recording: open clickhouse connection: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("recording: ping clickhouse: %w", err)
	}

	r := &Recorder{
		conn:      conn,
		tableName: tableName,
		batchSize: batchSize,
	}

	if err := r.createTable(context.Background()); err != nil {
		return nil, err
	}

	atexit.Register(func() { r.Flush() })
	return r, nil
}

func (r *Recorder) createTable(ctx context.Context) error {
	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			RunID String,
			StartTime Float64,
			EndTime Float64,
			EventsProcessed UInt64,
			Updates UInt64,
			DurationSeconds Float64
		) ENGINE = MergeTree()
		ORDER BY (RunID, StartTime)
	`, r.tableName)
	if err := r.conn.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("recording: create table %s: %w", r.tableName, err)
	}
	return nil
}

// OnReset implements eventlist.FineListener. A reset abandons any
// in-progress run's bookkeeping without emitting a row for it.
func (r *Recorder) OnReset(*eventlist.EventList) {
	r.runStarted = false
	r.eventsProcessed = 0
	r.updates = 0
}

// OnUpdate implements eventlist.FineListener.
func (r *Recorder) OnUpdate(_ *eventlist.EventList, time float64) {
	if !r.runStarted {
		r.runStart = time
		r.runStarted = true
		r.wallClockStart = nowForMetrics()
	}
	r.updates++
}

// OnNextEvent implements eventlist.FineListener.
func (r *Recorder) OnNextEvent(*eventlist.EventList, float64) {
	r.eventsProcessed++
}

// OnEmpty implements eventlist.FineListener. It closes out the current run
// and enqueues its aggregate row.
func (r *Recorder) OnEmpty(_ *eventlist.EventList, time float64) {
	if !r.runStarted {
		return
	}

	entry := runEntry{
		RunID:           xid.New().String(),
		StartTime:       r.runStart,
		EndTime:         time,
		EventsProcessed: r.eventsProcessed,
		Updates:         r.updates,
		DurationSeconds: nowForMetrics().Sub(r.wallClockStart).Seconds(),
	}

	r.mu.Lock()
	r.pending = append(r.pending, entry)
	shouldFlush := len(r.pending) >= r.batchSize
	r.mu.Unlock()

	r.runStarted = false
	r.eventsProcessed = 0
	r.updates = 0

	if shouldFlush {
		r.Flush()
	}
}

// Flush writes all pending run rows to ClickHouse in a single batch insert.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return
	}

	ctx := context.Background()
	batch, err := r.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", r.tableName))
	if err != nil {
		fmt.Printf("recording: prepare batch: %v\n", err)
		return
	}

	for _, e := range r.pending {
		if err := batch.Append(
			e.RunID, e.StartTime, e.EndTime, e.EventsProcessed, e.Updates, e.DurationSeconds,
		); err != nil {
			fmt.Printf("recording: append row: %v\n", err)
			return
		}
	}

	if err := batch.Send(); err != nil {
		fmt.Printf("recording: send batch: %v\n", err)
		return
	}
	r.pending = r.pending[:0]
}

// Close flushes any pending rows and closes the ClickHouse connection.
func (r *Recorder) Close() error {
	r.Flush()
	return r.conn.Close()
}

// nowForMetrics is the sole wall-clock read in the package, isolated so
// tests can observe duration bookkeeping deterministically if needed.
func nowForMetrics() time.Time {
	return time.Now()
}

var _ eventlist.FineListener = (*Recorder)(nil)
