package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync/atomic"
	"time"

	// Registers the pprof handlers under /debug/pprof/ on http.DefaultServeMux.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/jandejongh/jsimulation/eventlist"
)

// snapshot is the latest published view of an EventList's state. Reads and
// writes go through atomic fields only, so the HTTP handler goroutines
// never need to touch the EventList directly — the list's own goroutine
// publishes a new snapshot from listener callbacks as it runs.
//
// The event-list core makes no concurrent-read guarantee of its own, so
// this snapshot is interposed to keep the server honest about only ever
// observing published state rather than reaching into a structure that
// may be mutating on another goroutine.
type snapshot struct {
	clockBits uint64 // math.Float64bits(clock)
	length    int64
	running   int32
}

func (s *snapshot) publish(clock float64, length int, running bool) {
	atomic.StoreUint64(&s.clockBits, math.Float64bits(clock))
	atomic.StoreInt64(&s.length, int64(length))
	r := int32(0)
	if running {
		r = 1
	}
	atomic.StoreInt32(&s.running, r)
}

func (s *snapshot) read() (clock float64, length int, running bool) {
	clock = math.Float64frombits(atomic.LoadUint64(&s.clockBits))
	length = int(atomic.LoadInt64(&s.length))
	running = atomic.LoadInt32(&s.running) != 0
	return
}

// Monitor turns an eventlist.EventList into an HTTP server exposing its
// status, host resource usage, and Go's standard profiler.
type Monitor struct {
	list       *eventlist.EventList
	portNumber int
	snap       snapshot
	obs        *observer
}

// NewMonitor creates a Monitor watching list. The Monitor registers itself
// as a Listener on list to keep its published snapshot current; call
// StartServer to begin serving.
func NewMonitor(list *eventlist.EventList) *Monitor {
	m := &Monitor{list: list}
	m.obs = &observer{m: m}
	list.AddListener(m.obs)
	m.snap.publish(list.GetTime(), list.Len(), false)
	return m
}

// WithPortNumber sets the TCP port the monitor listens on. A value below
// 1000 is rejected in favor of a random ephemeral port, guarding against
// accidentally binding a well-known port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"monitoring: port %d is not allowed, using a random port instead\n", portNumber)
		portNumber = 0
	}
	m.portNumber = portNumber
	return m
}

// observer is a thin eventlist.Listener adapter that republishes the
// Monitor's snapshot on every notification. Kept as a separate type so
// Monitor itself does not need to satisfy the Listener interface in its
// public surface.
type observer struct {
	m *Monitor
}

func (o *observer) OnReset(list *eventlist.EventList) {
	o.m.snap.publish(list.GetTime(), list.Len(), false)
}

func (o *observer) OnUpdate(list *eventlist.EventList, _ float64) {
	o.m.snap.publish(list.GetTime(), list.Len(), true)
}

func (o *observer) OnEmpty(list *eventlist.EventList, _ float64) {
	o.m.snap.publish(list.GetTime(), list.Len(), false)
}

var _ eventlist.Listener = (*observer)(nil)

// StartServer starts the HTTP server on a background goroutine and returns
// immediately. Routes:
//
//	GET /status          clock, queue length, running flag as JSON
//	GET /debug/resources CPU percent and RSS of this process as JSON
//	GET /debug/pprof/*   the standard net/http/pprof handler family
func (m *Monitor) StartServer() (net.Addr, error) {
	r := mux.NewRouter()
	r.HandleFunc("/status", m.status)
	r.HandleFunc("/debug/resources", m.resources)
	r.HandleFunc("/debug/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	actualPort := ":0"
	if m.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return nil, fmt.Errorf("monitoring: listen: %w", err)
	}

	fmt.Fprintf(os.Stderr, "monitoring simulation at http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		if err := http.Serve(listener, r); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "monitoring: server stopped: %v\n", err)
		}
	}()

	return listener.Addr(), nil
}

type statusResponse struct {
	Clock   float64 `json:"clock"`
	Length  int     `json:"queue_length"`
	Running bool    `json:"running"`
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	clock, length, running := m.snap.read()
	writeJSON(w, statusResponse{Clock: clock, Length: length, Running: running})
}

type resourcesResponse struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) resources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourcesResponse{CPUPercent: cpuPercent, MemorySize: memInfo.RSS})
}

// collectProfile captures a one-second CPU profile and renders it as
// JSON.
func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
