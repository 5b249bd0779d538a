package eventlist

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator generates display/debug identities for events. It has no
// bearing on scheduling order, which is governed entirely by the
// comparator's (time, deconflict) key.
type IDGenerator interface {
	Generate() string
}

var (
	idGeneratorMutex       sync.Mutex
	idGeneratorInitialized bool
	idGenerator            IDGenerator
)

// UseSequentialIDGenerator configures the package-wide ID generator to
// produce small, deterministic, human-readable sequential IDs. Useful for
// reproducible test output. Panics if the generator has already been used.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseXIDGenerator configures the package-wide ID generator to produce
// globally unique, sortable xid identifiers, suitable for correlating
// events across distinct runs or processes (e.g. in the tracing package).
func UseXIDGenerator() {
	setIDGenerator(&xidGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()
	if idGeneratorInitialized {
		panic("eventlist: cannot change ID generator after it has been used")
	}
	idGenerator = g
	idGeneratorInitialized = true
}

// GetIDGenerator returns the ID generator in use, defaulting to a
// sequential generator if none was explicitly selected.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()
	if !idGeneratorInitialized {
		idGenerator = &sequentialIDGenerator{}
		idGeneratorInitialized = true
	}
	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	n := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(n, 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
