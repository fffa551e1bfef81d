package trade

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces trade, event and correlation identifiers from an
// explicitly owned random source. It is safe for concurrent use.
type IDGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewIDGenerator seeds the generator from the wall clock.
func NewIDGenerator() *IDGenerator {
	return NewIDGeneratorWithSeed(time.Now().UnixNano())
}

// NewIDGeneratorWithSeed creates a generator with a fixed seed, useful in
// tests that need reproducible IDs.
func NewIDGeneratorWithSeed(seed int64) *IDGenerator {
	return &IDGenerator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// TradeID returns a human-legible trade identifier of the form
// TRD-<unix-seconds>-<6 digits>. Uniqueness is enforced by the caller
// against the record store, not by this function.
func (g *IDGenerator) TradeID() string {
	g.mu.Lock()
	n := 100000 + g.rng.Intn(900000)
	g.mu.Unlock()
	return fmt.Sprintf("TRD-%d-%d", g.now().Unix(), n)
}

// UniqueTradeID returns a UUID-based trade identifier. Used as the fallback
// when the legible form keeps colliding.
func (g *IDGenerator) UniqueTradeID() string {
	return "TRD-" + uuid.NewString()
}

// EventID returns a unique event identifier.
func (g *IDGenerator) EventID() string {
	return "EVT-" + uuid.NewString()
}

// CorrelationID returns a generated correlation identifier for requests
// that did not supply one.
func (g *IDGenerator) CorrelationID() string {
	return "CORR-" + uuid.NewString()
}
