package identity

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Strategy names a block id generation scheme.
type Strategy string

const (
	StrategyULID    Strategy = "ulid"
	StrategyUUID    Strategy = "uuid"
	StrategyCounter Strategy = "counter"
)

// Generator produces block ids. Implementations never hand out the same id twice.
type Generator interface {
	NewID() (string, error)
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func() (string, error)

func (fn GeneratorFunc) NewID() (string, error) {
	return fn()
}

// NewGenerator returns the generator for strategy. Unknown strategies fall back to ULIDs.
func NewGenerator(strategy Strategy) Generator {
	switch Strategy(strings.ToLower(strings.TrimSpace(string(strategy)))) {
	case StrategyUUID:
		return GeneratorFunc(func() (string, error) {
			return uuid.NewString(), nil
		})
	case StrategyCounter:
		return NewCounter("blk_")
	default:
		return NewULIDGenerator(time.Now)
	}
}

// ULIDGenerator issues lexically sortable ids from a monotonic entropy source.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewULIDGenerator constructs a ULID generator using now as its clock.
func NewULIDGenerator(now func() time.Time) *ULIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     now,
	}
}

func (g *ULIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("generate block id: insufficient entropy")
		}
		return "", fmt.Errorf("generate block id: %w", err)
	}
	return id.String(), nil
}

// Counter issues sequential ids with a fixed prefix. It is deterministic and meant for tests,
// fixtures and CLI output that must stay stable across runs.
type Counter struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewCounter returns a counter starting at 1.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix, next: 1}
}

func (c *Counter) NewID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.prefix + strconv.Itoa(c.next)
	c.next++
	return id, nil
}

// Unique wraps a generator and skips ids reported as taken.
func Unique(gen Generator, taken func(string) bool) (string, error) {
	if gen == nil {
		gen = NewGenerator(StrategyULID)
	}
	for attempt := 0; attempt < 1024; attempt++ {
		id, err := gen.NewID()
		if err != nil {
			return "", err
		}
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate block id: exhausted attempts")
}
