// Package resilience guards downstream calls with per-dependency circuit breakers
// and exponential-backoff retries.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"
)

// ErrCircuitOpen is returned without invoking the operation while a circuit rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

// State is the state of a single circuit.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerSettings configures one circuit.
type BreakerSettings struct {
	FailureThreshold int           `mapstructure:"failure_threshold"` // consecutive failures that open a closed circuit
	SuccessThreshold int           `mapstructure:"success_threshold"` // consecutive half-open successes that close it
	ResetTimeout     time.Duration `mapstructure:"reset_timeout"`     // time after the last failure before probing
}

// DefaultBreakerSettings returns 5 failures, 2 successes, 60s reset timeout.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 5, SuccessThreshold: 2, ResetTimeout: 60 * time.Second}
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	def := DefaultBreakerSettings()
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = def.SuccessThreshold
	}
	if s.ResetTimeout <= 0 {
		s.ResetTimeout = def.ResetTimeout
	}
	return s
}

// CircuitStats is a point-in-time view of a circuit.
type CircuitStats struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	Failures    int       `json:"consecutive_failures"`
	Successes   int       `json:"consecutive_successes"`
	LastFailure time.Time `json:"last_failure_time,omitzero"`
}

type circuit struct {
	mu          sync.Mutex
	name        string
	settings    BreakerSettings
	state       State
	generation  uint64
	failures    int
	successes   int
	probes      int // half-open calls in flight
	lastFailure time.Time
}

// Breakers is a registry of circuits keyed by dependency name.
//
// Circuits are created lazily on first use and live as long as the registry.
// Each circuit has its own lock, so a busy dependency does not serialize others.
type Breakers struct {
	mu       sync.RWMutex
	defaults BreakerSettings
	settings map[string]BreakerSettings
	circuits map[string]*circuit
	now      func() time.Time
}

// Option configures Breakers.
type Option func(*Breakers)

// WithSettings overrides the settings of the named circuit.
func WithSettings(name string, s BreakerSettings) Option {
	return func(b *Breakers) { b.settings[name] = s.withDefaults() }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breakers) { b.now = now }
}

// NewBreakers creates a registry whose circuits use defaults unless overridden.
func NewBreakers(defaults BreakerSettings, opts ...Option) *Breakers {
	b := &Breakers{
		defaults: defaults.withDefaults(),
		settings: make(map[string]BreakerSettings),
		circuits: make(map[string]*circuit),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs op under the named circuit.
//
// While the circuit is open and the reset timeout has not elapsed, op is not invoked and
// an error wrapping ErrCircuitOpen is returned. Any error returned by op counts as a failure,
// except context.Canceled after ctx itself was cancelled: a caller going away says nothing
// about the dependency.
func (b *Breakers) Execute(ctx context.Context, name string, op func(context.Context) error) error {
	c := b.circuit(name)

	gen, err := b.before(c)
	if err != nil {
		return err
	}

	err = op(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		b.release(c, gen)
		return err
	}
	b.after(c, gen, err == nil)

	return err
}

// Execute is the value-returning form of Breakers.Execute.
func Execute[T any](ctx context.Context, b *Breakers, name string, op func(context.Context) (T, error)) (T, error) {
	var res T
	err := b.Execute(ctx, name, func(ctx context.Context) error {
		var err error
		res, err = op(ctx)
		return err
	})
	return res, err
}

// State returns the current state of the named circuit.
func (b *Breakers) State(name string) State {
	c := b.circuit(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a snapshot of every circuit created so far, sorted by name.
func (b *Breakers) Stats() []CircuitStats {
	b.mu.RLock()
	circuits := make([]*circuit, 0, len(b.circuits))
	for _, c := range b.circuits {
		circuits = append(circuits, c)
	}
	b.mu.RUnlock()

	stats := make([]CircuitStats, 0, len(circuits))
	for _, c := range circuits {
		c.mu.Lock()
		stats = append(stats, CircuitStats{
			Name:        c.name,
			State:       c.state.String(),
			Failures:    c.failures,
			Successes:   c.successes,
			LastFailure: c.lastFailure,
		})
		c.mu.Unlock()
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

func (b *Breakers) circuit(name string) *circuit {
	b.mu.RLock()
	c, ok := b.circuits[name]
	b.mu.RUnlock()
	if ok {
		return c
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok = b.circuits[name]; ok {
		return c
	}

	settings, ok := b.settings[name]
	if !ok {
		settings = b.defaults
	}

	c = &circuit{name: name, settings: settings, state: StateClosed}
	b.circuits[name] = c
	return c
}

func (b *Breakers) before(c *circuit) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateOpen {
		if b.now().Sub(c.lastFailure) < c.settings.ResetTimeout {
			return 0, fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
		}
		c.setState(StateHalfOpen)
	}

	if c.state == StateHalfOpen {
		if c.probes >= c.settings.SuccessThreshold {
			return 0, fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
		}
		c.probes++
	}

	return c.generation, nil
}

func (b *Breakers) after(c *circuit, gen uint64, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// the circuit changed state while the call was running
	if gen != c.generation {
		return
	}

	if c.state == StateHalfOpen {
		c.probes--
	}

	if success {
		switch c.state {
		case StateClosed:
			c.failures = 0
		case StateHalfOpen:
			c.successes++
			if c.successes >= c.settings.SuccessThreshold {
				c.setState(StateClosed)
			}
		}
		return
	}

	c.lastFailure = b.now()

	switch c.state {
	case StateClosed:
		c.failures++
		if c.failures >= c.settings.FailureThreshold {
			c.setState(StateOpen)
		}
	case StateHalfOpen:
		c.setState(StateOpen)
	}
}

// release frees a half-open probe slot without recording an outcome.
func (b *Breakers) release(c *circuit, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen == c.generation && c.state == StateHalfOpen {
		c.probes--
	}
}

// setState must be called with c.mu held.
func (c *circuit) setState(s State) {
	prev := c.state
	c.state = s
	c.generation++
	c.successes = 0
	c.probes = 0
	if s == StateClosed {
		c.failures = 0
	}

	zlog.Logger.Warn().
		Str("breaker", c.name).
		Str("from", prev.String()).
		Str("to", s.String()).
		Msg("circuit state changed")
}
