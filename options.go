package tick

// TickConfig holds the capacities and wiring chosen at construction
// time (spec §4.8).
type TickConfig struct {
	// TransportsCapacity bounds the number of live endpoints (listeners +
	// streams) the slab will hold before Accept/Stream returns
	// ErrTooManySockets.
	TransportsCapacity int
	// NotifyCapacity bounds the number of buffered messages the inbound
	// queue accepts before a Transfer/Notify call blocks the caller's
	// goroutine. Zero means unbounded (buffered append, drained every
	// turn); callers posting at a much higher rate than the reactor
	// drains should set a finite capacity to get backpressure instead.
	NotifyCapacity int

	logger  Logger
	metrics bool
}

const (
	defaultTransportsCapacity = 8192
	defaultNotifyCapacity     = 8192
)

// TickOption configures a Tick instance at construction, mirroring the
// teacher's LoopOption/loopOptionImpl functional-options pattern.
type TickOption interface {
	apply(*TickConfig)
}

type tickOptionFunc func(*TickConfig)

func (f tickOptionFunc) apply(c *TickConfig) { f(c) }

// WithCapacity sets TransportsCapacity and NotifyCapacity.
func WithCapacity(transports, notify int) TickOption {
	return tickOptionFunc(func(c *TickConfig) {
		c.TransportsCapacity = transports
		c.NotifyCapacity = notify
	})
}

// WithLogger wires a Logger for the reactor's diagnostic output. Without
// this option the reactor logs nothing.
func WithLogger(l Logger) TickOption {
	return tickOptionFunc(func(c *TickConfig) {
		c.logger = l
	})
}

// WithMetrics enables the reactor's lightweight counters, retrievable
// via Tick.Metrics.
func WithMetrics(enabled bool) TickOption {
	return tickOptionFunc(func(c *TickConfig) {
		c.metrics = enabled
	})
}

// resolveTickConfig applies opts atop the default capacities.
func resolveTickConfig(opts []TickOption) *TickConfig {
	cfg := &TickConfig{
		TransportsCapacity: defaultTransportsCapacity,
		NotifyCapacity:     defaultNotifyCapacity,
		logger:             noopLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}
