package middleware

import (
	"fmt"
	"sync"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/domain/repository"
)

// TickSink receives validated ticks.
type TickSink interface {
	HandleTick(req *models.TickRequest) []*models.Trade
}

// TickPipeline sits between the market stream and the engine. It
// validates frames and throttles per-symbol bursts so a noisy feed
// cannot monopolize the engine lock.
type TickPipeline struct {
	sink    TickSink
	metrics repository.Metrics
	maxRPS  int

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

type PipelineOption func(*TickPipeline)

// WithMaxRPS sets the max ticks per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// NewTickPipeline creates a new pipeline.
func NewTickPipeline(sink TickSink, metrics repository.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   20, // default throttle per symbol
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates and throttles one tick, then hands it to the sink.
// Throttled ticks are dropped silently; invalid ones return an error.
func (p *TickPipeline) Process(t *models.Tick) error {
	if err := validateTick(t); err != nil {
		if p.metrics != nil {
			p.metrics.RecordError("pipeline_validate")
		}
		return err
	}
	if !p.allow(t.Symbol, time.Now()) {
		if p.metrics != nil {
			p.metrics.RecordError("pipeline_throttle")
		}
		return nil
	}

	size := t.Size
	if size <= 0 {
		size = 1
	}
	p.sink.HandleTick(&models.TickRequest{
		Symbol: t.Symbol,
		Price:  t.Price,
		Size:   size,
		Ts:     t.Ts,
	})
	return nil
}

func validateTick(t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Price <= 0 {
		return fmt.Errorf("price invalid")
	}
	if t.Size < 0 {
		return fmt.Errorf("negative size")
	}
	return nil
}

// allow enforces at most maxRPS accepted ticks per second per symbol.
func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	last := p.lastSeen[symbol]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[symbol] = now
		return true
	}
	return false
}
