package usecase

import (
	"context"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/domain/repository"
	mid "EvoTrader/internal/middleware"
)

// TickCollector pulls ticks from the market stream and feeds them
// through the pipeline into the engine.
type TickCollector struct {
	stream  repository.TickStream
	pipe    *mid.TickPipeline
	engine  *Engine
	metrics repository.Metrics
}

// NewTickCollector creates a new TickCollector instance.
func NewTickCollector(stream repository.TickStream, pipe *mid.TickPipeline, engine *Engine, metrics repository.Metrics) *TickCollector {
	return &TickCollector{stream: stream, pipe: pipe, engine: engine, metrics: metrics}
}

// IsConnected returns true if the market stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and begins the consume loop.
func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				if c.metrics != nil {
					c.metrics.RecordError("stream")
				}
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(t)
			} else {
				c.engine.HandleTick(&models.TickRequest{Symbol: t.Symbol, Price: t.Price, Size: t.Size, Ts: t.Ts})
			}
		}
	}
}

// Stop closes the stream.
func (c *TickCollector) Stop() error { return c.stream.Close() }
