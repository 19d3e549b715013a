package usecase

import (
	"context"
	"time"

	"EvoTrader/internal/domain/repository"
	applogger "EvoTrader/pkg/logger"
)

// OutcomeProcessor drains engine outcomes and routes them to the
// configured sinks: closed trades to durable storage, signal entries to
// the external bus. Either sink may be nil.
type OutcomeProcessor struct {
	engine  *Engine
	trades  repository.TradeSink
	signals repository.SignalPublisher
	metrics repository.Metrics
	logger  *applogger.Logger
}

func NewOutcomeProcessor(
	engine *Engine,
	trades repository.TradeSink,
	signals repository.SignalPublisher,
	metrics repository.Metrics,
	l *applogger.Logger,
) *OutcomeProcessor {
	if l == nil {
		l = applogger.Nop()
	}
	return &OutcomeProcessor{
		engine:  engine,
		trades:  trades,
		signals: signals,
		metrics: metrics,
		logger:  l,
	}
}

// Run consumes outcomes until ctx is cancelled. Sink failures are
// logged and counted; they never propagate back to the engine.
func (p *OutcomeProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-p.engine.Outcomes():
			if !ok {
				return
			}
			p.process(ctx, o)
		}
	}
}

func (p *OutcomeProcessor) process(ctx context.Context, o Outcome) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch {
	case o.Trade != nil && p.trades != nil:
		start := time.Now()
		if err := p.trades.StoreTrade(opCtx, o.Trade); err != nil {
			if p.metrics != nil {
				p.metrics.RecordError("trade_sink")
			}
			p.logger.Error("store trade", applogger.Int64("id", o.Trade.ID), applogger.Error(err))
			return
		}
		if p.metrics != nil {
			p.metrics.RecordLatency("trade_sink", time.Since(start).Seconds())
		}
	case o.Signal != nil && p.signals != nil:
		if err := p.signals.PublishSignal(opCtx, o.Signal); err != nil {
			if p.metrics != nil {
				p.metrics.RecordError("signal_publish")
			}
			p.logger.Error("publish signal", applogger.String("status", o.Signal.Status), applogger.Error(err))
		}
	}
}
