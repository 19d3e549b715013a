package repository

import (
	"context"

	"EvoTrader/internal/domain/models"
)

// Metrics abstracts engine instrumentation.
type Metrics interface {
	RecordAlert(status string)
	RecordTick(symbol string, price float64)
	RecordTradeOpened(source string)
	RecordTradeClosed(reason string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	SetGeneration(gen int)
	SetBestScore(score float64)
	SetRealized(pnl float64)
}

// TickStream is an upstream market data feed (e.g. a WebSocket source).
type TickStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	IsConnected() bool
	Close() error
}

// TradeSink persists closed trades for offline analysis. Writes are
// best-effort and must never block engine state mutation.
type TradeSink interface {
	StoreTrade(ctx context.Context, t *models.Trade) error
}

// SignalPublisher fans decision outcomes out to an external bus.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, s *models.SignalEntry) error
	Close() error
}

// Dispatcher forwards an executed decision to the live order endpoint.
type Dispatcher interface {
	Dispatch(ctx context.Context, endpoint string, payload *models.OrderPayload) *models.DispatchResult
}
