package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"EvoTrader/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSinks struct {
	trades  chan *models.Trade
	signals chan *models.SignalEntry
	fail    bool
}

func (s *captureSinks) StoreTrade(_ context.Context, t *models.Trade) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.trades <- t
	return nil
}

func (s *captureSinks) PublishSignal(_ context.Context, e *models.SignalEntry) error {
	s.signals <- e
	return nil
}

func (s *captureSinks) Close() error { return nil }

func TestOutcomeProcessorRoutesTradesAndSignals(t *testing.T) {
	e, _ := newTestEngine(t)
	sinks := &captureSinks{
		trades:  make(chan *models.Trade, 4),
		signals: make(chan *models.SignalEntry, 4),
	}
	proc := NewOutcomeProcessor(e, sinks, sinks, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go proc.Run(ctx)

	e.publish(Outcome{Trade: &models.Trade{ID: 1, Symbol: "ES"}})
	e.publish(Outcome{Signal: &models.SignalEntry{Symbol: "ES", Status: models.SignalOnly}})

	select {
	case tr := <-sinks.trades:
		assert.Equal(t, int64(1), tr.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("trade never reached the sink")
	}
	select {
	case sig := <-sinks.signals:
		assert.Equal(t, models.SignalOnly, sig.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("signal never reached the publisher")
	}
}

func TestOutcomeProcessorSwallowsSinkErrors(t *testing.T) {
	e, _ := newTestEngine(t)
	sinks := &captureSinks{
		trades:  make(chan *models.Trade, 4),
		signals: make(chan *models.SignalEntry, 4),
		fail:    true,
	}
	proc := NewOutcomeProcessor(e, sinks, sinks, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go proc.Run(ctx)

	e.publish(Outcome{Trade: &models.Trade{ID: 1}})
	e.publish(Outcome{Signal: &models.SignalEntry{Status: models.SignalExecuted}})

	// The failed trade store must not stall the signal path.
	select {
	case sig := <-sinks.signals:
		assert.Equal(t, models.SignalExecuted, sig.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("signal never reached the publisher")
	}
	require.Empty(t, sinks.trades)
}

func TestPublishNeverBlocks(t *testing.T) {
	e, _ := newTestEngine(t)
	// Nobody drains the channel; overflow must drop, not block.
	for i := 0; i < 1000; i++ {
		e.publish(Outcome{Signal: &models.SignalEntry{}})
	}
}
