package middleware

import (
	"testing"

	"EvoTrader/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	reqs []*models.TickRequest
}

func (s *captureSink) HandleTick(req *models.TickRequest) []*models.Trade {
	s.reqs = append(s.reqs, req)
	return nil
}

func TestProcessRejectsInvalidTicks(t *testing.T) {
	sink := &captureSink{}
	p := NewTickPipeline(sink, nil)

	assert.Error(t, p.Process(nil))
	assert.Error(t, p.Process(&models.Tick{Symbol: "", Price: 100}))
	assert.Error(t, p.Process(&models.Tick{Symbol: "ES", Price: 0}))
	assert.Error(t, p.Process(&models.Tick{Symbol: "ES", Price: 100, Size: -1}))
	assert.Empty(t, sink.reqs)
}

func TestProcessForwardsAndDefaultsSize(t *testing.T) {
	sink := &captureSink{}
	p := NewTickPipeline(sink, nil)

	require.NoError(t, p.Process(&models.Tick{Symbol: "ES", Price: 100, Size: 0, Ts: 123}))
	require.Len(t, sink.reqs, 1)
	assert.Equal(t, 1.0, sink.reqs[0].Size)
	assert.Equal(t, int64(123), sink.reqs[0].Ts)
}

func TestProcessThrottlesPerSymbol(t *testing.T) {
	sink := &captureSink{}
	p := NewTickPipeline(sink, nil, WithMaxRPS(1))

	require.NoError(t, p.Process(&models.Tick{Symbol: "ES", Price: 100, Size: 1}))
	// Same symbol within the throttle window drops silently.
	require.NoError(t, p.Process(&models.Tick{Symbol: "ES", Price: 101, Size: 1}))
	// A different symbol has its own budget.
	require.NoError(t, p.Process(&models.Tick{Symbol: "NQ", Price: 200, Size: 1}))

	require.Len(t, sink.reqs, 2)
	assert.Equal(t, "ES", sink.reqs[0].Symbol)
	assert.Equal(t, "NQ", sink.reqs[1].Symbol)
}
