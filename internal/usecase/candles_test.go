package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTickOpensBucket(t *testing.T) {
	b := NewCandleBook(60, 100)
	b.AddTick("ES", 100, 2, 1_000_000)

	candles := b.Recent("ES", 0)
	require.Len(t, candles, 1)
	c := candles[0]
	assert.Equal(t, int64(999_960), c.Bucket)
	assert.Equal(t, 100.0, c.Open)
	assert.Equal(t, 100.0, c.Close)
	assert.Equal(t, 2.0, c.Volume)
}

func TestAddTickUpdatesCurrentBucketInPlace(t *testing.T) {
	b := NewCandleBook(60, 100)
	b.AddTick("ES", 100, 1, 1_000_020)
	b.AddTick("ES", 105, 2, 1_000_030)
	b.AddTick("ES", 98, 3, 1_000_040)

	candles := b.Recent("ES", 0)
	require.Len(t, candles, 1)
	c := candles[0]
	assert.Equal(t, 100.0, c.Open)
	assert.Equal(t, 105.0, c.High)
	assert.Equal(t, 98.0, c.Low)
	assert.Equal(t, 98.0, c.Close)
	assert.Equal(t, 6.0, c.Volume)
}

func TestAddTickRollsOverOnBoundary(t *testing.T) {
	b := NewCandleBook(60, 100)
	b.AddTick("ES", 100, 1, 1_000_020)
	b.AddTick("ES", 101, 1, 1_000_080)

	require.Equal(t, 2, b.Len("ES"))
}

func TestCandleEviction(t *testing.T) {
	b := NewCandleBook(60, 5)
	for i := 0; i < 12; i++ {
		b.AddTick("ES", 100+float64(i), 1, int64(1_000_000+i*60))
	}

	candles := b.Recent("ES", 0)
	require.Len(t, candles, 5)
	assert.Equal(t, 111.0, candles[len(candles)-1].Close)
}

func TestRecentBoundsAndCopies(t *testing.T) {
	b := NewCandleBook(60, 100)
	for i := 0; i < 10; i++ {
		b.AddTick("ES", 100, 1, int64(1_000_000+i*60))
	}

	got := b.Recent("ES", 3)
	require.Len(t, got, 3)

	got[0].Close = -1
	assert.NotEqual(t, -1.0, b.Recent("ES", 0)[7].Close)
}

func TestSymbolsAreIndependent(t *testing.T) {
	b := NewCandleBook(60, 100)
	b.AddTick("ES", 100, 1, 1_000_000)
	b.AddTick("NQ", 200, 1, 1_000_000)

	assert.Equal(t, 1, b.Len("ES"))
	assert.Equal(t, 1, b.Len("NQ"))
	assert.Equal(t, 200.0, b.Recent("NQ", 0)[0].Close)
}
