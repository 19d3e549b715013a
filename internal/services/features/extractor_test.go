package features

import (
	"testing"

	"EvoTrader/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func flatCandles(n int, close, volume float64) []models.Candle {
	out := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Candle{
			Bucket: int64(i * 60),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: volume,
		})
	}
	return out
}

func TestExtractColdStart(t *testing.T) {
	alert := models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 101.5, Ts: 1000}
	feat := Extract(nil, alert)

	assert.Equal(t, 101.5, feat.Close)
	assert.Equal(t, 1.0, feat.VolMult)
	assert.Equal(t, 0.0, feat.MomZ)
	assert.Equal(t, 0.0, feat.ATR)
	assert.Equal(t, 1, feat.Side)
	assert.Equal(t, "ES", feat.Symbol)
}

func TestExtractSellSide(t *testing.T) {
	alert := models.Alert{Symbol: "ES", Side: models.SideSell, Price: 100}
	feat := Extract(nil, alert)
	assert.Equal(t, -1, feat.Side)
}

func TestVolumeMultiplierShortHistoryFallsBack(t *testing.T) {
	candles := flatCandles(10, 100, 5)
	candles[len(candles)-1].Volume = 500
	feat := Extract(candles, models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 100})
	assert.Equal(t, 1.0, feat.VolMult)
}

func TestVolumeMultiplierAgainstBaseline(t *testing.T) {
	candles := flatCandles(25, 100, 10)
	candles[len(candles)-1].Volume = 40
	feat := Extract(candles, models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 100})

	// Baseline over the trailing 20: (19*10 + 40) / 20 = 11.5.
	assert.InDelta(t, 40.0/11.5, feat.VolMult, 1e-9)
}

func TestMomentumZeroOnFlatSeries(t *testing.T) {
	feat := Extract(flatCandles(50, 100, 10), models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 100})
	assert.Equal(t, 0.0, feat.MomZ)
}

func TestMomentumPositiveOnPop(t *testing.T) {
	candles := flatCandles(50, 100, 10)
	candles[len(candles)-1].Close = 103
	feat := Extract(candles, models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 103})
	assert.Greater(t, feat.MomZ, 1.0)
}

func TestATRNeedsMinimumHistory(t *testing.T) {
	candles := flatCandles(3, 100, 10)
	feat := Extract(candles, models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 100})
	assert.Equal(t, 0.0, feat.ATR)
}

func TestATRFromRanges(t *testing.T) {
	candles := flatCandles(30, 100, 10)
	for i := range candles {
		candles[i].High = 102
		candles[i].Low = 98
	}
	feat := Extract(candles, models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 100})
	assert.InDelta(t, 4.0, feat.ATR, 1e-9)
}
