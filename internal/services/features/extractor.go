package features

import (
	"math"

	"EvoTrader/internal/domain/models"
)

// Vector is the ephemeral feature set derived for one alert. It is never
// persisted.
type Vector struct {
	Close   float64
	VolMult float64
	MomZ    float64
	ATR     float64
	Side    int
	AlertTs int64
	Symbol  string
}

const (
	volBaselineWindow = 20
	atrWindow         = 14
	atrMinCandles     = 5
)

// Extract derives decision features from candle history plus the
// triggering alert. With no history it returns a degenerate vector so
// cold-start alerts still produce a decision.
func Extract(candles []models.Candle, alert models.Alert) Vector {
	feat := Vector{
		Side:    1,
		AlertTs: alert.Ts,
		Symbol:  alert.Symbol,
	}
	if alert.Side == models.SideSell {
		feat.Side = -1
	}

	if len(candles) == 0 {
		feat.Close = alert.Price
		feat.VolMult = 1.0
		return feat
	}

	last := candles[len(candles)-1]
	feat.Close = last.Close
	feat.VolMult = volumeMultiplier(candles)
	feat.MomZ = momentumZ(candles)
	if len(candles) >= atrMinCandles {
		feat.ATR = atr(candles, atrWindow)
	}
	return feat
}

// momentumZ standardizes the latest simple return against the return
// distribution of the available history. Zero when the spread is zero.
func momentumZ(candles []models.Candle) float64 {
	returns := make([]float64, 0, len(candles))
	returns = append(returns, 0)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (candles[i].Close-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return (returns[len(returns)-1] - mean) / std
}

// volumeMultiplier compares the latest volume to its rolling baseline,
// falling back to unity when the baseline window is short or empty.
func volumeMultiplier(candles []models.Candle) float64 {
	latest := candles[len(candles)-1].Volume
	if len(candles) < volBaselineWindow {
		return 1.0
	}
	sum := 0.0
	for _, c := range candles[len(candles)-volBaselineWindow:] {
		sum += c.Volume
	}
	baseline := sum / volBaselineWindow
	if baseline <= 0 {
		return 1.0
	}
	return latest / baseline
}

// atr averages true range over the trailing window, or over everything
// available when history is shorter than the window.
func atr(candles []models.Candle, window int) float64 {
	trs := make([]float64, 0, len(candles))
	for i, c := range candles {
		tr := c.High - c.Low
		if i > 0 {
			prevClose := candles[i-1].Close
			tr = math.Max(tr, math.Abs(c.High-prevClose))
			tr = math.Max(tr, math.Abs(c.Low-prevClose))
		}
		trs = append(trs, tr)
	}
	if len(trs) == 0 {
		return 0
	}
	n := window
	if len(trs) < n {
		n = len(trs)
	}
	sum := 0.0
	for _, tr := range trs[len(trs)-n:] {
		sum += tr
	}
	return sum / float64(n)
}
