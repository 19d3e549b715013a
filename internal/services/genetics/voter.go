package genetics

import (
	"math"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/services/features"
)

// Decisions a genome can vote for.
const (
	DecisionIgnore = "ignore"
	DecisionScalp  = "scalp"
	DecisionBuy    = "buy"
	DecisionSell   = "sell"
)

// ScalpMaxSeconds is the scalp-window cutoff for scalp classification.
const ScalpMaxSeconds = 300

// Check weights for the four vote criteria.
const (
	weightAgreement = 1.0
	weightVolume    = 0.8
	weightMomentum  = 0.6
	weightTimeBias  = 0.4
)

// Vote scores an alert against one genome. Pure and deterministic.
//
// The agreement fraction counts same-symbol, same-side alerts inside the
// genome's scalp window against its confirmation count. It is deliberately
// not capped at 1, so a genome with a single-alert confirmation target can
// over-satisfy the agreement check.
func Vote(g Genome, feat features.Vector, recent []models.Alert) (string, float64) {
	cutoff := feat.AlertTs - int64(g.ScalpWindow)
	sameSide := 0
	side := models.SideBuy
	if feat.Side < 0 {
		side = models.SideSell
	}
	for _, a := range recent {
		if a.Symbol == feat.Symbol && a.Side == side && a.Ts >= cutoff {
			sameSide++
		}
	}
	agreement := float64(sameSide) / float64(max(1, g.ConfirmCount))

	hour := time.Unix(feat.AlertTs, 0).UTC().Hour()
	inWindow := false
	if g.TimeBiasStart <= g.TimeBiasEnd {
		inWindow = g.TimeBiasStart <= hour && hour <= g.TimeBiasEnd
	} else {
		inWindow = hour >= g.TimeBiasStart || hour <= g.TimeBiasEnd
	}

	score := 0.0
	if agreement >= g.RequireAgreement {
		score += weightAgreement
	}
	if feat.VolMult >= g.MinVolumeMult {
		score += weightVolume
	}
	if math.Abs(feat.MomZ) >= g.MomentumZ {
		score += weightMomentum
	}
	if inWindow {
		score += weightTimeBias
	}
	score /= weightAgreement + weightVolume + weightMomentum + weightTimeBias

	if score < 0.2 {
		return DecisionIgnore, score
	}
	if score < 0.6 && g.IsScalp() {
		return DecisionScalp, score
	}
	if feat.Side > 0 {
		return DecisionBuy, score
	}
	return DecisionSell, score
}

// IsScalp reports whether the genome trades on a scalp horizon.
func (g Genome) IsScalp() bool {
	return g.ScalpWindow <= ScalpMaxSeconds || g.ScalpAggressiveness > 0.7
}

// FitnessProxy estimates the expected value of a decision without
// forward-looking ground truth. Ignoring costs a small constant; any
// action is scored by an ATR-scaled expected-hit payoff.
func FitnessProxy(decision string, confidence, atr float64) float64 {
	if decision == DecisionIgnore {
		return -0.1
	}
	atr = math.Max(1e-6, atr)
	hitProb := math.Min(0.95, 0.1+confidence*0.9)
	return hitProb*atr - (1-hitProb)*atr*0.5
}
