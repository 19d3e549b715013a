package genetics

import (
	"math"
	"math/rand"
)

// Genome is one parameterized confirmation rule. Multiplicative fields
// stay strictly positive; fractions stay within [0,1]. Mutation clamps
// every field back into its declared range.
type Genome struct {
	ConfirmCount        int     `json:"confirm_count"`
	RequireAgreement    float64 `json:"require_agreement_fraction"`
	MinVolumeMult       float64 `json:"min_volume_mult"`
	MomentumZ           float64 `json:"momentum_z"`
	UseATRStop          bool    `json:"use_atr_sl"`
	StopMult            float64 `json:"sl_mult"`
	TargetMult          float64 `json:"tp_mult"`
	ScalpWindow         int     `json:"scalp_window"`
	TimeBiasStart       int     `json:"time_bias_start"`
	TimeBiasEnd         int     `json:"time_bias_end"`
	ScalpAggressiveness float64 `json:"scalp_aggressiveness"`
}

// NewRandomGenome draws a fresh genome from the seeding distribution.
func NewRandomGenome(rng *rand.Rand) Genome {
	return Genome{
		ConfirmCount:        1 + rng.Intn(3),
		RequireAgreement:    round2(0.5 + rng.Float64()*0.4),
		MinVolumeMult:       round2(0.1 + rng.Float64()*2.9),
		MomentumZ:           round2(0.1 + rng.Float64()*1.9),
		UseATRStop:          rng.Intn(2) == 0,
		StopMult:            round2(0.5 + rng.Float64()*2.5),
		TargetMult:          round2(0.5 + rng.Float64()*5.5),
		ScalpWindow:         30 + rng.Intn(271),
		TimeBiasStart:       rng.Intn(24),
		TimeBiasEnd:         rng.Intn(24),
		ScalpAggressiveness: round2(0.1 + rng.Float64()*0.9),
	}
}

// Mutate returns a perturbed copy. Each field mutates independently with
// its own trigger probability, then is clamped to its legal range.
func (g Genome) Mutate(rng *rand.Rand) Genome {
	ng := g
	if rng.Float64() < 0.4 {
		ng.ConfirmCount = max(1, ng.ConfirmCount+rng.Intn(3)-1)
	}
	if rng.Float64() < 0.5 {
		ng.RequireAgreement = clamp(ng.RequireAgreement+rng.NormFloat64()*0.07, 0.1, 1.0)
	}
	if rng.Float64() < 0.5 {
		ng.MinVolumeMult = math.Max(0.01, ng.MinVolumeMult*(1+rng.NormFloat64()*0.2))
	}
	if rng.Float64() < 0.5 {
		ng.MomentumZ = math.Max(0.01, ng.MomentumZ+rng.NormFloat64()*0.3)
	}
	if rng.Float64() < 0.3 {
		ng.UseATRStop = !ng.UseATRStop
	}
	if rng.Float64() < 0.5 {
		ng.StopMult = math.Max(0.01, ng.StopMult*(1+rng.NormFloat64()*0.15))
	}
	if rng.Float64() < 0.5 {
		ng.TargetMult = math.Max(0.01, ng.TargetMult*(1+rng.NormFloat64()*0.2))
	}
	if rng.Float64() < 0.3 {
		ng.ScalpWindow = max(10, ng.ScalpWindow+rng.Intn(61)-30)
	}
	if rng.Float64() < 0.4 {
		ng.ScalpAggressiveness = clamp(ng.ScalpAggressiveness+rng.NormFloat64()*0.1, 0.01, 1.0)
	}
	if rng.Float64() < 0.2 {
		ng.TimeBiasStart = mod24(ng.TimeBiasStart + rng.Intn(5) - 2)
		ng.TimeBiasEnd = mod24(ng.TimeBiasEnd + rng.Intn(5) - 2)
	}
	return ng
}

// Crossover recombines two parents field by field with equal probability.
func Crossover(rng *rand.Rand, a, b Genome) Genome {
	child := a
	if rng.Intn(2) == 0 {
		child.ConfirmCount = b.ConfirmCount
	}
	if rng.Intn(2) == 0 {
		child.RequireAgreement = b.RequireAgreement
	}
	if rng.Intn(2) == 0 {
		child.MinVolumeMult = b.MinVolumeMult
	}
	if rng.Intn(2) == 0 {
		child.MomentumZ = b.MomentumZ
	}
	if rng.Intn(2) == 0 {
		child.UseATRStop = b.UseATRStop
	}
	if rng.Intn(2) == 0 {
		child.StopMult = b.StopMult
	}
	if rng.Intn(2) == 0 {
		child.TargetMult = b.TargetMult
	}
	if rng.Intn(2) == 0 {
		child.ScalpWindow = b.ScalpWindow
	}
	if rng.Intn(2) == 0 {
		child.TimeBiasStart = b.TimeBiasStart
	}
	if rng.Intn(2) == 0 {
		child.TimeBiasEnd = b.TimeBiasEnd
	}
	if rng.Intn(2) == 0 {
		child.ScalpAggressiveness = b.ScalpAggressiveness
	}
	return child
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mod24(h int) int {
	return ((h % 24) + 24) % 24
}
