package genetics

import (
	"math/rand"
	"testing"
)

func TestNewRandomGenomeRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		g := NewRandomGenome(rng)
		if g.ConfirmCount < 1 || g.ConfirmCount > 3 {
			t.Fatalf("confirm count out of range: %d", g.ConfirmCount)
		}
		if g.RequireAgreement < 0.5 || g.RequireAgreement > 0.9 {
			t.Fatalf("agreement out of range: %v", g.RequireAgreement)
		}
		if g.ScalpWindow < 30 || g.ScalpWindow > 300 {
			t.Fatalf("scalp window out of range: %d", g.ScalpWindow)
		}
		if g.TimeBiasStart < 0 || g.TimeBiasStart > 23 || g.TimeBiasEnd < 0 || g.TimeBiasEnd > 23 {
			t.Fatalf("time bias out of range: %d..%d", g.TimeBiasStart, g.TimeBiasEnd)
		}
	}
}

func TestMutateStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewRandomGenome(rng)
	for i := 0; i < 2000; i++ {
		g = g.Mutate(rng)
		if g.ConfirmCount < 1 {
			t.Fatalf("confirm count below 1 after mutation: %d", g.ConfirmCount)
		}
		if g.RequireAgreement < 0.1 || g.RequireAgreement > 1.0 {
			t.Fatalf("agreement escaped clamp: %v", g.RequireAgreement)
		}
		if g.MinVolumeMult < 0.01 || g.MomentumZ < 0.01 || g.StopMult < 0.01 || g.TargetMult < 0.01 {
			t.Fatalf("multiplicative field collapsed: %+v", g)
		}
		if g.ScalpWindow < 10 {
			t.Fatalf("scalp window below floor: %d", g.ScalpWindow)
		}
		if g.ScalpAggressiveness < 0.01 || g.ScalpAggressiveness > 1.0 {
			t.Fatalf("aggressiveness escaped clamp: %v", g.ScalpAggressiveness)
		}
		if g.TimeBiasStart < 0 || g.TimeBiasStart > 23 || g.TimeBiasEnd < 0 || g.TimeBiasEnd > 23 {
			t.Fatalf("time bias wrapped wrong: %d..%d", g.TimeBiasStart, g.TimeBiasEnd)
		}
	}
}

func TestMutateDoesNotModifyReceiver(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := NewRandomGenome(rng)
	before := g
	_ = g.Mutate(rng)
	if g != before {
		t.Fatalf("receiver mutated: %+v != %+v", g, before)
	}
}

func TestCrossoverFieldsComeFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := NewRandomGenome(rng)
	b := NewRandomGenome(rng)
	for i := 0; i < 100; i++ {
		child := Crossover(rng, a, b)
		if child.ConfirmCount != a.ConfirmCount && child.ConfirmCount != b.ConfirmCount {
			t.Fatalf("confirm count from neither parent: %d", child.ConfirmCount)
		}
		if child.StopMult != a.StopMult && child.StopMult != b.StopMult {
			t.Fatalf("stop mult from neither parent: %v", child.StopMult)
		}
		if child.ScalpWindow != a.ScalpWindow && child.ScalpWindow != b.ScalpWindow {
			t.Fatalf("scalp window from neither parent: %d", child.ScalpWindow)
		}
	}
}

func TestSeededDeterminism(t *testing.T) {
	g1 := NewRandomGenome(rand.New(rand.NewSource(99)))
	g2 := NewRandomGenome(rand.New(rand.NewSource(99)))
	if g1 != g2 {
		t.Fatalf("same seed produced different genomes")
	}
}
