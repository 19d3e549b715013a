package genetics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPopulationSize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewPopulation(14, rng)
	require.Equal(t, 14, p.Len())
	require.Len(t, p.Scores, 14)
}

func TestRecordFitnessEMA(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewPopulation(4, rng)
	p.RecordFitness(0, 1.0)
	assert.InDelta(t, 0.1, p.Scores[0], 1e-9)
	p.RecordFitness(0, 1.0)
	assert.InDelta(t, 0.19, p.Scores[0], 1e-9)
}

func TestBest(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewPopulation(5, rng)
	p.Scores[3] = 2.5
	idx, score := p.Best()
	assert.Equal(t, 3, idx)
	assert.Equal(t, 2.5, score)
}

func TestEvolveKeepsSizeAndElites(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := NewPopulation(14, rng)
	for i := range p.Scores {
		p.Scores[i] = float64(i)
	}

	next := p.Evolve(rng, 4)
	require.Equal(t, 14, next.Len())

	// Top four genomes by score survive unchanged, best first.
	assert.Equal(t, p.Genomes[13], next.Genomes[0])
	assert.Equal(t, p.Genomes[12], next.Genomes[1])
	assert.Equal(t, p.Genomes[11], next.Genomes[2])
	assert.Equal(t, p.Genomes[10], next.Genomes[3])
}

func TestEvolveHalvesScoresRankAligned(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := NewPopulation(6, rng)
	p.Scores = []float64{1, 6, 3, 5, 2, 4}

	next := p.Evolve(rng, 2)
	assert.Equal(t, []float64{3, 2.5, 2, 1.5, 1, 0.5}, next.Scores)
}

func TestEvolveDoesNotModifyReceiver(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	p := NewPopulation(6, rng)
	p.Scores[0] = 9
	before := make([]float64, len(p.Scores))
	copy(before, p.Scores)

	_ = p.Evolve(rng, 2)
	assert.Equal(t, before, p.Scores)
}

func TestEvolveEliteCountAboveSize(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	p := NewPopulation(3, rng)
	next := p.Evolve(rng, 10)
	require.Equal(t, 3, next.Len())
}
