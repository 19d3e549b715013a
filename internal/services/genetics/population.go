package genetics

import (
	"math/rand"
	"sort"
)

const (
	// scoreDecay is the fitness EMA retention per alert.
	scoreDecay = 0.9
	// generationDecay halves retained scores each generation so elites
	// keep partial credit but must keep earning it.
	generationDecay = 0.5
	// crossoverMutationRate is the chance a crossover child also mutates.
	crossoverMutationRate = 0.25
	// mutateEliteRate is the chance a refill slot mutates a single elite
	// instead of recombining two.
	mutateEliteRate = 0.3
)

// Population is a fixed-size set of genomes with index-aligned fitness
// scores. Its length is constant across generations.
type Population struct {
	Genomes []Genome  `json:"genomes"`
	Scores  []float64 `json:"scores"`
}

// NewPopulation seeds size random genomes with zero scores.
func NewPopulation(size int, rng *rand.Rand) Population {
	genomes := make([]Genome, size)
	for i := range genomes {
		genomes[i] = NewRandomGenome(rng)
	}
	return Population{Genomes: genomes, Scores: make([]float64, size)}
}

// Len returns the population size.
func (p Population) Len() int { return len(p.Genomes) }

// RecordFitness folds one fitness sample into the genome's running score.
func (p Population) RecordFitness(idx int, fitness float64) {
	p.Scores[idx] = p.Scores[idx]*scoreDecay + fitness*(1-scoreDecay)
}

// Best returns the index and score of the top-scoring genome.
func (p Population) Best() (int, float64) {
	bestIdx := 0
	bestScore := p.Scores[0]
	for i, s := range p.Scores {
		if s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	return bestIdx, bestScore
}

// Evolve produces the next generation: the top eliteCount genomes survive
// unchanged, the remaining slots are refilled by mutating or recombining
// elites, and every retained score is halved. The result is a new
// population of identical size; the receiver is not modified.
func (p Population) Evolve(rng *rand.Rand, eliteCount int) Population {
	size := len(p.Genomes)
	order := make([]int, size)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Scores[order[a]] > p.Scores[order[b]]
	})

	if eliteCount > size {
		eliteCount = size
	}
	elites := make([]Genome, eliteCount)
	for i := 0; i < eliteCount; i++ {
		elites[i] = p.Genomes[order[i]]
	}

	next := Population{
		Genomes: make([]Genome, 0, size),
		Scores:  make([]float64, size),
	}
	next.Genomes = append(next.Genomes, elites...)

	for len(next.Genomes) < size {
		switch {
		case rng.Float64() < mutateEliteRate && len(elites) > 0:
			parent := elites[rng.Intn(len(elites))]
			next.Genomes = append(next.Genomes, parent.Mutate(rng))
		case len(elites) >= 2:
			ai := rng.Intn(len(elites))
			bi := rng.Intn(len(elites) - 1)
			if bi >= ai {
				bi++
			}
			child := Crossover(rng, elites[ai], elites[bi])
			if rng.Float64() < crossoverMutationRate {
				child = child.Mutate(rng)
			}
			next.Genomes = append(next.Genomes, child)
		default:
			next.Genomes = append(next.Genomes, NewRandomGenome(rng))
		}
	}

	// Scores follow rank order so each elite keeps half of its own credit
	// and refilled slots inherit half of the score they displaced.
	for i := 0; i < size; i++ {
		next.Scores[i] = p.Scores[order[i]] * generationDecay
	}
	return next
}
