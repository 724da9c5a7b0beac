package evolve

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/zeu5/rl-gyms/core"
	"github.com/zeu5/rl-gyms/util"
	"gonum.org/v1/gonum/stat/distuv"
)

// LinearGenome is a weight vector scored against q vectors
type LinearGenome struct {
	key     int
	Weights []float64
	fitness float64
}

var _ core.Genome = &LinearGenome{}

func NewLinearGenome(key int, weights []float64) *LinearGenome {
	return &LinearGenome{key: key, Weights: weights}
}

func (g *LinearGenome) Key() int {
	return g.key
}

func (g *LinearGenome) Fitness() float64 {
	return g.fitness
}

func (g *LinearGenome) SetFitness(f float64) {
	g.fitness = f
}

func (g *LinearGenome) clone(key int) *LinearGenome {
	return &LinearGenome{key: key, Weights: util.CopyFloatSlice(g.Weights), fitness: g.fitness}
}

// Population is a small elitist evolutionary driver: truncation selection
// followed by gaussian weight mutation. It stands in for a full NEAT driver
// behind core.Population.
type Population struct {
	Config     *Config
	Genomes    []*LinearGenome
	Generation int

	best    *LinearGenome
	nextKey int
	rand    *rand.Rand
	noise   distuv.Normal
}

var _ core.Population = &Population{}

func NewPopulation(config *Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(config.Evolve.Seed, config.Evolve.Seed+1)
	p := &Population{
		Config:  config,
		Genomes: make([]*LinearGenome, 0, config.Evolve.PopSize),
		rand:    rand.New(src),
		noise:   distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
	for i := 0; i < config.Evolve.PopSize; i++ {
		weights := make([]float64, config.Genome.NumInputs)
		for j := range weights {
			weights[j] = p.noise.Rand() * config.Genome.WeightInitStdev
		}
		p.Genomes = append(p.Genomes, NewLinearGenome(p.newKey(), weights))
	}
	return p, nil
}

func (p *Population) newKey() int {
	p.nextKey++
	return p.nextKey
}

// Best returns a snapshot of the fittest genome seen so far
func (p *Population) Best() core.Genome {
	if p.best == nil {
		return nil
	}
	return p.best
}

// RunGeneration evaluates the current genomes and breeds the next
// generation. The winner is returned once the fitness threshold is met.
func (p *Population) RunGeneration(fitnessFunc core.FitnessFunc) (core.Genome, error) {
	p.Generation++

	entries := make([]core.GenomeEntry, len(p.Genomes))
	for i, g := range p.Genomes {
		entries[i] = core.GenomeEntry{ID: g.Key(), Genome: g}
	}
	if err := fitnessFunc(entries, p.Config); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	sort.SliceStable(p.Genomes, func(i, j int) bool {
		return p.Genomes[i].fitness > p.Genomes[j].fitness
	})
	if current := p.Genomes[0]; p.best == nil || current.fitness > p.best.fitness {
		p.best = current.clone(current.key)
	}

	if !p.Config.Evolve.NoFitnessTermination && p.best.fitness >= p.Config.Evolve.FitnessThreshold {
		return p.best, nil
	}

	p.reproduce()
	return nil, nil
}

// reproduce expects the genomes sorted by decreasing fitness
func (p *Population) reproduce() {
	popSize := p.Config.Evolve.PopSize
	survivors := int(math.Ceil(p.Config.Evolve.SurvivalThreshold * float64(len(p.Genomes))))
	survivors = max(1, min(survivors, len(p.Genomes)))
	elites := min(p.Config.Evolve.Elitism, len(p.Genomes))

	next := make([]*LinearGenome, 0, popSize)
	next = append(next, p.Genomes[:elites]...)
	for len(next) < popSize {
		parent := p.Genomes[p.rand.IntN(survivors)]
		next = append(next, p.mutate(parent))
	}
	p.Genomes = next
}

func (p *Population) mutate(parent *LinearGenome) *LinearGenome {
	child := parent.clone(p.newKey())
	child.fitness = 0
	for i := range child.Weights {
		if p.rand.Float64() < p.Config.Genome.WeightMutateRate {
			child.Weights[i] += p.noise.Rand() * p.Config.Genome.WeightMutatePower
		}
	}
	return child
}
