package evolve

import (
	"math"

	"github.com/zeu5/rl-gyms/agents"
	"github.com/zeu5/rl-gyms/core"
	"gonum.org/v1/gonum/floats"
)

// GenomeAgent plays the move whose q vector scores highest under the genome's
// weights and credits every reward to the genome's fitness.
type GenomeAgent struct {
	genome   *LinearGenome
	features agents.FeatureFunc
}

var _ core.GenomeAgent = &GenomeAgent{}

func NewGenomeAgent(genome *LinearGenome, features agents.FeatureFunc) *GenomeAgent {
	return &GenomeAgent{genome: genome, features: features}
}

func (a *GenomeAgent) Play(state core.State, avoidIllegal bool) core.Action {
	var best core.Action
	bestVal := math.Inf(-1)
	for _, action := range core.CandidateActions(state, avoidIllegal) {
		if v := floats.Dot(a.genome.Weights, a.features(state, action)); v > bestVal {
			best = action
			bestVal = v
		}
	}
	return best
}

func (a *GenomeAgent) UpdateFitness(reward float64) {
	a.genome.SetFitness(a.genome.Fitness() + reward)
}

type GenomeAgentConstructor struct {
	Features agents.FeatureFunc
}

var _ core.GenomeAgentConstructor = &GenomeAgentConstructor{}

func NewGenomeAgentConstructor(features agents.FeatureFunc) *GenomeAgentConstructor {
	return &GenomeAgentConstructor{Features: features}
}

func (c *GenomeAgentConstructor) NewAgent(genome core.Genome, _ interface{}) core.GenomeAgent {
	return NewGenomeAgent(genome.(*LinearGenome), c.Features)
}
