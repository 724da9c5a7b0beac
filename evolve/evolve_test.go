package evolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/rl-gyms/core"
)

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"), 7)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(7), config)

	config, err = LoadConfig("", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, config.Genome.NumInputs)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evolve.ini")
	contents := `[Evolve]
pop_size = 10
fitness_threshold = 12.5
no_fitness_termination = true
elitism = 1

[Genome]
weight_mutate_power = 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	config, err := LoadConfig(path, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, config.Evolve.PopSize)
	assert.Equal(t, 12.5, config.Evolve.FitnessThreshold)
	assert.True(t, config.Evolve.NoFitnessTermination)
	assert.Equal(t, 1, config.Evolve.Elitism)
	assert.Equal(t, 0.25, config.Genome.WeightMutatePower)
	// untouched keys keep their defaults
	assert.Equal(t, 7, config.Genome.NumInputs)
	assert.Equal(t, 0.2, config.Evolve.SurvivalThreshold)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evolve.ini")
	require.NoError(t, os.WriteFile(path, []byte("[Evolve]\npop_size = 0\n"), 0644))
	_, err := LoadConfig(path, 7)
	assert.Error(t, err)
}

// sumFitness scores a genome by the sum of its weights
func sumFitness(genomes []core.GenomeEntry, _ interface{}) error {
	for _, e := range genomes {
		g := e.Genome.(*LinearGenome)
		sum := 0.0
		for _, w := range g.Weights {
			sum += w
		}
		g.SetFitness(sum)
	}
	return nil
}

func testConfig() *Config {
	config := DefaultConfig(3)
	config.Evolve.PopSize = 20
	config.Evolve.FitnessThreshold = 1e9
	return config
}

func TestPopulationBestNeverDecreases(t *testing.T) {
	pop, err := NewPopulation(testConfig())
	require.NoError(t, err)
	assert.Nil(t, pop.Best())

	previous := -1e18
	for gen := 0; gen < 10; gen++ {
		winner, err := pop.RunGeneration(sumFitness)
		require.NoError(t, err)
		assert.Nil(t, winner)
		assert.Len(t, pop.Genomes, 20)

		best := pop.Best().Fitness()
		assert.GreaterOrEqual(t, best, previous)
		previous = best
	}
	assert.Equal(t, 10, pop.Generation)
}

func TestPopulationReturnsWinner(t *testing.T) {
	config := testConfig()
	config.Evolve.FitnessThreshold = -1e9
	pop, err := NewPopulation(config)
	require.NoError(t, err)

	winner, err := pop.RunGeneration(sumFitness)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, pop.Best().Key(), winner.Key())
}

func TestPopulationPropagatesFitnessErrors(t *testing.T) {
	pop, err := NewPopulation(testConfig())
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = pop.RunGeneration(func([]core.GenomeEntry, interface{}) error { return boom })
	assert.ErrorIs(t, err, boom)
}

type pickAction int

func (p pickAction) Hash() string { return string(rune('0' + int(p))) }

type pickState struct{}

func (pickState) Hash() string { return "s" }

func (pickState) Actions() []core.Action {
	return []core.Action{pickAction(0), pickAction(1), pickAction(2)}
}

func TestGenomeAgentPlaysBestScoredAction(t *testing.T) {
	features := func(_ core.State, a core.Action) core.QVector {
		q := make(core.QVector, 3)
		q[int(a.(pickAction))] = 1
		return q
	}
	genome := NewLinearGenome(1, []float64{0.1, 2, -1})
	agent := NewGenomeAgentConstructor(features).NewAgent(genome, nil)

	assert.Equal(t, pickAction(1), agent.Play(pickState{}, true))
	agent.UpdateFitness(5)
	agent.UpdateFitness(-2)
	assert.Equal(t, 3.0, genome.Fitness())
}
