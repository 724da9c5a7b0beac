package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingComparator struct {
	names    []string
	datasets []DataSet
}

func (c *capturingComparator) Compare(names []string, datasets []DataSet) {
	c.names = names
	c.datasets = datasets
}

type capturingComparatorConstructor struct {
	comparators []*capturingComparator
}

func (c *capturingComparatorConstructor) NewComparator(int) Comparator {
	cmp := &capturingComparator{}
	c.comparators = append(c.comparators, cmp)
	return cmp
}

type stubAgentConstructor struct{}

func (stubAgentConstructor) NewAgent() Agent { return &stubAgent{} }

type stubDatasetConstructor struct{}

func (stubDatasetConstructor) NewDataset() Dataset { return &stubDataset{} }

// recordingAgentConstructor keeps every agent it creates
type recordingAgentConstructor struct {
	agents []*stubAgent
}

func (c *recordingAgentConstructor) NewAgent() Agent {
	a := &stubAgent{}
	c.agents = append(c.agents, a)
	return a
}

type recordingDatasetConstructor struct {
	datasets []*stubDataset
}

func (c *recordingDatasetConstructor) NewDataset() Dataset {
	d := &stubDataset{}
	c.datasets = append(c.datasets, d)
	return d
}

type countingAnalyzerConstructor struct{}

func (countingAnalyzerConstructor) NewAnalyzer(string, int) Analyzer { return &countingAnalyzer{} }

func TestComparisonRunsEveryExperiment(t *testing.T) {
	cmp := NewComparison()
	cmp.AddExperiment(&Experiment{Name: "b", Agent: stubAgentConstructor{}, Environment: &stubEnv{length: 1, reward: 1}})
	cmp.AddExperiment(&Experiment{Name: "a", Agent: stubAgentConstructor{}, Environment: &stubEnv{length: 2, reward: -1}, Dataset: stubDatasetConstructor{}})
	rewards := &capturingComparator{}
	cmp.AddAnalysis(RewardsDataSet, nil, rewards)
	cmp.AddAnalysis("count", &countingAnalyzer{}, &capturingComparator{})

	results := cmp.Run(context.Background(), 1, &GymConfig{Episodes: 2, ShowEvery: 1, Training: true}, nil)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"a", "b"}, rewards.names)
	require.Len(t, rewards.datasets, 2)
	aStats := rewards.datasets[0].([]AggregatedStats)
	require.Len(t, aStats, 2)
	assert.Equal(t, -2.0, aStats[0].Avg)
	assert.Equal(t, 2, results["b"].Datasets["count"])
	assert.Equal(t, 4, results["a"].Datasets["count"])
}

func TestParallelComparisonUsesFreshInstances(t *testing.T) {
	cmp := NewParallelComparison()
	for _, name := range []string{"x", "y", "z"} {
		cmp.AddExperiment(&ParallelExperiment{
			Name:        name,
			Environment: &stubEnvConstructor{length: 3, reward: 1},
			Agent:       stubAgentConstructor{},
			Dataset:     stubDatasetConstructor{},
		})
	}
	comparators := &capturingComparatorConstructor{}
	cmp.AddAnalysis(RewardsDataSet, nil, comparators)
	cmp.AddAnalysis("count", countingAnalyzerConstructor{}, &capturingComparatorConstructor{})

	results := cmp.Run(context.Background(), 2, &GymConfig{Episodes: 3, ShowEvery: 3, Training: true}, 2)
	require.Len(t, results, 3)
	for name, r := range results {
		require.False(t, r.IsError(), name)
		assert.Equal(t, 3, r.Episodes)
		assert.Equal(t, 9, r.Datasets["count"])
	}

	require.Len(t, comparators.comparators, 2)
	last := comparators.comparators[1]
	assert.Equal(t, []string{"x", "y", "z"}, last.names)
	for _, ds := range last.datasets {
		stats := ds.([]AggregatedStats)
		require.Len(t, stats, 1)
		assert.Equal(t, AggregatedStats{Episode: 0, Avg: 3, Min: 3, Max: 3}, stats[0])
	}
}

func TestComparisonRunsStartFromFreshAgents(t *testing.T) {
	agents := &recordingAgentConstructor{}
	datasets := &recordingDatasetConstructor{}
	cmp := NewComparison()
	cmp.AddExperiment(&Experiment{
		Name:        "replay",
		Agent:       agents,
		Environment: &stubEnv{length: 1, reward: 1},
		Dataset:     datasets,
	})

	results := cmp.Run(context.Background(), 2, &GymConfig{Episodes: 3, ShowEvery: 3, Training: true}, nil)
	require.False(t, results["replay"].IsError())

	require.Len(t, agents.agents, 2)
	require.Len(t, datasets.datasets, 2)
	for i := 0; i < 2; i++ {
		// every run plays and learns from its own 3 episodes only
		assert.Len(t, agents.agents[i].epsilons, 3)
		assert.Equal(t, 3, datasets.datasets[i].deploys)
	}
	assert.NotSame(t, agents.agents[0], agents.agents[1])
}
