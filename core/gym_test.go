package core

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGymAggregatesRollingWindows(t *testing.T) {
	config := &GymConfig{Epsilon: 0.5, Episodes: 10, ShowEvery: 5, Training: true}
	gym := NewGym(config, nil)

	result, err := gym.Simulate(context.Background(), &stubAgent{}, &stubEnv{length: 1, reward: 1}, nil, nil)
	require.NoError(t, err)

	require.Len(t, result.Stats, 2)
	assert.Equal(t, AggregatedStats{Episode: 0, Avg: 1, Min: 1, Max: 1}, result.Stats[0])
	assert.Equal(t, AggregatedStats{Episode: 5, Avg: 1, Min: 1, Max: 1}, result.Stats[1])
	assert.Equal(t, 10, result.Episodes)
	assert.Equal(t, 10, result.TotalTurns)
	assert.Equal(t, 0.6, result.WinRate())
}

func TestGymWindowStats(t *testing.T) {
	env := &rewardSequenceEnv{rewards: []float64{5, -5, 5, 5, -5}}
	gym := NewGym(&GymConfig{Episodes: 5, ShowEvery: 2}, nil)

	result, err := gym.Simulate(context.Background(), &stubAgent{}, env, nil, nil)
	require.NoError(t, err)

	// windows close on episodes 0, 2 and 4, each holding the episodes since the last close
	require.Len(t, result.Stats, 3)
	assert.Equal(t, AggregatedStats{Episode: 0, Avg: 5, Min: 5, Max: 5}, result.Stats[0])
	assert.Equal(t, AggregatedStats{Episode: 2, Avg: 0, Min: -5, Max: 5}, result.Stats[1])
	assert.Equal(t, AggregatedStats{Episode: 4, Avg: 0, Min: -5, Max: 5}, result.Stats[2])
}

func TestGymTrainingRoutesTransitions(t *testing.T) {
	dataset := &stubDataset{}
	agent := &stubAgent{}
	gym := NewGym(&GymConfig{Epsilon: 0.5, Episodes: 3, ShowEvery: 1, Training: true}, dataset)

	_, err := gym.Simulate(context.Background(), agent, &stubEnv{length: 3, reward: 0}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 1, 2, 3, 1, 2, 3}, dataset.turns)
	assert.Equal(t, 3, dataset.deploys)
	assert.Equal(t, 3, dataset.clears)
	assert.Equal(t, Epsilon(0.5, 2, true), agent.epsilons[len(agent.epsilons)-1])
}

func TestGymEvaluationDoesNotLearn(t *testing.T) {
	dataset := &stubDataset{}
	agent := &stubAgent{}
	gym := NewGym(&GymConfig{Epsilon: 0.5, Episodes: 2, ShowEvery: 1, Training: false}, dataset)

	_, err := gym.Simulate(context.Background(), agent, &stubEnv{length: 2}, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, dataset.turns)
	assert.Zero(t, dataset.deploys)
	for _, eps := range agent.epsilons {
		assert.Equal(t, 0.0, eps)
	}
}

func TestGymFailsFast(t *testing.T) {
	boom := errors.New("boom")
	dataset := &stubDataset{failWith: boom}
	gym := NewGym(&GymConfig{Episodes: 5, ShowEvery: 1, Training: true}, dataset)

	result, err := gym.Simulate(context.Background(), &stubAgent{}, &stubEnv{length: 3}, nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, result.Episodes)
	assert.Len(t, dataset.turns, 1)
	assert.Zero(t, dataset.deploys)
}

func TestGymRejectsInvalidConfig(t *testing.T) {
	_, err := NewGym(&GymConfig{Episodes: 1, ShowEvery: 0}, nil).Simulate(context.Background(), &stubAgent{}, &stubEnv{length: 1}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGymStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := &stubEnv{length: 1}
	_, err := NewGym(&GymConfig{Episodes: 5, ShowEvery: 1}, nil).Simulate(ctx, &stubAgent{}, env, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, env.resets)
}

func TestGymRunsAnalyzersAndWritesProgress(t *testing.T) {
	out := new(bytes.Buffer)
	analyzer := &countingAnalyzer{}
	gym := NewGym(&GymConfig{Episodes: 4, ShowEvery: 2}, nil).WithWriter(out)
	gym.Name = "stub"
	gym.AddAnalyzer("count", analyzer)

	result, err := gym.Simulate(context.Background(), &stubAgent{}, &stubEnv{length: 2, reward: 1}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 8, result.Datasets["count"])
	assert.Contains(t, out.String(), "Experiment: stub, Run 0, Episode 4/4")
}

type rewardSequenceEnv struct {
	rewards []float64
	episode int
}

func (e *rewardSequenceEnv) Reset(Opponent, Opponent) (State, error) {
	return stubState(0), nil
}

func (e *rewardSequenceEnv) Step(Action) (State, float64, bool, error) {
	r := e.rewards[e.episode]
	e.episode++
	return stubState(1), r, true, nil
}

func (e *rewardSequenceEnv) State() State { return stubState(0) }

type countingAnalyzer struct {
	steps int
}

func (c *countingAnalyzer) Analyze(_ *EpisodeContext, trace *Trace) {
	c.steps += trace.Len()
}

func (c *countingAnalyzer) DataSet() DataSet { return c.steps }

func (c *countingAnalyzer) Reset() { c.steps = 0 }

func TestAverageRewardUsesLastWindow(t *testing.T) {
	result := &GymResult{Stats: []AggregatedStats{{Episode: 0, Avg: 5}, {Episode: 10, Avg: -5}}}
	assert.Equal(t, -5.0, result.AverageReward())
	assert.Equal(t, 0.0, result.WinRate())
	assert.Equal(t, 0.0, (&GymResult{}).AverageReward())
}
