package nim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/rl-gyms/core"
)

type fixedOpponent Take

func (f fixedOpponent) Move(core.State) core.Action { return Take(f) }

func TestAgentTakingLastTokenWins(t *testing.T) {
	env := NewEnv(Config{Pile: 3, MaxTake: 3, WinReward: 5, LossReward: -5})
	state, err := env.Reset(fixedOpponent(1), fixedOpponent(1))
	require.NoError(t, err)
	assert.Len(t, state.Actions(), 3)

	next, reward, done, err := env.Step(Take(3))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 5.0, reward)
	assert.Equal(t, 0, next.(*State).Pile)

	_, _, _, err = env.Step(Take(1))
	assert.ErrorIs(t, err, ErrEpisodeDone)
}

func TestOpponentTakingLastTokenLoses(t *testing.T) {
	env := NewEnv(Config{Pile: 4, MaxTake: 3, WinReward: 5, LossReward: -5})
	_, err := env.Reset(fixedOpponent(1), fixedOpponent(2))
	require.NoError(t, err)

	_, reward, done, err := env.Step(Take(1))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, -5.0, reward)
}

func TestIllegalMoveLoses(t *testing.T) {
	env := NewEnv(Config{Pile: 2, MaxTake: 3, WinReward: 5, LossReward: -5})
	state, err := env.Reset(fixedOpponent(1), fixedOpponent(1))
	require.NoError(t, err)
	assert.Len(t, state.Actions(), 2)
	assert.Len(t, core.CandidateActions(state, false), 3)

	_, reward, done, err := env.Step(Take(3))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, -5.0, reward)
}

func TestIllegalOpponentMoveIsAnError(t *testing.T) {
	env := NewEnv(Config{Pile: 10, MaxTake: 3, WinReward: 5, LossReward: -5})
	_, err := env.Reset(fixedOpponent(4), fixedOpponent(1))
	require.NoError(t, err)

	_, _, _, err = env.Step(Take(1))
	assert.ErrorIs(t, err, ErrIllegalOpponentMove)
}

func TestEpisodeIsTurnBounded(t *testing.T) {
	env := NewEnv(DefaultConfig())
	_, err := env.Reset(fixedOpponent(1), fixedOpponent(1))
	require.NoError(t, err)

	turns := 0
	for done := false; !done; {
		_, _, done, err = env.Step(Take(1))
		require.NoError(t, err)
		turns++
	}
	// 21 tokens, three taken per round
	assert.Equal(t, 7, turns)
	assert.Equal(t, 7, env.State().(*State).Turn)
}

func TestFeatures(t *testing.T) {
	s := &State{Pile: 5, MaxTake: 3}
	assert.Equal(t, core.QVector{1, 0, 0, 0, 0, 1, 0}, Features(s, Take(3)))
	assert.Equal(t, core.QVector{1, 0, 0, 1, 0, 0, 0}, Features(s, Take(1)))

	s = &State{Pile: 2, MaxTake: 3}
	assert.Equal(t, core.QVector{1, 1, 0, 0, 0, 0, 0}, Features(s, Take(2)))
	assert.Equal(t, core.QVector{1, 0, 1, 0, 0, 0, 0}, Features(s, Take(3)))
}

func TestScore(t *testing.T) {
	s := &State{Pile: 5, MaxTake: 3}
	assert.Equal(t, -1.0, Score(s, Take(2)))
	assert.Equal(t, 0.0, Score(s, Take(1)))
	assert.Equal(t, 1.0, Score(&State{Pile: 2, MaxTake: 3}, Take(2)))
	assert.Equal(t, -2.0, Score(&State{Pile: 2, MaxTake: 3}, Take(3)))
}
