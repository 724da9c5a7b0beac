package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEpsilonNotTraining(t *testing.T) {
	for _, episode := range []int{0, 1, 10, 100000} {
		assert.Equal(t, 0.0, Epsilon(0.5, episode, false))
	}
}

func TestEpsilonDecaysSlowly(t *testing.T) {
	assert.Equal(t, 0.5, Epsilon(0.5, 0, true))

	prev := Epsilon(0.5, 0, true)
	for episode := 1; episode < 5000; episode++ {
		cur := Epsilon(0.5, episode, true)
		assert.Less(t, cur, prev)
		assert.Greater(t, cur, 0.0)
		prev = cur
	}
	assert.InDelta(t, 0.5/math.Pow(256, 0.125), Epsilon(0.5, 255, true), 1e-12)
	assert.Less(t, Epsilon(0.5, math.MaxInt32, true), 0.05)
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.5, WinRate(0))
	assert.Equal(t, 1.0, WinRate(5))
	assert.Equal(t, 0.0, WinRate(-5))
}
