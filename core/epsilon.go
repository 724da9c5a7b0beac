package core

import "math"

// Epsilon returns the exploration rate for the given episode. The rate decays
// very slowly, as base/(episode+1)^(1/8), and is 0 outside of training.
func Epsilon(base float64, episode int, training bool) float64 {
	if !training {
		return 0
	}
	return base / math.Pow(float64(episode+1), 0.125)
}
