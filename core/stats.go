package core

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregatedStats summarises the total episode rewards of one reporting window
type AggregatedStats struct {
	Episode int     `json:"episode"`
	Avg     float64 `json:"avg"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

func newAggregatedStats(episode int, rewards []float64) AggregatedStats {
	return AggregatedStats{
		Episode: episode,
		Avg:     stat.Mean(rewards, nil),
		Min:     floats.Min(rewards),
		Max:     floats.Max(rewards),
	}
}

// WinRate converts an average episode reward into a win ratio. Only valid when
// a win pays +5, a loss pays -5 and there are no draws.
func WinRate(avg float64) float64 {
	return (avg + 5) / 10
}
