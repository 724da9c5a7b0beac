package nim

import "github.com/zeu5/rl-gyms/core"

// FeatureSize is the length of the vectors returned by Features
const FeatureSize = 7

// Features encodes a move as: bias, takes the last token, illegal, and a one
// hot of the tokens left modulo 4.
func Features(state core.State, action core.Action) core.QVector {
	q := make(core.QVector, FeatureSize)
	q[0] = 1
	s, ok := state.(*State)
	take, ok2 := action.(Take)
	if !ok || !ok2 {
		return q
	}
	if !s.legal(take) {
		q[2] = 1
		return q
	}
	left := s.Pile - int(take)
	if left == 0 {
		q[1] = 1
		return q
	}
	q[3+left%4] = 1
	return q
}

// Score is a heuristic for opponents: winning moves are best, moves that let
// the next player win are worst.
func Score(state core.State, action core.Action) float64 {
	s, ok := state.(*State)
	take, ok2 := action.(Take)
	if !ok || !ok2 || !s.legal(take) {
		return -2
	}
	left := s.Pile - int(take)
	switch {
	case left == 0:
		return 1
	case left <= s.MaxTake:
		return -1
	}
	return 0
}
