package common

import (
	"path"

	"github.com/zeu5/rl-gyms/core"
	"github.com/zeu5/rl-gyms/util"
)

type Flags struct {
	GameFlags
	SavePath string
	RunFlags
	LearnFlags
	ArenaFlags
	Store       string
	Parallelism int
	Pause       bool
}

type GameFlags struct {
	Pile    int
	MaxTake int
	// Temperature of the softmax opponent
	Temperature float64
	// SecondOpponent is either random or greedy
	SecondOpponent string
}

type RunFlags struct {
	NumRuns      int
	Episodes     int
	ShowEvery    int
	Epsilon      float64
	Training     bool
	AvoidIllegal bool
}

type LearnFlags struct {
	Lambda       int
	LearningRate float64
	Decay        float64

	ReplaySize  int
	ClearReplay bool
	Alpha       float64
	Discount    float64
	// Bonus is the exploration bonus of the bonus agent
	Bonus float64
	// SaveQTable writes the trained q tables of tabular agents under SavePath
	SaveQTable bool
	// LoadQTable is a saved q table that tabular agents start from
	LoadQTable string
}

type ArenaFlags struct {
	Generations   int
	GamesPerGen   int
	MaxRoundMoves int
	EvolveConfig  string
}

func DefaultFlags() *Flags {
	return &Flags{
		GameFlags: GameFlags{
			Pile:           21,
			MaxTake:        3,
			Temperature:    0.5,
			SecondOpponent: "random",
		},
		SavePath: "results",
		RunFlags: RunFlags{
			NumRuns:      1,
			Episodes:     10000,
			ShowEvery:    1000,
			Epsilon:      0.5,
			Training:     true,
			AvoidIllegal: true,
		},
		LearnFlags: LearnFlags{
			Lambda:       27,
			LearningRate: 0.01,
			Decay:        0.9,
			ReplaySize:   50_000,
			ClearReplay:  false,
			Alpha:        0.1,
			Discount:     0.9,
			Bonus:        1,
		},
		ArenaFlags: ArenaFlags{
			Generations:   50,
			GamesPerGen:   5,
			MaxRoundMoves: core.DefaultMaxRoundMoves,
			EvolveConfig:  "",
		},
		Store:       "json",
		Parallelism: 2,
		Pause:       false,
	}
}

func (f *Flags) GymConfig() *core.GymConfig {
	return &core.GymConfig{
		Epsilon:      f.Epsilon,
		AvoidIllegal: f.AvoidIllegal,
		Episodes:     f.Episodes,
		ShowEvery:    f.ShowEvery,
		Training:     f.Training,
	}
}

func (f *Flags) ArenaConfig() *core.ArenaConfig {
	return &core.ArenaConfig{
		GamesPerGen:   f.GamesPerGen,
		AvoidIllegal:  f.AvoidIllegal,
		MaxRoundMoves: f.MaxRoundMoves,
	}
}

// StorePath is the location of the result store under the save path
func (f *Flags) StorePath() string {
	if f.Store == "sqlite" {
		return path.Join(f.SavePath, "results.db")
	}
	return path.Join(f.SavePath, "store")
}

// Record writes the flags to config.json under SavePath
func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
