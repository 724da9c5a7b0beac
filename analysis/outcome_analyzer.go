package analysis

import (
	"fmt"
	"path"
	"strconv"

	"github.com/zeu5/rl-gyms/core"
	"github.com/zeu5/rl-gyms/util"
)

type Outcome int

const (
	Draw Outcome = iota
	Win
	Loss
	// Illegal is a loss caused by the agent playing an illegal action
	Illegal
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Illegal:
		return "illegal"
	default:
		return "draw"
	}
}

// EpisodeOutcome classifies a finished episode by the sign of its last reward
func EpisodeOutcome(trace *core.Trace) Outcome {
	last := trace.Last()
	if last == nil {
		return Draw
	}
	switch {
	case last.Reward > 0:
		return Win
	case last.Reward < 0:
		if !isLegal(last.State, last.Action) {
			return Illegal
		}
		return Loss
	default:
		return Draw
	}
}

func isLegal(state core.State, action core.Action) bool {
	if state == nil || action == nil {
		return false
	}
	for _, a := range state.Actions() {
		if a.Hash() == action.Hash() {
			return true
		}
	}
	return false
}

type outcomeDataset struct {
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Illegal int `json:"illegal"`
	Draws   int `json:"draws"`

	Timesteps      []int `json:"timesteps"`
	EpisodeLengths []int `json:"episode_lengths"`
}

func newOutcomeDataset() *outcomeDataset {
	return &outcomeDataset{
		Timesteps:      make([]int, 0),
		EpisodeLengths: make([]int, 0),
	}
}

func (o *outcomeDataset) Copy() *outcomeDataset {
	return &outcomeDataset{
		Wins:           o.Wins,
		Losses:         o.Losses,
		Illegal:        o.Illegal,
		Draws:          o.Draws,
		Timesteps:      util.CopyIntSlice(o.Timesteps),
		EpisodeLengths: util.CopyIntSlice(o.EpisodeLengths),
	}
}

// OutcomeAnalyzer counts the outcomes of the episodes and records their lengths
type OutcomeAnalyzer struct {
	dataset *outcomeDataset
}

var _ core.Analyzer = &OutcomeAnalyzer{}

func NewOutcomeAnalyzer() *OutcomeAnalyzer {
	return &OutcomeAnalyzer{
		dataset: newOutcomeDataset(),
	}
}

func (o *OutcomeAnalyzer) Reset() {
	o.dataset = newOutcomeDataset()
}

func (o *OutcomeAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	switch EpisodeOutcome(trace) {
	case Win:
		o.dataset.Wins++
	case Loss:
		o.dataset.Losses++
	case Illegal:
		o.dataset.Illegal++
	default:
		o.dataset.Draws++
	}

	lastTimeStep := 0
	if len(o.dataset.Timesteps) > 0 {
		lastTimeStep = o.dataset.Timesteps[len(o.dataset.Timesteps)-1]
	}
	o.dataset.Timesteps = append(o.dataset.Timesteps, lastTimeStep+trace.Len())
	o.dataset.EpisodeLengths = append(o.dataset.EpisodeLengths, trace.Len())
}

func (o *OutcomeAnalyzer) DataSet() core.DataSet {
	return o.dataset.Copy()
}

type OutcomeAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &OutcomeAnalyzerConstructor{}

func (o *OutcomeAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewOutcomeAnalyzer()
}

// OutcomeComparator writes the outcome datasets of all experiments to outcomes.json
type OutcomeComparator struct {
	savePath string
	errs     *errorLog
}

var _ core.Comparator = &OutcomeComparator{}

func NewOutcomeComparator(savePath string) *OutcomeComparator {
	return &OutcomeComparator{
		savePath: path.Join(savePath, "outcomes.json"),
		errs:     &errorLog{},
	}
}

func (o *OutcomeComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*outcomeDataset)
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*outcomeDataset)
		if !ok {
			continue
		}
		out[name] = ds
	}

	if err := util.SaveJson(o.savePath, out); err != nil {
		o.errs.record(fmt.Errorf("saving outcomes: %w", err))
	}
}

// Err joins the errors of the failed saves
func (o *OutcomeComparator) Err() error {
	return o.errs.Err()
}

type OutcomeComparatorConstructor struct {
	savePath string
	errs     errorLog
}

var _ core.ComparatorConstructor = &OutcomeComparatorConstructor{}

func NewOutcomeComparatorConstructor(savePath string) *OutcomeComparatorConstructor {
	return &OutcomeComparatorConstructor{
		savePath: savePath,
	}
}

func (o *OutcomeComparatorConstructor) NewComparator(run int) core.Comparator {
	c := NewOutcomeComparator(path.Join(o.savePath, strconv.Itoa(run)))
	c.errs = &o.errs
	return c
}

// Err joins the errors of the failed saves of all runs
func (o *OutcomeComparatorConstructor) Err() error {
	return o.errs.Err()
}
