package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/rl-gyms/core"
	"github.com/zeu5/rl-gyms/storage"
	"github.com/zeu5/rl-gyms/util"
)

type testAction string

func (a testAction) Hash() string { return string(a) }

type testState struct {
	legal []string
}

func (s *testState) Hash() string { return "state" }

func (s *testState) Actions() []core.Action {
	out := make([]core.Action, len(s.legal))
	for i, a := range s.legal {
		out[i] = testAction(a)
	}
	return out
}

func traceOf(rewards []float64, lastAction string) *core.Trace {
	trace := core.NewTrace()
	state := &testState{legal: []string{"a", "b"}}
	for i, r := range rewards {
		action := "a"
		if i == len(rewards)-1 {
			action = lastAction
		}
		trace.AddStep(&core.Transition{
			State:     state,
			Action:    testAction(action),
			Reward:    r,
			NextState: state,
			Done:      i == len(rewards)-1,
			Turn:      i + 1,
		})
	}
	return trace
}

func TestEpisodeOutcome(t *testing.T) {
	assert.Equal(t, Win, EpisodeOutcome(traceOf([]float64{0, 5}, "b")))
	assert.Equal(t, Loss, EpisodeOutcome(traceOf([]float64{0, -5}, "b")))
	assert.Equal(t, Illegal, EpisodeOutcome(traceOf([]float64{-5}, "z")))
	assert.Equal(t, Draw, EpisodeOutcome(traceOf([]float64{0}, "a")))
	assert.Equal(t, Draw, EpisodeOutcome(core.NewTrace()))
	assert.Equal(t, "illegal", Illegal.String())
}

func TestOutcomeAnalyzer(t *testing.T) {
	a := NewOutcomeAnalyzer()
	eCtx := core.NewEpisodeContext(context.Background())

	a.Analyze(eCtx, traceOf([]float64{0, 0, 5}, "a"))
	a.Analyze(eCtx, traceOf([]float64{-5}, "z"))
	a.Analyze(eCtx, traceOf([]float64{0, -5}, "a"))

	ds := a.DataSet().(*outcomeDataset)
	assert.Equal(t, 1, ds.Wins)
	assert.Equal(t, 1, ds.Illegal)
	assert.Equal(t, 1, ds.Losses)
	assert.Equal(t, []int{3, 1, 2}, ds.EpisodeLengths)
	assert.Equal(t, []int{3, 4, 6}, ds.Timesteps)

	// the dataset handed out is a copy
	ds.EpisodeLengths[0] = 100
	assert.Equal(t, 3, a.DataSet().(*outcomeDataset).EpisodeLengths[0])

	a.Reset()
	assert.Equal(t, 0, a.DataSet().(*outcomeDataset).Wins)
}

func TestOutcomeComparatorWritesJson(t *testing.T) {
	dir := t.TempDir()
	a := NewOutcomeAnalyzer()
	a.Analyze(core.NewEpisodeContext(context.Background()), traceOf([]float64{5}, "a"))

	NewOutcomeComparatorConstructor(dir).NewComparator(2).Compare(
		[]string{"replay", "tdlambda"},
		[]core.DataSet{nil, a.DataSet()},
	)

	out := make(map[string]*outcomeDataset)
	require.NoError(t, util.LoadJson(filepath.Join(dir, "2", "outcomes.json"), &out))
	assert.Len(t, out, 1)
	assert.Equal(t, 1, out["tdlambda"].Wins)
}

func TestTraceRecorder(t *testing.T) {
	dir := t.TempDir()
	r := NewTraceRecorderConstructor(dir, 1, IllegalMove).NewAnalyzer("tdlambda", 0)

	eCtx := core.NewEpisodeContext(context.Background())
	eCtx.Episode = 0
	r.Analyze(eCtx, traceOf([]float64{-5}, "z"))
	eCtx.Episode = 4
	r.Analyze(eCtx, traceOf([]float64{-5}, "z"))
	eCtx.Episode = 5
	r.Analyze(eCtx, traceOf([]float64{5}, "a"))

	entries, err := os.ReadDir(filepath.Join(dir, "traces"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0_tdlambda_illegal_4.txt", entries[0].Name())

	bs, err := os.ReadFile(filepath.Join(dir, "traces", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(bs), "Action: z")
	assert.Nil(t, r.DataSet())
}

func TestSaveErrorsAreReported(t *testing.T) {
	// a file where a directory is expected
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	outcomes := NewOutcomeComparatorConstructor(blocked)
	outcomes.NewComparator(0).Compare([]string{"tdlambda"}, []core.DataSet{NewOutcomeAnalyzer().DataSet()})
	assert.Error(t, outcomes.Err())

	traces := NewTraceRecorderConstructor(blocked, 0, IllegalMove)
	r := traces.NewAnalyzer("tdlambda", 0)
	r.Analyze(core.NewEpisodeContext(context.Background()), traceOf([]float64{-5}, "z"))
	assert.Error(t, traces.Err())
	assert.Error(t, r.(*TraceRecorder).Err())

	fine := NewOutcomeComparatorConstructor(t.TempDir())
	fine.NewComparator(0).Compare([]string{"tdlambda"}, []core.DataSet{NewOutcomeAnalyzer().DataSet()})
	assert.NoError(t, fine.Err())
}

func TestRewardComparatorSavesRuns(t *testing.T) {
	ctx := context.Background()
	store := storage.NewJSONStore(t.TempDir())
	require.NoError(t, store.Init(ctx))

	constructor := NewRewardComparatorConstructor(store)
	cmp := constructor.NewComparator(1).(*RewardComparator)
	stats := []core.AggregatedStats{{Episode: 0, Avg: 1, Min: 1, Max: 1}}
	cmp.Compare([]string{"failed", "replay"}, []core.DataSet{nil, stats})

	require.NoError(t, constructor.Err())
	ids := cmp.RunIDs()
	require.Contains(t, ids, "replay")
	assert.NotContains(t, ids, "failed")

	runs, err := store.Runs(ctx, "replay")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Run)
	assert.Equal(t, stats, runs[0].Stats)
}

func TestRewardComparatorCollectsErrors(t *testing.T) {
	store := storage.NewJSONStore(t.TempDir())
	constructor := NewRewardComparatorConstructor(store)
	constructor.NewComparator(0).Compare(
		[]string{"tdlambda"},
		[]core.DataSet{[]core.AggregatedStats{}},
	)
	assert.ErrorIs(t, constructor.Err(), storage.ErrNotInitialized)
}

func TestNoOpComparator(t *testing.T) {
	var cmp core.ComparatorConstructor = NewNoOpComparator()
	assert.NotPanics(t, func() {
		cmp.NewComparator(3).Compare([]string{"a"}, []core.DataSet{nil})
	})
}
