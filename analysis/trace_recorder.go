package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/zeu5/rl-gyms/core"
)

// TraceSpec names a condition on an episode trace
type TraceSpec struct {
	Name  string
	Check func(*core.Trace) bool
}

// IllegalMove matches episodes lost to an illegal move of the agent
var IllegalMove = TraceSpec{
	Name: "illegal",
	Check: func(t *core.Trace) bool {
		return EpisodeOutcome(t) == Illegal
	},
}

// TraceRecorder writes the traces matching any of its specs to the traces directory
type TraceRecorder struct {
	specs    []TraceSpec
	savePath string
	exp      string
	// traces of earlier episodes are not written
	thresholdEpisode int

	errs *errorLog
}

var _ core.Analyzer = &TraceRecorder{}

func NewTraceRecorder(savePath string, threshold int, specs ...TraceSpec) *TraceRecorder {
	return newTraceRecorder(savePath, threshold, &errorLog{}, specs)
}

func newTraceRecorder(savePath string, threshold int, errs *errorLog, specs []TraceSpec) *TraceRecorder {
	tracesPath := path.Join(savePath, "traces")
	if err := os.MkdirAll(tracesPath, 0755); err != nil {
		errs.record(fmt.Errorf("creating traces directory: %w", err))
	}
	return &TraceRecorder{
		specs:            specs,
		savePath:         tracesPath,
		thresholdEpisode: threshold,
		errs:             errs,
	}
}

// Err joins the errors of the traces that could not be written
func (r *TraceRecorder) Err() error {
	return r.errs.Err()
}

func (r *TraceRecorder) Analyze(eCtx *core.EpisodeContext, trace *core.Trace) {
	if eCtx.Episode < r.thresholdEpisode {
		return
	}
	for _, spec := range r.specs {
		if !spec.Check(trace) {
			continue
		}
		fileName := fmt.Sprintf("%d_%s_%d.txt", eCtx.Run, spec.Name, eCtx.Episode)
		if r.exp != "" {
			fileName = fmt.Sprintf("%d_%s_%s_%d.txt", eCtx.Run, r.exp, spec.Name, eCtx.Episode)
		}
		if err := os.WriteFile(path.Join(r.savePath, fileName), []byte(traceToString(trace)), 0644); err != nil {
			r.errs.record(fmt.Errorf("writing trace %s: %w", fileName, err))
		}
	}
}

func traceToString(trace *core.Trace) string {
	buf := new(bytes.Buffer)
	for i := 0; i < trace.Len(); i++ {
		buf.WriteString(stepToString(trace.Step(i)))
		buf.WriteString("\n")
	}
	return buf.String()
}

func stepToString(step *core.Transition) string {
	return fmt.Sprintf(
		"Turn %d\nState: %s\nAction: %s\nReward: %.2f\nNext State: %s\nDone: %t\n",
		step.Turn,
		hashOf(step.State),
		actionHash(step.Action),
		step.Reward,
		hashOf(step.NextState),
		step.Done,
	)
}

func hashOf(s core.State) string {
	if s == nil {
		return "<nil>"
	}
	return s.Hash()
}

func actionHash(a core.Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.Hash()
}

func (*TraceRecorder) DataSet() core.DataSet {
	return nil
}

func (*TraceRecorder) Reset() {}

type TraceRecorderConstructor struct {
	SavePath         string
	ThresholdEpisode int
	Specs            []TraceSpec

	errs errorLog
}

var _ core.AnalyzerConstructor = &TraceRecorderConstructor{}

func NewTraceRecorderConstructor(savePath string, threshold int, specs ...TraceSpec) *TraceRecorderConstructor {
	return &TraceRecorderConstructor{
		SavePath:         savePath,
		ThresholdEpisode: threshold,
		Specs:            specs,
	}
}

func (c *TraceRecorderConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	r := newTraceRecorder(c.SavePath, c.ThresholdEpisode, &c.errs, c.Specs)
	r.exp = exp
	return r
}

// Err joins the errors of all the recorders created
func (c *TraceRecorderConstructor) Err() error {
	return c.errs.Err()
}
