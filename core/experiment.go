package core

// RewardsDataSet is the name under which the aggregated reward stats of an
// experiment are handed to the comparators
const RewardsDataSet = "Rewards"

// OpponentsConstructor returns the two opponents an experiment plays against
type OpponentsConstructor func() (Opponent, Opponent)

type ParallelExperiment struct {
	Name        string
	Environment EnvironmentConstructor
	Agent       AgentConstructor
	// Dataset is nil for experiments that only evaluate the agent
	Dataset   DatasetConstructor
	Opponents OpponentsConstructor
}

type DataSet interface{}

type Analyzer interface {
	Analyze(*EpisodeContext, *Trace)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet)
}

type ComparatorConstructor interface {
	NewComparator(int) Comparator
}

type ParallelComparison struct {
	Experiments []*ParallelExperiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]ComparatorConstructor
}

func NewParallelComparison() *ParallelComparison {
	return &ParallelComparison{
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]ComparatorConstructor),
		Experiments: make([]*ParallelExperiment, 0),
	}
}

func (c *ParallelComparison) AddExperiment(e *ParallelExperiment) {
	c.Experiments = append(c.Experiments, e)
}

// AddAnalysis registers an analyzer and the comparator of its datasets. A nil
// analyzer constructor registers a comparator of the gym's own datasets, such
// as RewardsDataSet.
func (c *ParallelComparison) AddAnalysis(name string, a AnalyzerConstructor, cmp ComparatorConstructor) {
	if a != nil {
		c.Analyzers[name] = a
	}
	c.Comparators[name] = cmp
}

// Experiment is run sequentially by a Comparison. Every run gets a fresh
// agent and dataset so that runs are independent.
type Experiment struct {
	Name        string
	Agent       AgentConstructor
	Environment Environment
	// Dataset is nil for experiments that only evaluate the agent
	Dataset   DatasetConstructor
	Opponent1 Opponent
	Opponent2 Opponent
}

type Comparison struct {
	Experiments []*Experiment
	Analyzers   map[string]Analyzer
	Comparators map[string]Comparator
}

func NewComparison() *Comparison {
	return &Comparison{
		Analyzers:   make(map[string]Analyzer),
		Comparators: make(map[string]Comparator),
		Experiments: make([]*Experiment, 0),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, a Analyzer, cmp Comparator) {
	if a != nil {
		c.Analyzers[name] = a
	}
	c.Comparators[name] = cmp
}
