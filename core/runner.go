package core

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/gosuri/uilive"
)

type experimentRunContext struct {
	run       int
	ctx       context.Context
	analyzers map[string]Analyzer

	writer io.Writer

	*GymConfig
}

type ExperimentResult struct {
	*GymResult
	// Agent is the agent trained by the run
	Agent Agent

	Error error
}

func (r *ExperimentResult) IsError() bool {
	return r.Error != nil
}

// experimentInstance is one run of an experiment with its own agent and dataset
type experimentInstance struct {
	Name        string
	Agent       Agent
	Environment Environment
	Dataset     Dataset
	Opponent1   Opponent
	Opponent2   Opponent
}

func (e *Experiment) instance() *experimentInstance {
	inst := &experimentInstance{
		Name:        e.Name,
		Agent:       e.Agent.NewAgent(),
		Environment: e.Environment,
		Opponent1:   e.Opponent1,
		Opponent2:   e.Opponent2,
	}
	if e.Dataset != nil {
		inst.Dataset = e.Dataset.NewDataset()
	}
	return inst
}

func (e *experimentInstance) run(ctx *experimentRunContext) *ExperimentResult {
	gym := NewGym(ctx.GymConfig, e.Dataset).WithWriter(ctx.writer)
	gym.Name = e.Name
	gym.run = ctx.run
	for name, a := range ctx.analyzers {
		a.Reset()
		gym.AddAnalyzer(name, a)
	}

	gymResult, err := gym.Simulate(ctx.ctx, e.Agent, e.Environment, e.Opponent1, e.Opponent2)
	if gymResult == nil {
		gymResult = &GymResult{Datasets: make(map[string]DataSet)}
	}
	gymResult.Datasets[RewardsDataSet] = gymResult.Stats
	if err != nil && ctx.writer != nil {
		fmt.Fprintf(ctx.writer, "Experiment: %s, Run %d, Error: %v\n", e.Name, ctx.run, err)
	}
	return &ExperimentResult{GymResult: gymResult, Agent: e.Agent, Error: err}
}

// Run executes every experiment one after the other and returns the results
// of the last run keyed by experiment name. Each run starts from a fresh agent
// and dataset.
func (c *Comparison) Run(ctx context.Context, runs int, config *GymConfig, writer io.Writer) map[string]*ExperimentResult {
	var results map[string]*ExperimentResult
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		results = make(map[string]*ExperimentResult)
		for _, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return results
			default:
			}
			rCtx := &experimentRunContext{
				run:       run,
				ctx:       ctx,
				analyzers: c.Analyzers,
				writer:    writer,
				GymConfig: config,
			}
			results[e.Name] = e.instance().run(rCtx)
		}

		for name, cmp := range c.Comparators {
			names, datasets := gatherDatasets(results, name)
			cmp.Compare(names, datasets)
		}
	}
	return results
}

// gatherDatasets collects the named dataset of every experiment, ordered by experiment name.
// Failed experiments contribute a nil dataset.
func gatherDatasets(results map[string]*ExperimentResult, name string) ([]string, []DataSet) {
	experimentNames := make([]string, 0, len(results))
	for expName := range results {
		experimentNames = append(experimentNames, expName)
	}
	sort.Strings(experimentNames)

	datasets := make([]DataSet, len(experimentNames))
	for i, expName := range experimentNames {
		result := results[expName]
		if result.IsError() {
			continue
		}
		datasets[i] = result.Datasets[name]
	}
	return experimentNames, datasets
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct {
	id int
}

// parallelWork is a struct that contains all the information needed to run an experiment
type parallelWork struct {
	experiment *ParallelExperiment
	comp       *ParallelComparison
	runNumber  int
	writer     io.Writer
	config     *GymConfig
	wg         *sync.WaitGroup
}

// parallelResult is a struct that contains the result of running an experiment
type parallelResult struct {
	experimentName string
	run            int
	result         *ExperimentResult
}

// Worker main loop that consumes work from a channel. A cancelled context
// makes the remaining experiments return early, so the channel is always drained.
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for work := range workCh {
		resultsCh <- w.runWork(ctx, work)
		work.wg.Done()
	}
}

// Run an experiment by constructing the experiment context, *Experiment
func (w *parallelWorker) runWork(ctx context.Context, work *parallelWork) *parallelResult {
	eCtx := &experimentRunContext{
		run:       work.runNumber,
		ctx:       ctx,
		analyzers: make(map[string]Analyzer),
		writer:    work.writer,
		GymConfig: work.config,
	}

	for name, aC := range work.comp.Analyzers {
		eCtx.analyzers[name] = aC.NewAnalyzer(work.experiment.Name, work.runNumber)
	}

	// Construct the experiment, every worker gets its own agent, environment and dataset
	exp := &experimentInstance{
		Name:        work.experiment.Name,
		Environment: work.experiment.Environment.NewEnvironment(w.id),
		Agent:       work.experiment.Agent.NewAgent(),
	}
	if work.experiment.Dataset != nil {
		exp.Dataset = work.experiment.Dataset.NewDataset()
	}
	if work.experiment.Opponents != nil {
		exp.Opponent1, exp.Opponent2 = work.experiment.Opponents()
	}

	return &parallelResult{
		experimentName: work.experiment.Name,
		run:            work.runNumber,
		result:         exp.run(eCtx),
	}
}

// Run executes the experiments of every run on a pool of workers. Each
// experiment is itself sequential; only independent experiments run side by side.
func (c *ParallelComparison) Run(ctx context.Context, runs int, config *GymConfig, parallelism int) map[string]*ExperimentResult {
	if parallelism <= 0 {
		parallelism = 1
	}
	var results map[string]*ExperimentResult
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return results
		default:
		}
		// Create workers and channels
		wg := new(sync.WaitGroup)
		writer := uilive.New()
		writer.Start()
		fmt.Fprintf(writer, "Run %d\n", run)

		workCh := make(chan *parallelWork, parallelism)
		resultsCh := make(chan *parallelResult, len(c.Experiments))

		// Start workers
		for i := 0; i < parallelism; i++ {
			worker := &parallelWorker{id: i}
			go worker.run(ctx, workCh, resultsCh)
		}

		// Run experiments by sending work to workers
		for _, e := range c.Experiments {
			wg.Add(1)
			select {
			case <-ctx.Done():
				wg.Done()
			case workCh <- &parallelWork{
				experiment: e,
				comp:       c,
				runNumber:  run,
				config:     config,
				wg:         wg,
				writer:     writer.Newline(),
			}:
			}
		}

		// Wait for all work to finish
		wg.Wait()
		close(workCh)
		close(resultsCh)
		writer.Stop()

		results = make(map[string]*ExperimentResult)
		for result := range resultsCh {
			results[result.experimentName] = result.result
		}

		for name, cC := range c.Comparators {
			select {
			case <-ctx.Done():
				return results
			default:
			}
			names, datasets := gatherDatasets(results, name)
			cC.NewComparator(run).Compare(names, datasets)
		}
	}
	return results
}
