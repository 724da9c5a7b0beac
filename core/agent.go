package core

// QVector is the feature vector an agent derives from a (state, action) pair.
type QVector []float64

type Agent interface {
	Play(state State, epsilon float64, avoidIllegal bool) Action
}

// TDAgent learns from labelled examples produced by forward TD(lambda) credit assignment
type TDAgent interface {
	Agent
	CreateQVector(State, Action) QVector
	DecayRate() float64
	Learn([]QVector, []float64) error
}

// ReplayAgent learns from batches of stored transitions
type ReplayAgent interface {
	Agent
	LearnTransitions([]*Transition) error
}

// Opponent is a fixed player that the environment moves on behalf of
type Opponent interface {
	Move(State) Action
}

type AgentConstructor interface {
	NewAgent() Agent
}

// Dataset collects the transitions of an episode and hands them to the agent
// once the episode is over.
type Dataset interface {
	Update(Agent, *StepContext, *Transition) error
	Deploy(Agent) error
	Clear()
}

type DatasetConstructor interface {
	NewDataset() Dataset
}
