package mcts

import "github.com/IlikeChooros/go-hdagger/pkg/grid"

// SamplingModel is anything the search can drive forward: it takes an action,
// produces the next observation, reward and terminal flag, and can roll itself
// back to the last saved state
type SamplingModel interface {
	TakeAction(action int) (grid.Observation, float64, bool)
	// Start a new trajectory
	Reset()
	// Remember the current state, single slot
	SaveState()
	// Go back to the last saved state
	RetrieveState()
	NumActions() int
	ObsDim() int
}

// LayeredModel is a sequence of depth-specialized models, layer m is
// the model trained for the m-th step of a rollout
type LayeredModel interface {
	Layers() int
	// Number of usable layers given a depth limit
	Clamp(maxDepth int) int
	NumActions() int
	// Sample the outcome of 'action' from layer m and record it in layer 'next'
	StepLayer(m, next, action int) (grid.Observation, float64, bool)
	SaveState()
	RetrieveState()
}

// RewardSource gives the reward of taking 'action' when looking at 'obs'.
// When the searchers get a nil source they use the rewards sampled by the model.
type RewardSource interface {
	Reward(action int, obs grid.Observation) float64
}

// Adapter for plain reward functions
type RewardFunc func(action int, obs grid.Observation) float64

func (f RewardFunc) Reward(action int, obs grid.Observation) float64 {
	return f(action, obs)
}
