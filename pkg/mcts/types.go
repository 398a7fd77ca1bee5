package mcts

import (
	"context"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

// Other types, which didn't fit to the search or node files

type SeedGeneratorFnType func() int64

// How the children of a search node are told apart
type ChildPolicy int

const (
	// One child per (action, resulting observation), needed for stochastic models
	ChildrenByObservation ChildPolicy = iota
	// One child per action, treating the model as deterministic
	ChildrenByAction
)

func (p ChildPolicy) String() string {
	switch p {
	case ChildrenByAction:
		return "action"
	default:
		return "observation"
	}
}

// Planner chooses an action for the current observation, the model it plans
// with must be positioned at the real current state
type Planner interface {
	Search(ctx context.Context, obs grid.Observation) int
}

var (
	_ Planner = (*UCT)(nil)
	_ Planner = (*OnePly)(nil)
)
