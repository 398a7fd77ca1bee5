package mcts

import (
	"encoding/json"
	"strings"
)

type Limits struct {
	// Number of rollouts per decision, for one-ply search it's per action
	Cycles int
	// Rollout horizon
	Depth int
	// Discount factor applied to rewards along a rollout
	Discount float64
	// Time budget in milliseconds, -1 for none
	Movetime int
}

func (l Limits) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(l)
	return builder.String()
}

const (
	DefaultCyclesLimit   int     = 200
	DefaultDepthLimit    int     = 15
	DefaultDiscount      float64 = 0.9
	DefaultMovetimeLimit int     = -1
)

func DefaultLimits() *Limits {
	return &Limits{
		Cycles:   DefaultCyclesLimit,
		Depth:    DefaultDepthLimit,
		Discount: DefaultDiscount,
		Movetime: DefaultMovetimeLimit,
	}
}

// Set the number of rollouts
func (l *Limits) SetCycles(cycles int) *Limits {
	l.Cycles = max(cycles, 1)
	return l
}

// Set the rollout horizon
func (l *Limits) SetDepth(depth int) *Limits {
	l.Depth = max(depth, 1)
	return l
}

func (l *Limits) SetDiscount(discount float64) *Limits {
	l.Discount = min(max(discount, 0), 1)
	return l
}

// Set the maximum time for a single decision
func (l *Limits) SetMovetime(movetime int) *Limits {
	l.Movetime = movetime
	return l
}
