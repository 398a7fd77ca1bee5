package dagger

import (
	"github.com/IlikeChooros/go-hdagger/pkg/grid"
	"github.com/IlikeChooros/go-hdagger/pkg/model"
	"github.com/IlikeChooros/go-hdagger/pkg/reward"
)

// Training data of a single round, one transition set per model layer
type dataset struct {
	transitions [][]model.Example
	rewards     []reward.Example
}

func newDataset(layers int) *dataset {
	return &dataset{transitions: make([][]model.Example, layers)}
}

func (d *dataset) add(layer int, context []model.Step, outcome model.Step) {
	d.transitions[layer] = append(d.transitions[layer], model.Example{
		Context:  context,
		Action:   outcome.Action,
		Obs:      outcome.Obs,
		Reward:   outcome.Reward,
		Terminal: outcome.Terminal,
	})
}

func (d *dataset) addReward(obs grid.Observation, action int, r, weight float64) {
	d.rewards = append(d.rewards, reward.Example{Obs: obs, Action: action, Reward: r, Weight: weight})
}

// Number of transition examples over all layers
func (d *dataset) size() int {
	n := 0
	for _, examples := range d.transitions {
		n += len(examples)
	}
	return n
}

// Appends 'step' to a copy of the window, keeping at most 'order' steps.
// Windows are never mutated, examples may share them.
func push(window []model.Step, step model.Step, order int) []model.Step {
	keep := min(len(window), order-1)
	out := make([]model.Step, 0, keep+1)
	out = append(out, window[len(window)-keep:]...)
	return append(out, step)
}

func last(window []model.Step) model.Step {
	return window[len(window)-1]
}
