package mcts

import (
	"math"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

var negInf = math.Inf(-1)

// Reward of taking 'action' at 'obs', the model's own sample unless a reward source is set
func rewardOf(source RewardSource, action int, obs grid.Observation, sampled float64) float64 {
	if source != nil {
		return source.Reward(action, obs)
	}
	return sampled
}

// State of the trajectory being simulated
type walk struct {
	obs      grid.Observation
	depth    int
	terminal bool
}

// Steps the simulator, returns the reward of the step
func (u *UCT) step(w *walk, action int) float64 {
	next, sampled, terminal := u.sim.Step(action)
	r := rewardOf(u.reward, action, w.obs, sampled)
	if u.first >= 0 {
		u.trace.Actions = append(u.trace.Actions, action)
		u.trace.Observations = append(u.trace.Observations, w.obs)
		u.trace.Rewards = append(u.trace.Rewards, r)
	}
	w.obs, w.terminal = next, terminal
	w.depth++
	return r
}

// A single simulated trajectory:
//
// 1. selection - follow UCB1 while every action of the node was tried
//
// 2. expansion - take a random untried action and add the resulting node
//
// 3. rollout - uniformly random actions until the horizon
//
// 4. backup - discounted return along the in-tree path
func (u *UCT) rollout(obs grid.Observation) {
	WithCheckpoint(u.sim, func() {
		limits := u.Limiter.Limits()
		u.path = u.path[:0]
		u.trace.Actions = u.trace.Actions[:0]
		u.trace.Observations = u.trace.Observations[:0]
		u.trace.Rewards = u.trace.Rewards[:0]

		w := walk{obs: obs}
		node := 0
		open := func() bool {
			return w.depth < limits.Depth && !w.terminal && !u.tree.Nodes[node].Terminal
		}

		// Selection
		for open() && u.tree.Nodes[node].Expanded() {
			action := u.selection.Select(&u.tree.Nodes[node], u.rng)
			r := u.step(&w, action)
			u.path = append(u.path, Visit{Node: node, Action: action, Reward: r})
			node = u.tree.Descend(node, action, w.obs, w.terminal)
		}

		// Expansion
		if open() {
			u.untried = u.tree.Nodes[node].Untried(u.untried[:0])
			action := u.untried[u.rng.Intn(len(u.untried))]
			r := u.step(&w, action)
			u.path = append(u.path, Visit{Node: node, Action: action, Reward: r})
			u.tree.Descend(node, action, w.obs, w.terminal)
		}

		if len(u.path) > u.maxDepth {
			u.maxDepth = len(u.path)
			u.listener.invokeDepth(u.stats)
		}

		// Rollout, discounted from the first step out of the tree
		tail, discount := 0.0, 1.0
		for w.depth < limits.Depth && !w.terminal {
			tail += discount * u.step(&w, u.rng.Intn(u.sim.NumActions()))
			discount *= limits.Discount
		}

		u.strategy.Backpropagate(u.tree, u.path, tail)
		u.sampleTrace()
	})
}

// Reservoir sampling over the rollouts starting with 'first'
func (u *UCT) sampleTrace() {
	if u.first < 0 || len(u.path) == 0 || u.path[0].Action != u.first {
		return
	}
	u.matches++
	if u.rng.Intn(u.matches) != 0 {
		return
	}
	u.record = Record{
		Actions:      append([]int(nil), u.trace.Actions...),
		Observations: make([]grid.Observation, len(u.trace.Observations)),
		Rewards:      append([]float64(nil), u.trace.Rewards...),
	}
	for i, obs := range u.trace.Observations {
		u.record.Observations[i] = obs.Clone()
	}
}
