package model

import "github.com/IlikeChooros/go-hdagger/pkg/grid"

// Step is a single transition record: the action taken and what followed it
type Step struct {
	Action   int
	Obs      grid.Observation
	Reward   bool
	Terminal bool
}

// Checkpoint marks a point in the history, restoring it truncates
// everything that was appended afterwards
type Checkpoint struct {
	Trajectories int
	Length       int
}

// Trajectories of steps, the last one is the active trajectory.
// A trajectory is a single slice of steps, so actions, observations,
// rewards and terminal flags always have the same length.
type history struct {
	trajs [][]Step
}

func newHistory() history {
	return history{trajs: make([][]Step, 1)}
}

func (h *history) current() []Step {
	return h.trajs[len(h.trajs)-1]
}

func (h *history) append(step Step) {
	last := len(h.trajs) - 1
	h.trajs[last] = append(h.trajs[last], step)
}

func (h *history) newTrajectory() {
	h.trajs = append(h.trajs, nil)
}

func (h *history) checkpoint() Checkpoint {
	return Checkpoint{Trajectories: len(h.trajs), Length: len(h.current())}
}

func (h *history) restore(cp Checkpoint) {
	if cp.Trajectories <= 0 || cp.Trajectories > len(h.trajs) {
		return
	}
	// Drop references to the discarded trajectories
	for i := cp.Trajectories; i < len(h.trajs); i++ {
		h.trajs[i] = nil
	}
	h.trajs = h.trajs[:cp.Trajectories]
	last := len(h.trajs) - 1
	if cp.Length < len(h.trajs[last]) {
		h.trajs[last] = h.trajs[last][:cp.Length]
	}
}
