package mcts

import "github.com/IlikeChooros/go-hdagger/pkg/grid"

// Simulator is the view of a model the searchers work with. Every simulated
// trajectory starts with Save and must end with exactly one Restore, use WithCheckpoint.
type Simulator interface {
	NumActions() int
	Save()
	Restore()
	Step(action int) (grid.Observation, float64, bool)
}

// Runs 'fn' between Save and Restore, Restore is deferred so it also runs when 'fn'
// returns early or panics
func WithCheckpoint(sim Simulator, fn func()) {
	sim.Save()
	defer sim.Restore()
	fn()
}

type single struct {
	model SamplingModel
}

// Simulator stepping a single model with TakeAction
func Single(model SamplingModel) Simulator {
	return &single{model: model}
}

func (s *single) NumActions() int { return s.model.NumActions() }
func (s *single) Save()           { s.model.SaveState() }
func (s *single) Restore()        { s.model.RetrieveState() }

func (s *single) Step(action int) (grid.Observation, float64, bool) {
	return s.model.TakeAction(action)
}

type unrolled struct {
	model LayeredModel
	limit int
	layer int
}

// Simulator over a depth-specialized model stack: the i-th step of a trajectory
// samples from layer i, steps past the last usable layer keep using it.
// maxDepth limits the usable layers, <= 0 means all of them.
func Unrolled(model LayeredModel, maxDepth int) Simulator {
	return &unrolled{model: model, limit: model.Clamp(maxDepth)}
}

func (u *unrolled) NumActions() int { return u.model.NumActions() }

func (u *unrolled) Save() {
	u.model.SaveState()
	u.layer = 0
}

func (u *unrolled) Restore() {
	u.model.RetrieveState()
	u.layer = 0
}

func (u *unrolled) Step(action int) (grid.Observation, float64, bool) {
	next := u.layer
	if next+1 < u.limit {
		next++
	}
	obs, reward, terminal := u.model.StepLayer(u.layer, next, action)
	u.layer = next
	return obs, reward, terminal
}
