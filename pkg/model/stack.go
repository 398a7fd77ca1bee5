package model

import (
	"fmt"
	"math/rand"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

// Stack holds one model per hallucination depth. Instance m is trained to
// predict transitions from contexts that contain m of its own predictions,
// instance 0 only ever sees real contexts.
type Stack struct {
	models []*Conv
}

func NewStack(depth int, cfg Config, rng *rand.Rand) (*Stack, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%w: stack depth %d", ErrInvalidConfig, depth)
	}
	s := &Stack{models: make([]*Conv, depth)}
	for i := range s.models {
		m, err := New(cfg, rng)
		if err != nil {
			return nil, err
		}
		s.models[i] = m
	}
	return s, nil
}

// Number of instances
func (s *Stack) Layers() int {
	return len(s.models)
}

func (s *Stack) At(m int) *Conv {
	return s.models[m]
}

func (s *Stack) NumActions() int {
	return s.models[0].NumActions()
}

func (s *Stack) ObsDim() int {
	return s.models[0].ObsDim()
}

// Number of usable instances given a depth limit, a limit outside
// [1, Layers()] means all of them
func (s *Stack) Clamp(maxDepth int) int {
	if maxDepth <= 0 || maxDepth > len(s.models) {
		return len(s.models)
	}
	return maxDepth
}

// Records a real transition in every instance, without learning
func (s *Stack) Observe(action int, obs grid.Observation, reward float64, terminal bool) {
	for _, m := range s.models {
		m.Update(action, obs, reward, terminal, false)
	}
}

// Samples the outcome of 'action' from instance m and records it in instance 'next'
func (s *Stack) StepLayer(m, next, action int) (grid.Observation, float64, bool) {
	obs, reward, terminal := s.models[m].Sample(action)
	s.models[next].Update(action, obs, reward, terminal, false)
	return obs, reward, terminal
}

// Samples from instance m and records in min(m+1, Layers()-1), returns the next instance index
func (s *Stack) Step(m, action int) (grid.Observation, float64, bool, int) {
	next := min(m+1, len(s.models)-1)
	obs, reward, terminal := s.StepLayer(m, next, action)
	return obs, reward, terminal, next
}

func (s *Stack) Reset() {
	for _, m := range s.models {
		m.Reset()
	}
}

func (s *Stack) SaveState() {
	for _, m := range s.models {
		m.SaveState()
	}
}

func (s *Stack) RetrieveState() {
	for _, m := range s.models {
		m.RetrieveState()
	}
}
