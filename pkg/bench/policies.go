package bench

import (
	"context"
	"math/rand"

	"github.com/IlikeChooros/go-hdagger/pkg/dagger"
	"github.com/IlikeChooros/go-hdagger/pkg/grid"
	"github.com/IlikeChooros/go-hdagger/pkg/mcts"
)

// Uniformly random actions
type Random struct {
	numActions int
	rng        *rand.Rand
}

func NewRandom(numActions int, rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(mcts.SeedGeneratorFn()))
	}
	return &Random{numActions: numActions, rng: rng}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Act(_ context.Context, _ int, _ grid.Observation) int {
	return r.rng.Intn(r.numActions)
}

// Open-loop policy, the action depends only on the step number
type Scripted struct {
	name   string
	script func(step int) int
}

func NewScripted(name string, script func(step int) int) *Scripted {
	return &Scripted{name: name, script: script}
}

func (s *Scripted) Name() string { return s.name }

func (s *Scripted) Act(_ context.Context, step int, _ grid.Observation) int {
	return s.script(step)
}

// Acts with a planner, decisions are cached per observation within an episode
type Planning struct {
	name    string
	planner mcts.Planner
	cache   *dagger.PolicyCache
}

func NewPlanning(name string, planner mcts.Planner) *Planning {
	return &Planning{name: name, planner: planner, cache: dagger.NewPolicyCache()}
}

// One-ply Monte Carlo against the environment itself, the best a planner
// with a perfect model can do
func NewPerfectModel(env mcts.SamplingModel, reward mcts.RewardSource, rng *rand.Rand, limits *mcts.Limits) *Planning {
	return NewPlanning("perfect-model", mcts.NewOnePly(mcts.Single(env), reward, rng, mcts.WithLimits(limits)))
}

func (p *Planning) Name() string { return p.name }

func (p *Planning) Reset() {
	p.cache.Reset()
}

func (p *Planning) Act(ctx context.Context, _ int, obs grid.Observation) int {
	return p.cache.Action(obs, func() int {
		return p.planner.Search(ctx, obs)
	})
}
