package mcts

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

// OnePly is flat Monte Carlo: every action gets Limits.Cycles rollouts that start
// with it and continue uniformly at random, the best mean discounted return wins.
// Actions the limits cut off before their first rollout are never chosen.
type OnePly struct {
	Limiter  LimiterLike
	sim      Simulator
	reward   RewardSource
	rng      *rand.Rand
	listener StatsListener
	logger   *slog.Logger
	returns  []float64
	visits   []int
	cycles   int
	ties     []int
}

func NewOnePly(sim Simulator, reward RewardSource, rng *rand.Rand, opts ...Option) *OnePly {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(SeedGeneratorFn()))
	}

	limiter := NewLimiter()
	limiter.SetLimits(o.limits)

	return &OnePly{
		Limiter:  limiter,
		sim:      sim,
		reward:   reward,
		rng:      rng,
		listener: o.listener,
		logger:   o.logger,
	}
}

func (p *OnePly) SetLimits(limits *Limits) {
	p.Limiter.SetLimits(limits)
}

func (p *OnePly) Limits() *Limits {
	return p.Limiter.Limits()
}

func (p *OnePly) SetListener(listener StatsListener) {
	p.listener = listener
}

// Summed discounted returns of every action from the last search
func (p *OnePly) Returns() []float64 {
	return append([]float64(nil), p.returns...)
}

func (p *OnePly) Search(ctx context.Context, obs grid.Observation) int {
	numActions := p.sim.NumActions()
	p.Limiter.SetContext(ctx)
	p.Limiter.Reset()
	p.returns = make([]float64, numActions)
	p.visits = make([]int, numActions)
	p.cycles = 0

search:
	for a := range numActions {
		for i := 0; ; i++ {
			if !p.Limiter.Ok(i) {
				if p.Limiter.Stop() {
					break search
				}
				break
			}
			p.returns[a] += p.rollout(obs, a)
			p.visits[a]++
			p.cycles++
			p.listener.invokeCycle(p.cycles, p.stats)
		}
	}

	p.Limiter.EvaluateStopReason(p.visits[numActions-1])
	best := p.bestAction()
	p.listener.invokeStop(p.stats)
	p.logger.Debug("one-ply decision",
		slog.Int("action", best),
		slog.Any("returns", p.returns),
		slog.String("stop", p.Limiter.StopReason().String()),
	)
	return best
}

func (p *OnePly) bestAction() int {
	means := p.means()
	tried := 0
	for a, n := range p.visits {
		if n == 0 {
			means[a] = negInf
		} else {
			tried++
		}
	}
	if tried == 0 {
		return p.rng.Intn(len(means))
	}
	var best int
	best, p.ties = argmaxTies(means, p.rng, p.ties)
	return best
}

// Mean return per action, 0 when unvisited
func (p *OnePly) means() []float64 {
	values := make([]float64, len(p.returns))
	for a := range values {
		if p.visits[a] > 0 {
			values[a] = p.returns[a] / float64(p.visits[a])
		}
	}
	return values
}

// Discounted return of one trajectory starting with 'first'
func (p *OnePly) rollout(obs grid.Observation, first int) float64 {
	ret := 0.0
	WithCheckpoint(p.sim, func() {
		limits := p.Limiter.Limits()
		action, cur, discount := first, obs, 1.0
		for t := 0; t < limits.Depth; t++ {
			next, sampled, terminal := p.sim.Step(action)
			ret += discount * rewardOf(p.reward, action, cur, sampled)
			if terminal {
				return
			}
			discount *= limits.Discount
			cur = next
			action = p.rng.Intn(p.sim.NumActions())
		}
	})
	return ret
}

func (p *OnePly) stats() ListenerStats {
	values := p.means()
	best := 0
	for a := range values {
		if values[a] > values[best] {
			best = a
		}
	}
	return ListenerStats{
		Cycles:     p.cycles,
		Size:       1,
		MaxDepth:   1,
		TimeMs:     p.Limiter.Elapsed(),
		RootValues: values,
		RootVisits: append([]int(nil), p.visits...),
		BestAction: best,
		StopReason: p.Limiter.StopReason(),
	}
}
