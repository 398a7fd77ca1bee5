package bench

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/IlikeChooros/go-hdagger/pkg/mcts"
)

/*
Benchmark subpackage, plays a policy in the real environment for a number of
episodes and summarises the discounted returns. Rewards come from the reward
source, the environment only produces observations.
*/

type Runner struct {
	Env      mcts.SamplingModel
	Reward   mcts.RewardSource
	Steps    int
	Discount float64
	listener ListenerLike
}

func NewRunner(env mcts.SamplingModel, reward mcts.RewardSource) *Runner {
	return &Runner{
		Env:      env,
		Reward:   reward,
		Steps:    30,
		Discount: 0.9,
		listener: DefaultListener{},
	}
}

func (r *Runner) Setup(steps int, discount float64) *Runner {
	r.Steps = max(1, steps)
	r.Discount = min(max(discount, 0), 1)
	return r
}

func (r *Runner) SetListener(listener ListenerLike) *Runner {
	if listener == nil {
		listener = DefaultListener{}
	}
	r.listener = listener
	return r
}

// Plays 'episodes' episodes, stops early if the context is cancelled
func (r *Runner) Run(ctx context.Context, policy Policy, episodes int) (Summary, error) {
	summary := Summary{Policy: policy.Name(), Returns: make([]float64, 0, episodes)}
	r.listener.OnStart(policy.Name(), episodes)

	for e := range episodes {
		ret, actions, err := r.play(ctx, policy)
		if err != nil {
			return summary, fmt.Errorf("bench: %s episode %d: %w", policy.Name(), e, err)
		}
		summary.Returns = append(summary.Returns, ret)
		r.listener.OnFinishedEpisode(EpisodeInfo{
			Policy:   policy.Name(),
			Episode:  e,
			Episodes: episodes,
			Return:   ret,
			Actions:  actions,
		})
	}

	summary.Episodes = len(summary.Returns)
	summary.Mean, summary.StdDev = meanStdDev(summary.Returns)
	r.listener.OnEnd(summary)
	return summary, nil
}

func (r *Runner) play(ctx context.Context, policy Policy) (float64, []int, error) {
	r.Env.Reset()
	if resetter, ok := policy.(Resetter); ok {
		resetter.Reset()
	}
	obs, _, terminal := r.Env.TakeAction(0)
	actions := make([]int, 0, r.Steps)
	total, discount := 0.0, 1.0

	for step := 0; step < r.Steps && !terminal; step++ {
		if err := ctx.Err(); err != nil {
			return total, actions, err
		}
		action := policy.Act(ctx, step, obs)
		total += discount * r.Reward.Reward(action, obs)
		discount *= r.Discount
		actions = append(actions, action)
		obs, _, terminal = r.Env.TakeAction(action)
	}
	return total, actions, nil
}

// Sample standard deviation is 0 for fewer than 2 returns
func meanStdDev(returns []float64) (float64, float64) {
	switch len(returns) {
	case 0:
		return 0, 0
	case 1:
		return returns[0], 0
	}
	return stat.MeanStdDev(returns, nil)
}
