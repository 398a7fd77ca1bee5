package dagger

import (
	"context"
	"fmt"
)

type Evaluation struct {
	// Discounted return, averaged over the episodes
	Return float64
	// Log-likelihood of the real observations under the shallowest model, averaged over the episodes
	LogLikelihood float64
}

// Plays the cached planner policy in the real environment, rewards come from the oracle
func (t *Trainer) Evaluate(ctx context.Context) (Evaluation, error) {
	var eval Evaluation
	shallow := t.stack.At(0)

	for episode := range t.cfg.EvalEpisodes {
		obs := last(t.begin()).Obs
		discount := 1.0

		for step := range t.cfg.EvalSteps {
			if err := ctx.Err(); err != nil {
				return eval, fmt.Errorf("evaluation episode %d, step %d: %w", episode, step, err)
			}
			action := t.policy(ctx, obs)
			r := t.oracle.Reward(action, obs)
			next, er, term := t.env.TakeAction(action)

			eval.LogLikelihood += shallow.LogLikelihood(action, next)
			t.stack.Observe(action, next, er, term)
			eval.Return += discount * r
			discount *= t.cfg.Discount
			obs = next
			if term {
				break
			}
		}
	}

	n := float64(t.cfg.EvalEpisodes)
	eval.Return /= n
	eval.LogLikelihood /= n
	return eval, nil
}
