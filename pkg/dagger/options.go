package dagger

import (
	"log/slog"
	"math/rand"
)

type options struct {
	logger  *slog.Logger
	rng     *rand.Rand
	optimal func(t int) int
	onRound func(RoundResult)
}

type Option func(*options)

// Rounds are logged at info level, samples at debug level
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Shared random source for the models, the planners and the data collection
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// Scripted policy used by ExploreOptimal, 't' is the step since the first observation
func WithOptimalPolicy(policy func(t int) int) Option {
	return func(o *options) {
		o.optimal = policy
	}
}

// Called after every evaluated round
func OnRound(fn func(RoundResult)) Option {
	return func(o *options) {
		o.onRound = fn
	}
}
