package mcts

import "log/slog"

type options struct {
	limits           *Limits
	listener         StatsListener
	explorationParam float64
	childPolicy      ChildPolicy
	logger           *slog.Logger
}

func defaultOptions() options {
	return options{
		limits:           DefaultLimits(),
		listener:         NewStatsListener(),
		explorationParam: ExplorationParam,
		childPolicy:      ChildrenByObservation,
		logger:           slog.New(slog.DiscardHandler),
	}
}

type Option func(*options)

func WithLimits(limits *Limits) Option {
	return func(o *options) {
		if limits != nil {
			o.limits = limits
		}
	}
}

func WithListener(listener StatsListener) Option {
	return func(o *options) {
		o.listener = listener
	}
}

// Exploration constant for UCT, ignored by the one-ply search
func WithExplorationParam(c float64) Option {
	return func(o *options) {
		o.explorationParam = max(0, c)
	}
}

func WithChildPolicy(policy ChildPolicy) Option {
	return func(o *options) {
		o.childPolicy = policy
	}
}

// Decisions are logged at debug level
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
