package dagger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
	"github.com/IlikeChooros/go-hdagger/pkg/mcts"
	"github.com/IlikeChooros/go-hdagger/pkg/model"
	"github.com/IlikeChooros/go-hdagger/pkg/reward"
)

var (
	_ mcts.SamplingModel = (*model.Conv)(nil)
	_ mcts.LayeredModel  = (*model.Stack)(nil)
)

// RoundResult summarises one training round
type RoundResult struct {
	Round int
	// Discounted return of the planner in the real environment
	Return float64
	// Log-likelihood of the evaluation observations under the shallowest model
	LogLikelihood float64
	// Reward model error over the round's reward examples, 0 without reward learning
	RewardMSE float64
	// Number of transition examples collected
	Samples  int
	Duration time.Duration
}

// Trainer runs the DAgger loop: collect states with a mix of an exploration
// policy and the current model's planner, train the models on what the
// real environment did from those states, evaluate, repeat.
type Trainer struct {
	cfg     Config
	env     mcts.SamplingModel
	oracle  reward.Model
	rewards reward.Model
	stack   *model.Stack
	cache   *PolicyCache

	planner  mcts.Planner
	uct      *mcts.UCT
	explorer mcts.Planner

	rng     *rand.Rand
	logger  *slog.Logger
	optimal func(t int) int
	onRound func(RoundResult)
}

// 'env' is the real environment, 'oracle' its true reward function
func NewTrainer(cfg Config, env mcts.SamplingModel, oracle reward.Model, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if env.ObsDim() != cfg.Model.Width*cfg.Model.Height || env.NumActions() != cfg.Model.NumActions {
		return nil, fmt.Errorf("%w: environment with %d pixels and %d actions, model expects %dx%d and %d",
			ErrInvalidConfig, env.ObsDim(), env.NumActions(), cfg.Model.Width, cfg.Model.Height, cfg.Model.NumActions)
	}

	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(model.SeedGeneratorFn()))
	}
	if cfg.Exploration == ExploreOptimal && o.optimal == nil {
		return nil, fmt.Errorf("%w: optimal exploration without a scripted policy", ErrInvalidConfig)
	}

	stack, err := model.NewStack(cfg.Layers(), cfg.Model, o.rng)
	if err != nil {
		return nil, err
	}

	t := &Trainer{
		cfg:     cfg,
		env:     env,
		oracle:  oracle,
		rewards: oracle,
		stack:   stack,
		cache:   NewPolicyCache(),
		rng:     o.rng,
		logger:  o.logger,
		optimal: o.optimal,
		onRound: o.onRound,
	}

	if cfg.LearnReward {
		patch, err := reward.NewPatch(cfg.Model.NumActions, cfg.Model.Width, cfg.Model.Height,
			cfg.PatchWidth, cfg.PatchHeight, cfg.RewardStepSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		t.rewards = patch
	}

	if cfg.Exploration == ExplorePerfectModel {
		t.explorer = mcts.NewOnePly(mcts.Single(env), oracle, t.rng,
			mcts.WithLimits(t.limits()), mcts.WithLogger(t.logger))
	}
	t.setPlanner(0)
	return t, nil
}

func (t *Trainer) Stack() *model.Stack {
	return t.stack
}

// Reward function the planner uses, the oracle unless rewards are learned
func (t *Trainer) RewardModel() reward.Model {
	return t.rewards
}

func (t *Trainer) limits() *mcts.Limits {
	return mcts.DefaultLimits().
		SetCycles(t.cfg.Rollouts).
		SetDepth(t.cfg.Horizon).
		SetDiscount(t.cfg.Discount)
}

// Planner over the layers usable in 'round', a single model is stepped directly
func (t *Trainer) setPlanner(round int) {
	var sim mcts.Simulator
	if t.cfg.Unrolled {
		sim = mcts.Unrolled(t.stack, ModelDepth(round, t.cfg.HallucinationDelay))
	} else {
		sim = mcts.Single(t.stack.At(0))
	}
	opts := []mcts.Option{mcts.WithLimits(t.limits()), mcts.WithLogger(t.logger)}
	t.uct = nil

	switch t.cfg.Planner {
	case PlannerUCT:
		t.uct = mcts.NewUCT(sim, t.rewards, t.rng,
			append(opts, mcts.WithExplorationParam(t.cfg.ExplorationParam))...)
		t.planner = t.uct
	default:
		t.planner = mcts.NewOnePly(sim, t.rewards, t.rng, opts...)
	}
}

// Runs all rounds, stops at the first error
func (t *Trainer) Run(ctx context.Context) ([]RoundResult, error) {
	results := make([]RoundResult, 0, t.cfg.Rounds)
	for round := range t.cfg.Rounds {
		res, err := t.Round(ctx, round)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Collects the round's data, trains on it and evaluates the new policy
func (t *Trainer) Round(ctx context.Context, round int) (RoundResult, error) {
	start := time.Now()
	t.setPlanner(round)
	t.cache.Reset()

	data := newDataset(t.stack.Layers())
	for i := range t.cfg.SamplesPerRound {
		if err := ctx.Err(); err != nil {
			return RoundResult{}, fmt.Errorf("round %d, sample %d: %w", round, i, err)
		}
		if round == 0 {
			t.explore(ctx, data)
		} else {
			t.sample(ctx, round, data)
		}
	}

	for m, examples := range data.transitions {
		t.stack.At(m).BatchUpdate(examples)
	}
	res := RoundResult{Round: round, Samples: data.size()}
	if t.cfg.LearnReward {
		t.rewards.BatchUpdate(data.rewards)
		res.RewardMSE = t.rewards.BatchMSE(data.rewards)
	}
	hits, misses := t.cache.Stats()
	t.cache.Reset()

	eval, err := t.Evaluate(ctx)
	if err != nil {
		return RoundResult{}, fmt.Errorf("round %d: %w", round, err)
	}
	res.Return = eval.Return
	res.LogLikelihood = eval.LogLikelihood
	res.Duration = time.Since(start)

	t.logger.Info("round finished",
		slog.Int("round", round),
		slog.Float64("return", res.Return),
		slog.Float64("loglik", res.LogLikelihood),
		slog.Float64("reward_mse", res.RewardMSE),
		slog.Int("samples", res.Samples),
		slog.Int("cache_hits", hits),
		slog.Int("cache_misses", misses),
		slog.Duration("took", res.Duration),
	)
	if t.onRound != nil {
		t.onRound(res)
	}
	return res, nil
}

// Cached planner decision in the current real state
func (t *Trainer) policy(ctx context.Context, obs grid.Observation) int {
	return t.cache.Action(obs, func() int {
		return t.planner.Search(ctx, obs)
	})
}

// Exploration policy decision, 'step' counts actions since the first observation
func (t *Trainer) exploreAction(ctx context.Context, obs grid.Observation, step int) int {
	switch t.cfg.Exploration {
	case ExploreOptimal:
		return t.optimal(step)
	case ExplorePerfectModel:
		return t.explorer.Search(ctx, obs)
	default:
		return t.rng.Intn(t.env.NumActions())
	}
}

// Starts a real episode, every model sees the first observation
func (t *Trainer) begin() []model.Step {
	t.env.Reset()
	t.stack.Reset()
	obs, r, term := t.env.TakeAction(0)
	t.stack.Observe(0, obs, r, term)
	return []model.Step{{Action: 0, Obs: obs, Reward: r != 0, Terminal: term}}
}

// Takes 'action' in the real environment and shows the outcome to the models
func (t *Trainer) advance(window []model.Step, action int) []model.Step {
	obs, r, term := t.env.TakeAction(action)
	t.stack.Observe(action, obs, r, term)
	return push(window, model.Step{Action: action, Obs: obs, Reward: r != 0, Terminal: term}, t.cfg.Model.Order)
}

// Round 0: exploration policy only
func (t *Trainer) explore(ctx context.Context, data *dataset) {
	window := t.begin()
	step := 0
	for t.rng.Float64() < t.cfg.ContinueProb {
		window = t.advance(window, t.exploreAction(ctx, last(window).Obs, step))
		step++
	}

	obs := last(window).Obs
	action := t.exploreAction(ctx, obs, step)
	next, r, term := t.env.TakeAction(action)
	outcome := model.Step{Action: action, Obs: next, Reward: r != 0, Terminal: term}

	// deeper layers wait for their hallucinated data
	layers := 1
	if !t.cfg.Hallucinate {
		layers = t.stack.Layers()
	}
	for m := range layers {
		data.add(m, window, outcome)
	}
	data.addReward(obs, action, t.oracle.Reward(action, obs), 1)
}

// Later rounds: reach a state with either policy, then record what the real
// environment does from it, against real or hallucinated contexts
func (t *Trainer) sample(ctx context.Context, round int, data *dataset) {
	window := t.begin()
	var action int
	if t.rng.Intn(2) == 1 {
		step := 0
		for t.rng.Float64() < t.cfg.ContinueProb {
			window = t.advance(window, t.exploreAction(ctx, last(window).Obs, step))
			step++
		}
		action = t.lastExploreAction(ctx, last(window).Obs, step)
	} else {
		for t.rng.Float64() < t.cfg.ContinueProb {
			window = t.advance(window, t.policy(ctx, last(window).Obs))
		}
		action = t.policy(ctx, last(window).Obs)
	}

	if t.cfg.Hallucinate && t.uct != nil {
		if _, rec := t.uct.SearchRecord(ctx, last(window).Obs, action); rec.Len() > 0 {
			t.collectRecorded(round, window, rec, data)
			return
		}
	}
	t.collect(round, window, action, data)
}

// Action taken from a state the exploration policy reached. Plain DAgger keeps
// exploring, hallucinated DAgger flips a coin between exploring and planning.
func (t *Trainer) lastExploreAction(ctx context.Context, obs grid.Observation, step int) int {
	if !t.cfg.Hallucinate || t.rng.Intn(2) == 1 {
		return t.exploreAction(ctx, obs, step)
	}
	return t.policy(ctx, obs)
}

// Follows 'action' and then random actions in the real environment. With
// hallucination the contexts are rolled forward by the models instead.
func (t *Trainer) collect(round int, window []model.Step, action int, data *dataset) {
	actual, hallucinated := window, window
	layers := t.stack.Layers()
	delay := t.cfg.HallucinationDelay

	for h := range t.cfg.Depths() {
		layer := min(h, layers-1)
		obs := last(actual).Obs
		next, r, term := t.env.TakeAction(action)
		outcome := model.Step{Action: action, Obs: next, Reward: r != 0, Terminal: term}
		truth := t.oracle.Reward(action, obs)

		if t.cfg.Hallucinate {
			if !Included(round, h, delay, t.cfg.MaxHallucinationDepth) {
				break
			}
			data.add(layer, hallucinated, outcome)
			data.addReward(last(hallucinated).Obs, action, truth, math.Pow(t.cfg.Discount, float64(h)))
			if round < (h+1)*delay {
				break
			}
			hobs, hr, hterm := t.stack.StepLayer(layer, min(h+1, layers-1), action)
			hallucinated = push(hallucinated, model.Step{Action: action, Obs: hobs, Reward: hr != 0, Terminal: hterm}, t.cfg.Model.Order)
		} else {
			data.add(layer, actual, outcome)
			data.addReward(obs, action, truth, 1)
		}

		if term {
			break
		}
		actual = push(actual, outcome, t.cfg.Model.Order)
		action = t.rng.Intn(t.env.NumActions())
	}
}

// Like collect, but the hallucinated contexts and the actions come from one
// of the planner's own rollouts
func (t *Trainer) collectRecorded(round int, window []model.Step, rec mcts.Record, data *dataset) {
	actual, hallucinated := window, window
	layers := t.stack.Layers()

	for h := range min(t.cfg.Depths(), rec.Len()) {
		if !Included(round, h, t.cfg.HallucinationDelay, t.cfg.MaxHallucinationDepth) {
			break
		}
		if h > 0 {
			hallucinated = push(hallucinated, model.Step{
				Action: rec.Actions[h-1],
				Obs:    rec.Observations[h],
				Reward: rec.Rewards[h-1] != 0,
			}, t.cfg.Model.Order)
		}

		action := rec.Actions[h]
		obs := last(actual).Obs
		next, r, term := t.env.TakeAction(action)
		outcome := model.Step{Action: action, Obs: next, Reward: r != 0, Terminal: term}
		data.add(min(h, layers-1), hallucinated, outcome)
		data.addReward(last(hallucinated).Obs, action, t.oracle.Reward(action, obs),
			math.Pow(t.cfg.Discount, float64(h)))

		if term {
			break
		}
		actual = push(actual, outcome, t.cfg.Model.Order)
	}
}
