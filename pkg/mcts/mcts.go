package mcts

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

// Record is a single simulated trajectory kept by SearchRecord.
// Observations[t] is what was seen before Actions[t] was taken.
type Record struct {
	Actions      []int
	Observations []grid.Observation
	Rewards      []float64
}

func (r Record) Len() int {
	return len(r.Actions)
}

// UCT is an incrementally grown search tree over a simulated model, rooted at
// the current observation and rebuilt on every decision
type UCT struct {
	Limiter   LimiterLike
	sim       Simulator
	reward    RewardSource
	rng       *rand.Rand
	listener  StatsListener
	selection SelectionPolicy
	strategy  StrategyLike
	policy    ChildPolicy
	logger    *slog.Logger
	tree      *Tree
	maxDepth  int
	cycles    int

	// reservoir sampling of one trajectory starting with 'first'
	first   int
	matches int
	record  Record
	trace   Record

	path    []Visit
	untried []int
}

func NewUCT(sim Simulator, reward RewardSource, rng *rand.Rand, opts ...Option) *UCT {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(SeedGeneratorFn()))
	}

	limiter := NewLimiter()
	limiter.SetLimits(o.limits)

	return &UCT{
		Limiter:   limiter,
		sim:       sim,
		reward:    reward,
		rng:       rng,
		listener:  o.listener,
		selection: NewUCB1(o.explorationParam),
		strategy:  DiscountedBackup{Discount: o.limits.Discount},
		policy:    o.childPolicy,
		logger:    o.logger,
		first:     -1,
	}
}

func (u *UCT) SetLimits(limits *Limits) {
	u.Limiter.SetLimits(limits)
	u.strategy = DiscountedBackup{Discount: limits.Discount}
}

func (u *UCT) Limits() *Limits {
	return u.Limiter.Limits()
}

func (u *UCT) SetListener(listener StatsListener) {
	u.listener = listener
}

func (u *UCT) SetSelectionPolicy(policy SelectionPolicy) {
	if policy != nil {
		u.selection = policy
	}
}

// Tree of the last search
func (u *UCT) Tree() *Tree {
	return u.tree
}

// Number of rollouts of the last search
func (u *UCT) Cycles() int {
	return u.cycles
}

func (u *UCT) MaxDepth() int {
	return u.maxDepth
}

func (u *UCT) StopReason() StopReason {
	return u.Limiter.StopReason()
}

func (u *UCT) String() string {
	size := 0
	if u.tree != nil {
		size = u.tree.Size()
	}
	return fmt.Sprintf("UCT={Size=%d, Cycles=%d, MaxDepth=%d, Limits=%v}",
		size, u.cycles, u.maxDepth, u.Limits())
}

// Choose an action for 'obs'
func (u *UCT) Search(ctx context.Context, obs grid.Observation) int {
	u.first = -1
	return u.search(ctx, obs)
}

// Like Search, but also returns one of the simulated trajectories whose first
// action was 'first', drawn uniformly among them. The record is empty if no
// rollout started with 'first'.
func (u *UCT) SearchRecord(ctx context.Context, obs grid.Observation, first int) (int, Record) {
	u.first = first
	u.matches = 0
	u.record = Record{}
	action := u.search(ctx, obs)
	u.first = -1
	return action, u.record
}

func (u *UCT) search(ctx context.Context, obs grid.Observation) int {
	u.setupSearch(ctx)
	for u.Limiter.Ok(u.cycles) {
		u.rollout(obs)
		u.cycles++
		u.listener.invokeCycle(u.cycles, u.stats)
	}

	u.Limiter.EvaluateStopReason(u.cycles)
	best := u.bestAction()
	u.listener.invokeStop(u.stats)
	u.logger.Debug("uct decision",
		slog.Int("action", best),
		slog.Int("cycles", u.cycles),
		slog.Int("size", u.tree.Size()),
		slog.Int("maxDepth", u.maxDepth),
		slog.String("stop", u.Limiter.StopReason().String()),
	)
	return best
}

func (u *UCT) setupSearch(ctx context.Context) {
	u.Limiter.SetContext(ctx)
	u.Limiter.Reset()
	u.tree = NewTree(u.sim.NumActions(), u.policy)
	u.cycles = 0
	u.maxDepth = 0
}

// Arg-max of the mean root returns among tried actions, ties broken uniformly
func (u *UCT) bestAction() int {
	root := u.tree.Root()
	values := root.Means()
	tried := 0
	for a, c := range root.Counts {
		if c == 0 {
			values[a] = negInf
		} else {
			tried++
		}
	}
	if tried == 0 {
		return u.rng.Intn(u.sim.NumActions())
	}
	var best int
	best, u.untried = argmaxTies(values, u.rng, u.untried)
	return best
}

func (u *UCT) stats() ListenerStats {
	root := u.tree.Root()
	return ListenerStats{
		Cycles:     u.cycles,
		Size:       u.tree.Size(),
		MaxDepth:   u.maxDepth,
		TimeMs:     u.Limiter.Elapsed(),
		RootValues: root.Means(),
		RootVisits: append([]int(nil), root.Counts...),
		BestAction: bestMean(root),
		StopReason: u.Limiter.StopReason(),
	}
}

// Deterministic best action for reporting, first index wins ties
func bestMean(node *Node) int {
	best := 0
	for a := range node.Counts {
		if node.Counts[a] > 0 && (node.Counts[best] == 0 || node.Mean(a) > node.Mean(best)) {
			best = a
		}
	}
	return best
}
