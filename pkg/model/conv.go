package model

import (
	"math"
	"math/rand"

	"github.com/IlikeChooros/go-hdagger/pkg/ctw"
	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

// Conv is a factored convolutional transition model over binary grid observations.
// Every pixel is predicted by one shared pixel predictor, conditioned on the
// neighborhood of that pixel in the previous steps and the chosen action.
// Reward and termination are single bits predicted from whole observations.
type Conv struct {
	cfg           Config
	bitsPerAction int
	offsets       [][]int
	rng           *rand.Rand

	pixels  ctw.Predictor
	rewards ctw.Predictor
	ends    ctw.Predictor

	hist  history
	saved Checkpoint

	// scratch
	pixelCtx  *ctw.Context
	globalCtx *ctw.Context
	actBits   []bool
	nbhdBits  []bool
	sandbox   []Step
}

// Example is a single training tuple for BatchUpdate: a window of preceding
// (action, observation) pairs and the transition that followed it
type Example struct {
	Context  []Step
	Action   int
	Obs      grid.Observation
	Reward   bool
	Terminal bool
}

func New(cfg Config, rng *rand.Rand) (*Conv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(SeedGeneratorFn()))
	}

	bpa := bitsForActions(cfg.NumActions)
	nbhd := cfg.NeighborhoodWidth * cfg.NeighborhoodHeight
	pixelLen := cfg.Order * (bitsPerPixel*nbhd + bpa)
	globalLen := cfg.Order * (cfg.Width*cfg.Height + bpa)

	return &Conv{
		cfg:           cfg,
		bitsPerAction: bpa,
		offsets:       buildOffsetTable(cfg.NeighborhoodWidth, cfg.NeighborhoodHeight),
		rng:           rng,
		pixels:        ctw.NewTree(pixelLen),
		rewards:       ctw.NewTree(globalLen),
		ends:          ctw.NewTree(globalLen),
		hist:          newHistory(),
		saved:         Checkpoint{Trajectories: 1},
		pixelCtx:      ctw.NewContext(pixelLen),
		globalCtx:     ctw.NewContext(globalLen),
		actBits:       make([]bool, bpa),
		nbhdBits:      make([]bool, bitsPerPixel*nbhd),
	}, nil
}

func (m *Conv) Config() Config {
	return m.cfg
}

func (m *Conv) NumActions() int {
	return m.cfg.NumActions
}

func (m *Conv) ObsDim() int {
	return m.cfg.Width * m.cfg.Height
}

// Offset -> context slot table, indexed [xOffset][yOffset]
func (m *Conv) OffsetTable() [][]int {
	table := make([][]int, len(m.offsets))
	for i := range m.offsets {
		table[i] = append([]int(nil), m.offsets[i]...)
	}
	return table
}

// Appends a transition to the active trajectory, when 'learn' is set the
// predictors are trained on it first
func (m *Conv) Update(action int, obs grid.Observation, reward float64, terminal, learn bool) {
	m.Observe(Step{Action: action, Obs: obs, Reward: reward != 0, Terminal: terminal}, learn)
}

func (m *Conv) Observe(step Step, learn bool) {
	step.Obs = step.Obs.Clone()
	m.hist.append(step)
	if learn {
		steps := m.hist.current()
		m.train(steps, len(steps)-1)
	}
}

// Trains on every example in order. Each example is played through its own
// context window, the stored trajectories are never touched.
func (m *Conv) BatchUpdate(dataset []Example) {
	for i := range dataset {
		ex := &dataset[i]
		m.sandbox = append(m.sandbox[:0], ex.Context...)
		m.sandbox = append(m.sandbox, Step{
			Action:   ex.Action,
			Obs:      ex.Obs,
			Reward:   ex.Reward,
			Terminal: ex.Terminal,
		})
		m.train(m.sandbox, len(m.sandbox)-1)
	}
	clear(m.sandbox)
	m.sandbox = m.sandbox[:0]
}

// Trains the predictors on steps[step], the preceding steps are its context
func (m *Conv) train(steps []Step, step int) {
	next := &steps[step]
	for pos := range m.ObsDim() {
		ctx := m.pixelContext(steps, step, pos, next.Action)
		m.pixels.Train(ctx, next.Obs[pos] != 0)
	}
	ctx := m.globalContext(steps, step, next.Action, next.Obs)
	m.rewards.Train(ctx, next.Reward)
	m.ends.Train(ctx, next.Terminal)
}

// Draws the next observation, reward and terminal flag after 'action',
// nothing is recorded
func (m *Conv) Sample(action int) (grid.Observation, float64, bool) {
	steps := m.hist.current()
	step := len(steps)
	obs := grid.New(m.ObsDim())
	for pos := range obs {
		ctx := m.pixelContext(steps, step, pos, action)
		if m.pixels.SampleBit(ctx, m.rng.Float64()) {
			obs[pos] = 1
		}
	}

	ctx := m.globalContext(steps, step, action, obs)
	reward := 0.0
	if m.rewards.SampleBit(ctx, m.rng.Float64()) {
		reward = 1
	}
	terminal := m.ends.SampleBit(ctx, m.rng.Float64())
	return obs, reward, terminal
}

// Samples and records the outcome of 'action' without learning from it
func (m *Conv) TakeAction(action int) (grid.Observation, float64, bool) {
	obs, reward, terminal := m.Sample(action)
	m.Update(action, obs, reward, terminal, false)
	return obs, reward, terminal
}

// Probability of 'obs' following 'action' in the current context
func (m *Conv) Predict(action int, obs grid.Observation) float64 {
	return math.Exp(m.LogLikelihood(action, obs))
}

// Natural log of Predict, doesn't underflow on large grids
func (m *Conv) LogLikelihood(action int, obs grid.Observation) float64 {
	steps := m.hist.current()
	step := len(steps)
	logp := 0.0
	for pos := range m.ObsDim() {
		ctx := m.pixelContext(steps, step, pos, action)
		logp += math.Log(m.pixels.Probability(ctx, obs[pos] != 0))
	}
	return logp
}

func (m *Conv) PredictReward(action int, obs grid.Observation, reward bool) float64 {
	steps := m.hist.current()
	return m.rewards.Probability(m.globalContext(steps, len(steps), action, obs), reward)
}

func (m *Conv) PredictTerminal(action int, obs grid.Observation, terminal bool) float64 {
	steps := m.hist.current()
	return m.ends.Probability(m.globalContext(steps, len(steps), action, obs), terminal)
}

// Starts a new, empty trajectory
func (m *Conv) Reset() {
	m.hist.newTrajectory()
}

// Remembers the current history position in the single save slot
func (m *Conv) SaveState() {
	m.saved = m.hist.checkpoint()
}

// Truncates the history back to the last SaveState
func (m *Conv) RetrieveState() {
	m.hist.restore(m.saved)
}

func (m *Conv) Checkpoint() Checkpoint {
	return m.hist.checkpoint()
}

func (m *Conv) Restore(cp Checkpoint) {
	m.hist.restore(cp)
}

// Number of stored trajectories, including the active one
func (m *Conv) Trajectories() int {
	return len(m.hist.trajs)
}

// Length of the active trajectory
func (m *Conv) Len() int {
	return len(m.hist.current())
}

// Copy of trajectory 'traj'
func (m *Conv) History(traj int) []Step {
	if traj < 0 || traj >= len(m.hist.trajs) {
		return nil
	}
	src := m.hist.trajs[traj]
	out := make([]Step, len(src))
	for i, s := range src {
		s.Obs = s.Obs.Clone()
		out[i] = s
	}
	return out
}
