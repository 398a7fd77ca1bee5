package dagger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/IlikeChooros/go-hdagger/pkg/model"
)

var ErrInvalidConfig = errors.New("dagger: invalid config")

// Policy generating the states the model is trained on
type Exploration int

const (
	ExploreRandom Exploration = iota
	ExploreOptimal
	// One-ply Monte Carlo against the real environment
	ExplorePerfectModel
)

func (e Exploration) String() string {
	switch e {
	case ExploreOptimal:
		return "optimal"
	case ExplorePerfectModel:
		return "mc"
	default:
		return "random"
	}
}

type PlannerKind int

const (
	PlannerOnePly PlannerKind = iota
	PlannerUCT
)

func (p PlannerKind) String() string {
	if p == PlannerUCT {
		return "uct"
	}
	return "oneply"
}

type Config struct {
	Rounds          int
	SamplesPerRound int
	// Probability of taking another step before sampling a training state
	ContinueProb float64
	Discount     float64
	// Rounds to wait before each additional hallucinated depth is used
	HallucinationDelay int
	// Deepest hallucinated depth used for training, negative means no cap
	MaxHallucinationDepth int
	// Planning horizon, also the number of depth-specialized models
	Horizon  int
	Rollouts int
	// UCT exploration constant
	ExplorationParam float64
	EvalSteps        int
	EvalEpisodes     int

	Exploration Exploration
	Planner     PlannerKind
	// Train on hallucinated contexts
	Hallucinate bool
	// Keep one model per planning depth instead of a single model
	Unrolled bool
	// Learn the reward function instead of planning with the oracle
	LearnReward bool

	Model model.Config
	// Patch reward model settings
	PatchWidth     int
	PatchHeight    int
	RewardStepSize float64
}

func DefaultConfig() Config {
	return Config{
		Rounds:                50,
		SamplesPerRound:       500,
		ContinueProb:          0.9,
		Discount:              0.9,
		HallucinationDelay:    10,
		MaxHallucinationDepth: -1,
		Horizon:               15,
		Rollouts:              200,
		ExplorationParam:      4,
		EvalSteps:             30,
		EvalEpisodes:          1,
		Exploration:           ExploreRandom,
		Planner:               PlannerOnePly,
		Hallucinate:           true,
		Unrolled:              true,
		Model:                 model.DefaultConfig(),
		PatchWidth:            3,
		PatchHeight:           3,
		RewardStepSize:        0.1,
	}
}

func (c Config) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(c)
	return builder.String()
}

func (c Config) Validate() error {
	switch {
	case c.Rounds <= 0 || c.SamplesPerRound <= 0:
		return fmt.Errorf("%w: %d rounds of %d samples", ErrInvalidConfig, c.Rounds, c.SamplesPerRound)
	case c.ContinueProb < 0 || c.ContinueProb >= 1:
		return fmt.Errorf("%w: continue probability %f", ErrInvalidConfig, c.ContinueProb)
	case c.Discount < 0 || c.Discount > 1:
		return fmt.Errorf("%w: discount %f", ErrInvalidConfig, c.Discount)
	case c.Horizon <= 0 || c.Rollouts <= 0:
		return fmt.Errorf("%w: horizon %d, %d rollouts", ErrInvalidConfig, c.Horizon, c.Rollouts)
	case c.EvalSteps <= 0 || c.EvalEpisodes <= 0:
		return fmt.Errorf("%w: %d evaluation episodes of %d steps", ErrInvalidConfig, c.EvalEpisodes, c.EvalSteps)
	case c.LearnReward && (c.PatchWidth <= 0 || c.PatchHeight <= 0):
		return fmt.Errorf("%w: patch %dx%d", ErrInvalidConfig, c.PatchWidth, c.PatchHeight)
	}
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Number of depth-specialized models
func (c Config) Layers() int {
	if c.Unrolled {
		return c.Horizon
	}
	return 1
}

// Number of consecutive training examples taken after each sampled state
func (c Config) Depths() int {
	if c.Hallucinate || c.Unrolled {
		return c.Horizon
	}
	return 1
}
