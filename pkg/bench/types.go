package bench

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

// Policy picks the action for the current real observation, 'step' counts
// the actions taken since the first observation of the episode
type Policy interface {
	Name() string
	Act(ctx context.Context, step int, obs grid.Observation) int
}

// Policies with per-episode state, reset by the runner before every episode
type Resetter interface {
	Reset()
}

type EpisodeInfo struct {
	Policy   string
	Episode  int
	Episodes int
	Return   float64
	Actions  []int
}

type Summary struct {
	Policy   string    `json:"policy"`
	Episodes int       `json:"episodes"`
	Mean     float64   `json:"mean"`
	StdDev   float64   `json:"stddev"`
	Returns  []float64 `json:"returns"`
}

func (s Summary) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(s)
	return builder.String()
}
