package shooter

import (
	"github.com/IlikeChooros/go-hdagger/pkg/grid"
	"github.com/IlikeChooros/go-hdagger/pkg/reward"
)

const (
	ShotCost       = -1
	ExplosionBonus = 10
	BullseyeBonus  = 20
)

// Oracle is the hand-coded reward function of the game, it reads the explosions
// off the observation seen before the action, so it pays one step after the hit
type Oracle struct {
	Width int
}

var _ reward.Model = Oracle{}

func NewOracle(g *Game) Oracle {
	return Oracle{Width: g.Width()}
}

func (o Oracle) Reward(action int, obs grid.Observation) float64 {
	r := 0
	if action == Shoot {
		r += ShotCost
	}

	w := o.Width
	for target := 0; target < w/TargetWidth; target++ {
		bottomLeft := 4*w + target*TargetWidth + 1
		on := func(i int) bool { return obs[i] != 0 }
		if on(bottomLeft) && !on(bottomLeft+1) && on(bottomLeft+2) &&
			!on(bottomLeft-w) && on(bottomLeft-w+1) && !on(bottomLeft-w+2) {
			r += ExplosionBonus
		}
		if !on(bottomLeft) && on(bottomLeft+1) && !on(bottomLeft+2) &&
			on(bottomLeft-w) && !on(bottomLeft-w+1) && on(bottomLeft-w+2) {
			r += BullseyeBonus
		}
	}
	return float64(r)
}

// The oracle is exact, there is nothing to learn
func (o Oracle) BatchUpdate(dataset []reward.Example) float64 {
	return o.BatchMSE(dataset)
}

func (o Oracle) BatchMSE(dataset []reward.Example) float64 {
	return reward.MeanSquaredError(dataset, o.Reward)
}

// Optimal is the scripted optimal policy for the 3-target game with a still
// bullseye: keep moving right and shoot at steps 1, 7 and 13
func Optimal(t int) int {
	if t == 1 || t == 7 || t == 13 {
		return Shoot
	}
	return Right
}
