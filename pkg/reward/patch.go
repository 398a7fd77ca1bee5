package reward

import (
	"errors"
	"fmt"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

var ErrInvalidPatch = errors.New("reward: invalid patch model")

// Patch code digits
const (
	absent  = 0
	present = 1
	offGrid = 2
)

// Patch is a linear reward model over patch indicator features: for every
// position one feature fires for the exact ternary configuration of the patch
// around it, plus a shared bias feature. Weights are kept per action.
type Patch struct {
	numActions int
	width      int
	height     int
	numPatches int
	stepSize   float64
	// neighborhoods[p] lists the pixel index of every patch cell, -1 when off the grid
	neighborhoods [][]int
	weights       []map[int]float64
	active        []int
}

var _ Model = (*Patch)(nil)

// Creates an untrained model, the effective step size is stepSize/(width*height+1)
// since every example updates that many features
func NewPatch(numActions, width, height, patchWidth, patchHeight int, stepSize float64) (*Patch, error) {
	if numActions <= 0 || width <= 0 || height <= 0 || patchWidth <= 0 || patchHeight <= 0 {
		return nil, fmt.Errorf("%w: %d actions, grid %dx%d, patch %dx%d",
			ErrInvalidPatch, numActions, width, height, patchWidth, patchHeight)
	}

	numPatches := 1
	for range patchWidth * patchHeight {
		numPatches *= 3
	}

	p := &Patch{
		numActions:    numActions,
		width:         width,
		height:        height,
		numPatches:    numPatches,
		stepSize:      stepSize / float64(width*height+1),
		neighborhoods: make([][]int, 0, width*height),
		weights:       make([]map[int]float64, numActions),
		active:        make([]int, 0, width*height+1),
	}
	for a := range p.weights {
		p.weights[a] = make(map[int]float64)
	}

	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			nbhd := make([]int, 0, patchWidth*patchHeight)
			for nr := r - patchHeight/2; nr <= r+(patchHeight-1)/2; nr++ {
				for nc := c - patchWidth/2; nc <= c+(patchWidth-1)/2; nc++ {
					if nr < 0 || nr >= height || nc < 0 || nc >= width {
						nbhd = append(nbhd, -1)
					} else {
						nbhd = append(nbhd, nr*width+nc)
					}
				}
			}
			p.neighborhoods = append(p.neighborhoods, nbhd)
		}
	}
	return p, nil
}

// 1 bias + positions * 3^(patch area)
func (p *Patch) NumFeatures() int {
	return 1 + p.width*p.height*p.numPatches
}

// Indices of the features firing for 'obs', the bias (0) comes first
func (p *Patch) ActiveFeatures(obs grid.Observation) []int {
	return append([]int(nil), p.activeFeatures(obs)...)
}

func (p *Patch) activeFeatures(obs grid.Observation) []int {
	p.active = append(p.active[:0], 0)
	for pos, nbhd := range p.neighborhoods {
		code := 0
		for _, idx := range nbhd {
			code *= 3
			switch {
			case idx < 0:
				code += offGrid
			case obs[idx] != 0:
				code += present
			default:
				code += absent
			}
		}
		p.active = append(p.active, code+pos*p.numPatches+1)
	}
	return p.active
}

func (p *Patch) rewardOf(action int, features []int) float64 {
	r := 0.0
	weights := p.weights[action]
	for _, f := range features {
		r += weights[f]
	}
	return r
}

// Sum of the action's weights over the active features
func (p *Patch) Reward(action int, obs grid.Observation) float64 {
	return p.rewardOf(action, p.activeFeatures(obs))
}

// One stochastic gradient step per example, in dataset order
func (p *Patch) BatchUpdate(dataset []Example) float64 {
	if len(dataset) == 0 {
		return 0
	}
	sse := 0.0
	for _, ex := range dataset {
		if ex.Weight == 0 {
			continue
		}
		features := p.activeFeatures(ex.Obs)
		err := ex.Reward - p.rewardOf(ex.Action, features)
		w := ex.Weight
		sse += err * err * w

		weights := p.weights[ex.Action]
		for _, f := range features {
			weights[f] += p.stepSize * err * w
		}
	}
	return sse / float64(len(dataset))
}

func (p *Patch) BatchMSE(dataset []Example) float64 {
	return MeanSquaredError(dataset, p.Reward)
}

// Number of non-zero weights, for diagnostics
func (p *Patch) NumWeights() int {
	n := 0
	for _, weights := range p.weights {
		n += len(weights)
	}
	return n
}
