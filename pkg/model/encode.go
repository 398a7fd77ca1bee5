package model

import (
	"sort"

	"github.com/IlikeChooros/go-hdagger/pkg/ctw"
	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

// Each pixel of a neighborhood takes 2 context bits: value and validity
const bitsPerPixel = 2

// Builds the neighborhood offset -> context slot table, offsets are sorted by
// descending Manhattan distance from the window center, so the center gets the last slot
func buildOffsetTable(width, height int) [][]int {
	type offset struct{ dist, x, y int }
	offsets := make([]offset, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			offsets = append(offsets, offset{abs(x-width/2) + abs(y-height/2), x, y})
		}
	}

	sort.Slice(offsets, func(i, j int) bool {
		a, b := offsets[i], offsets[j]
		if a.dist != b.dist {
			return a.dist > b.dist
		}
		if a.x != b.x {
			return a.x > b.x
		}
		return a.y > b.y
	})

	table := make([][]int, width)
	for x := range table {
		table[x] = make([]int, height)
	}
	for slot, off := range offsets {
		table[off.x][off.y] = slot
	}
	return table
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Writes the action into 'bits', most significant bit first
func (m *Conv) encodeAction(action int, bits []bool) {
	for i := range bits {
		bits[i] = action&(1<<(len(bits)-1-i)) != 0
	}
}

// Writes the neighborhood of position 'pos' into 'bits' using the offset table.
// Off-grid pixels are encoded as (0, invalid).
func (m *Conv) encodeNeighborhood(obs grid.Observation, pos int, bits []bool) {
	x, y := pos%m.cfg.Width, pos/m.cfg.Width
	nw, nh := m.cfg.NeighborhoodWidth, m.cfg.NeighborhoodHeight
	for xOff := 0; xOff < nw; xOff++ {
		for yOff := 0; yOff < nh; yOff++ {
			slot := bitsPerPixel * m.offsets[xOff][yOff]
			ax, ay := x+xOff-nw/2, y+yOff-nh/2
			if ax >= 0 && ax < m.cfg.Width && ay >= 0 && ay < m.cfg.Height {
				bits[slot] = obs[ay*m.cfg.Width+ax] != 0
				bits[slot+1] = true
			} else {
				bits[slot] = false
				bits[slot+1] = false
			}
		}
	}
}

func (m *Conv) pushAction(ctx *ctw.Context, action int) {
	m.encodeAction(action, m.actBits)
	ctx.Push(m.actBits...)
}

func (m *Conv) pushObservation(ctx *ctw.Context, obs grid.Observation) {
	for _, p := range obs {
		ctx.Push(p != 0)
	}
}

// Context of the pixel model at position 'pos' before step index 'step' of 'steps':
// the trailing 'order' (action, neighborhood) pairs, followed by the next action.
// Contexts at the start of a trajectory are just shorter.
func (m *Conv) pixelContext(steps []Step, step, pos, action int) *ctw.Context {
	ctx := m.pixelCtx
	ctx.Reset()
	for t := max(step-m.cfg.Order, 0); t < step; t++ {
		m.pushAction(ctx, steps[t].Action)
		m.encodeNeighborhood(steps[t].Obs, pos, m.nbhdBits)
		ctx.Push(m.nbhdBits...)
	}
	m.pushAction(ctx, action)
	return ctx
}

// Context of the reward and termination models for step index 'step': the
// trailing order-1 whole observations, plus the new action and observation
func (m *Conv) globalContext(steps []Step, step, action int, obs grid.Observation) *ctw.Context {
	ctx := m.globalCtx
	ctx.Reset()
	for t := max(step-m.cfg.Order+1, 0); t < step; t++ {
		m.pushAction(ctx, steps[t].Action)
		m.pushObservation(ctx, steps[t].Obs)
	}
	m.pushAction(ctx, action)
	m.pushObservation(ctx, obs)
	return ctx
}
