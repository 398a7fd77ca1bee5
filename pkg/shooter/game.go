// Package shooter is a small deterministic shooting game on a binary grid. A ship
// at the bottom moves left and right and shoots bullets at a row of targets,
// hitting a target's sweet spot produces a bullseye explosion.
package shooter

import (
	"fmt"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

const (
	NoOp = iota
	Left
	Right
	Shoot

	NumActions = 4

	// Width of a single target column
	TargetWidth = 5
)

type targetState int

const (
	targetGone targetState = iota
	targetAlive
	targetExploded
	targetBullseye
)

type bullet struct {
	x, y int
}

type state struct {
	shipPos int
	phase   int
	targets []targetState
	bullets []bullet
}

func (s state) clone() state {
	s.targets = append([]targetState(nil), s.targets...)
	s.bullets = append([]bullet(nil), s.bullets...)
	return s
}

// Game is the environment, it implements the sampling model interface but
// always reports reward 0 and no termination, rewards come from Oracle
type Game struct {
	width          int
	height         int
	movingBullseye bool
	cur            state
	saved          state
	lastObs        grid.Observation
	savedLast      grid.Observation
}

func New(numTargets, height int, movingBullseye bool) (*Game, error) {
	if numTargets <= 0 || height < 6 {
		return nil, fmt.Errorf("shooter: need at least 1 target and height 6, got %d targets and height %d", numTargets, height)
	}
	g := &Game{
		width:          numTargets * TargetWidth,
		height:         height,
		movingBullseye: movingBullseye,
	}
	g.Reset()
	g.SaveState()
	return g, nil
}

func (g *Game) Width() int      { return g.width }
func (g *Game) Height() int     { return g.height }
func (g *Game) NumActions() int { return NumActions }
func (g *Game) ObsDim() int     { return g.width * g.height }

// Last produced observation, the initial frame right after Reset
func (g *Game) Observation() grid.Observation {
	return g.lastObs.Clone()
}

func (g *Game) Reset() {
	phase := 1
	if g.movingBullseye {
		phase = 0
	}
	targets := make([]targetState, g.width/TargetWidth)
	for i := range targets {
		targets[i] = targetAlive
	}
	g.cur = state{phase: phase, targets: targets}
	g.lastObs = g.draw(g.sweetSpot())
}

func (g *Game) SaveState() {
	g.saved = g.cur.clone()
	g.savedLast = g.lastObs.Clone()
}

func (g *Game) RetrieveState() {
	g.cur = g.saved.clone()
	g.lastObs = g.savedLast.Clone()
}

// Column of the sweet spot inside a target, 0..2
func (g *Game) sweetSpot() int {
	if g.cur.phase%2 == 1 {
		return 1
	}
	return g.cur.phase
}

func (g *Game) TakeAction(action int) (grid.Observation, float64, bool) {
	s := &g.cur

	// Explosions last a single step
	for i, t := range s.targets {
		if t == targetExploded || t == targetBullseye {
			s.targets[i] = targetGone
		}
	}

	if g.movingBullseye {
		s.phase = (s.phase + 1) % 4
	}
	sweet := g.sweetSpot()

	// Bullets move up, leave at the top or hit the bottom row of a target
	kept := s.bullets[:0]
	for _, b := range s.bullets {
		if b.y == 0 {
			continue
		}
		b.y--
		if b.y == 4 {
			target, offset := b.x/TargetWidth, b.x%TargetWidth
			if offset > 0 && offset < 4 && s.targets[target] == targetAlive {
				s.targets[target] = targetExploded
				if offset == sweet+1 {
					s.targets[target] = targetBullseye
				}
				continue
			}
		}
		kept = append(kept, b)
	}
	s.bullets = kept

	switch action {
	case Left:
		if s.shipPos > 0 {
			s.shipPos--
		}
	case Right:
		if s.shipPos < g.width-3 {
			s.shipPos++
		}
	case Shoot:
		// Don't shoot too fast
		if len(s.bullets) == 0 || s.bullets[len(s.bullets)-1].y < g.height-5 {
			s.bullets = append(s.bullets, bullet{x: s.shipPos + 1, y: g.height - 3})
		}
	}

	g.lastObs = g.draw(sweet)
	return g.lastObs.Clone(), 0, false
}

func (g *Game) draw(sweet int) grid.Observation {
	obs := grid.New(g.ObsDim())
	w := g.width
	for i, t := range g.cur.targets {
		corner := 2*w + i*TargetWidth + 1
		switch t {
		case targetAlive:
			for y := 0; y < 3; y++ {
				for x := 0; x < 3; x++ {
					obs[corner+w*y+x] = 1
				}
			}
			obs[corner+w+sweet] = 0
		case targetExploded:
			// X shape
			for y := 0; y < 3; y += 2 {
				for x := 0; x < 3; x += 2 {
					obs[corner+w*y+x] = 1
				}
			}
			obs[corner+w+1] = 1
		case targetBullseye:
			// Diamond
			for y := 0; y < 3; y += 2 {
				obs[corner+w*y+1] = 1
			}
			for x := 0; x < 3; x += 2 {
				obs[corner+w+x] = 1
			}
		}
	}

	for _, b := range g.cur.bullets {
		obs[b.y*w+b.x] = 1
	}

	for x := 0; x < 3; x++ {
		obs[(g.height-1)*w+g.cur.shipPos+x] = 1
	}
	obs[(g.height-2)*w+g.cur.shipPos+1] = 1
	return obs
}
