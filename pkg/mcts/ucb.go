package mcts

import (
	"math"
	"math/rand"
)

type SelectionPolicy interface {
	// Pick the action to follow from a node with every action tried
	Select(node *Node, rng *rand.Rand) int
}

type UCB1 struct {
	ExplorationParam float64
	scores           []float64
	ties             []int
}

func NewUCB1(explorationParam float64) *UCB1 {
	return &UCB1{ExplorationParam: max(0, explorationParam)}
}

func (u *UCB1) SetExplorationParam(c float64) {
	u.ExplorationParam = max(0, c)
}

// mean(a) + C * sqrt(ln(total) / visits(a)), ties broken uniformly
func (u *UCB1) Select(node *Node, rng *rand.Rand) int {
	lnTotal := math.Log(float64(node.Total))
	u.scores = u.scores[:0]
	for a, visits := range node.Counts {
		u.scores = append(u.scores, node.Mean(a)+
			u.ExplorationParam*math.Sqrt(lnTotal/float64(visits)))
	}
	var action int
	action, u.ties = argmaxTies(u.scores, rng, u.ties)
	return action
}

// Index of the largest value, values within TieEpsilon of it are drawn
// uniformly. 'buf' is reused for the tied indices and returned.
func argmaxTies(values []float64, rng *rand.Rand, buf []int) (int, []int) {
	best := math.Inf(-1)
	for _, v := range values {
		if v > best {
			best = v
		}
	}
	buf = buf[:0]
	for i, v := range values {
		if math.Abs(v-best) <= TieEpsilon {
			buf = append(buf, i)
		}
	}
	if len(buf) == 0 {
		return 0, buf
	}
	if len(buf) == 1 {
		return buf[0], buf
	}
	return buf[rng.Intn(len(buf))], buf
}
