package ctw

import (
	"fmt"
	"math"
)

var logHalf = math.Log(0.5)

type node struct {
	counts   [2]float64
	logKT    float64 // log of the Krichevsky-Trofimov estimate for this context
	logW     float64 // log of the weighted block probability of the subtree
	children [2]*node
}

func (n *node) weight() float64 {
	if n == nil {
		return 0
	}
	return n.logW
}

// Tree is a context-tree weighting predictor of fixed depth, the depth is
// the context length. Nodes are allocated lazily along the visited paths.
type Tree struct {
	depth int
	root  *node
	size  int

	// scratch buffers reused between calls
	path    []*node
	weights []float64
}

var _ Predictor = (*Tree)(nil)

func NewTree(depth int) *Tree {
	if depth <= 0 {
		panic(fmt.Sprintf("ctw: tree depth must be positive, got %d", depth))
	}
	return &Tree{
		depth:   depth,
		root:    &node{},
		size:    1,
		path:    make([]*node, depth+1),
		weights: make([]float64, depth+1),
	}
}

func (t *Tree) ContextLen() int {
	return t.depth
}

// Number of allocated nodes
func (t *Tree) Size() int {
	return t.size
}

func (t *Tree) LogBlockProbability() float64 {
	return t.root.logW
}

func (t *Tree) Train(ctx *Context, bit bool) {
	t.checkContext(ctx)
	t.walk(ctx, true)
	t.update(bit, true)
}

func (t *Tree) Probability(ctx *Context, bit bool) float64 {
	t.checkContext(ctx)
	t.walk(ctx, false)
	return math.Exp(t.update(bit, false) - t.root.logW)
}

func (t *Tree) SampleBit(ctx *Context, u float64) bool {
	return u < t.Probability(ctx, true)
}

func (t *Tree) checkContext(ctx *Context) {
	if ctx.Capacity() != t.depth {
		panic(fmt.Sprintf("ctw: context length %d doesn't match tree depth %d", ctx.Capacity(), t.depth))
	}
}

// Fills t.path with the nodes along the context, when 'create' is false missing
// nodes are left nil (they behave like fresh nodes)
func (t *Tree) walk(ctx *Context, create bool) {
	n := t.root
	t.path[0] = n
	for d := 1; d <= t.depth; d++ {
		if n != nil {
			b := bitIndex(ctx.Bit(d - 1))
			child := n.children[b]
			if child == nil && create {
				child = &node{}
				n.children[b] = child
				t.size++
			}
			n = child
		}
		t.path[d] = n
	}
}

// Computes the new root weight after observing 'bit' at the walked path,
// storing the new statistics when commit is set. Returns the new root log weight.
func (t *Tree) update(bit bool, commit bool) float64 {
	b := bitIndex(bit)
	for d := t.depth; d >= 0; d-- {
		n := t.path[d]

		var counts [2]float64
		var logKT float64
		if n != nil {
			counts = n.counts
			logKT = n.logKT
		}

		logKT += math.Log((counts[b] + 0.5) / (counts[0] + counts[1] + 1))

		var logW float64
		if d == t.depth {
			logW = logKT
		} else {
			// Weight of the on-path child was just computed, the sibling is unchanged
			childSum := t.weights[d+1]
			if n != nil {
				onPath := t.path[d+1]
				for _, child := range n.children {
					if child != onPath {
						childSum += child.weight()
					}
				}
			}
			logW = logHalf + logAdd(logKT, childSum)
		}
		t.weights[d] = logW

		if commit {
			n.counts[b]++
			n.logKT = logKT
			n.logW = logW
		}
	}
	return t.weights[0]
}

func bitIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// log(exp(x) + exp(y)) without leaving log-space
func logAdd(x, y float64) float64 {
	if x < y {
		x, y = y, x
	}
	diff := y - x
	if diff < -100 {
		return x
	}
	return x + math.Log1p(math.Exp(diff))
}
