package ctw

import (
	"math"
	"math/rand"
	"testing"
)

func TestContextWindow(t *testing.T) {
	ctx := NewContext(3)
	if ctx.Bit(0) || ctx.Len() != 0 {
		t.Fatal("fresh context should read zeros")
	}

	ctx.Push(true, false, true, true)
	if ctx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ctx.Len())
	}

	want := []bool{false, true, true}
	got := ctx.Bits()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bits() = %v, want %v", got, want)
		}
	}

	if !ctx.Bit(0) || !ctx.Bit(1) || ctx.Bit(2) || ctx.Bit(3) {
		t.Fatalf("unexpected bits %v", ctx.Bits())
	}

	ctx.Reset()
	if ctx.Len() != 0 || ctx.Bit(0) {
		t.Fatal("reset context should read zeros")
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tree := NewTree(6)
	ctx := NewContext(6)

	for i := 0; i < 500; i++ {
		ctx.Reset()
		for j := 0; j < 6; j++ {
			ctx.Push(r.Intn(2) == 1)
		}

		p0, p1 := tree.Probability(ctx, false), tree.Probability(ctx, true)
		if math.Abs(p0+p1-1) > 1e-9 {
			t.Fatalf("p(0)+p(1) = %f at step %d", p0+p1, i)
		}
		tree.Train(ctx, r.Intn(2) == 1)
	}
}

func TestProbabilityIsStateless(t *testing.T) {
	tree := NewTree(4)
	ctx := NewContext(4)
	ctx.Push(true, false, true, false)

	for i := 0; i < 20; i++ {
		tree.Train(ctx, i%3 == 0)
	}

	block := tree.LogBlockProbability()
	size := tree.Size()
	first := tree.Probability(ctx, true)
	for i := 0; i < 10; i++ {
		if p := tree.Probability(ctx, true); p != first {
			t.Fatalf("repeated Probability() changed: %f != %f", p, first)
		}
	}

	// Unseen context must not allocate either
	other := NewContext(4)
	other.Push(false, false, false, true)
	_ = tree.Probability(other, false)

	if tree.LogBlockProbability() != block || tree.Size() != size {
		t.Fatal("Probability() mutated the predictor")
	}
}

func TestLearnsDeterministicRule(t *testing.T) {
	// next bit = copy of the most recent context bit
	r := rand.New(rand.NewSource(3))
	tree := NewTree(8)
	ctx := NewContext(8)

	for i := 0; i < 2000; i++ {
		ctx.Reset()
		for j := 0; j < 8; j++ {
			ctx.Push(r.Intn(2) == 1)
		}
		tree.Train(ctx, ctx.Bit(0))
	}

	ctx.Reset()
	ctx.Push(false, true, true, false, false, true, false, true)
	if p := tree.Probability(ctx, true); p < 0.9 {
		t.Fatalf("p(copy bit) = %f, expected the rule to be learned", p)
	}

	// Sampling follows the probability
	if !tree.SampleBit(ctx, 0.5) {
		t.Fatal("expected a confident sample of 1")
	}
	if tree.SampleBit(ctx, 0.9999999) {
		t.Fatal("u close to 1 must sample 0 unless p(1) is ~1")
	}

	if lbp := tree.LogBlockProbability(); lbp >= 0 || math.IsNaN(lbp) {
		t.Fatalf("unexpected block log probability %f", lbp)
	}
}

func TestLogAdd(t *testing.T) {
	got := logAdd(math.Log(0.25), math.Log(0.5))
	if math.Abs(got-math.Log(0.75)) > 1e-12 {
		t.Fatalf("logAdd = %f, want %f", got, math.Log(0.75))
	}
	if logAdd(0, -1000) != 0 {
		t.Fatal("negligible term should be dropped")
	}
}
