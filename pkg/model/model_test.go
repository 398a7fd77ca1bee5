package model

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/IlikeChooros/go-hdagger/pkg/grid"
)

func smallConfig() Config {
	return Config{
		Width:              3,
		Height:             3,
		NeighborhoodWidth:  3,
		NeighborhoodHeight: 3,
		NumActions:         2,
		Order:              1,
	}
}

func newSmall(t *testing.T, seed int64) *Conv {
	t.Helper()
	m, err := New(smallConfig(), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// Action 1 lights the center pixel and pays 1, action 0 clears the grid
func toyStep(action int) (grid.Observation, float64) {
	obs := grid.New(9)
	if action == 1 {
		obs[4] = 1
		return obs, 1
	}
	return obs, 0
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	bad := []Config{
		{Width: 0, Height: 3, NeighborhoodWidth: 3, NeighborhoodHeight: 3, NumActions: 2, Order: 1},
		{Width: 3, Height: 3, NeighborhoodWidth: 0, NeighborhoodHeight: 3, NumActions: 2, Order: 1},
		{Width: 3, Height: 3, NeighborhoodWidth: 3, NeighborhoodHeight: 3, NumActions: 0, Order: 1},
		{Width: 3, Height: 3, NeighborhoodWidth: 3, NeighborhoodHeight: 3, NumActions: 2, Order: 0},
	}
	for _, cfg := range bad {
		if _, err := New(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("New(%v) error = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestBitsForActions(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4}
	for n, want := range cases {
		if got := bitsForActions(n); got != want {
			t.Errorf("bitsForActions(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestOffsetTableIsBijection(t *testing.T) {
	for _, size := range [][2]int{{7, 7}, {3, 5}, {1, 1}, {4, 2}} {
		w, h := size[0], size[1]
		table := buildOffsetTable(w, h)
		seen := make([]bool, w*h)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				slot := table[x][y]
				if slot < 0 || slot >= w*h || seen[slot] {
					t.Fatalf("%dx%d: slot %d at (%d, %d) is out of range or repeated", w, h, slot, x, y)
				}
				seen[slot] = true
			}
		}
		if table[w/2][h/2] != w*h-1 {
			t.Errorf("%dx%d: center slot = %d, want %d", w, h, table[w/2][h/2], w*h-1)
		}
		// Farther offsets come first
		if w == 7 && h == 7 && table[0][0] >= table[3][2] {
			t.Errorf("corner slot %d should precede near slot %d", table[0][0], table[3][2])
		}
	}
}

func TestSaveRetrieveRestoresHistory(t *testing.T) {
	m := newSmall(t, 1)
	for a := range 4 {
		obs, r := toyStep(a % 2)
		m.Update(a%2, obs, r, false, true)
	}
	before := m.History(0)
	m.SaveState()

	for range 10 {
		m.TakeAction(1)
	}
	if m.Len() != 14 {
		t.Fatalf("Len() = %d after 10 samples, want 14", m.Len())
	}
	m.RetrieveState()

	after := m.History(0)
	if len(after) != len(before) {
		t.Fatalf("history length = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i].Action != after[i].Action || !before[i].Obs.Equal(after[i].Obs) ||
			before[i].Reward != after[i].Reward || before[i].Terminal != after[i].Terminal {
			t.Fatalf("step %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestRetrieveDropsNewTrajectories(t *testing.T) {
	m := newSmall(t, 2)
	obs, r := toyStep(1)
	m.Update(1, obs, r, false, true)
	m.SaveState()
	m.Reset()
	m.TakeAction(0)
	if m.Trajectories() != 2 {
		t.Fatalf("Trajectories() = %d, want 2", m.Trajectories())
	}
	m.RetrieveState()
	if m.Trajectories() != 1 || m.Len() != 1 {
		t.Fatalf("after retrieve: %d trajectories, length %d, want 1 and 1", m.Trajectories(), m.Len())
	}

	cp := m.Checkpoint()
	m.TakeAction(1)
	m.TakeAction(0)
	m.Restore(cp)
	if m.Len() != 1 {
		t.Fatalf("Restore: length %d, want 1", m.Len())
	}
}

func TestBatchUpdateKeepsTrajectoryLength(t *testing.T) {
	m := newSmall(t, 3)
	obs, r := toyStep(1)
	m.Update(1, obs, r, false, true)

	m.BatchUpdate(nil)
	if m.Len() != 1 || m.Trajectories() != 1 {
		t.Fatalf("empty batch changed the history: len %d, trajectories %d", m.Len(), m.Trajectories())
	}

	next, _ := toyStep(1)
	before := m.Predict(1, next)
	dataset := make([]Example, 0, 20)
	for range 20 {
		prev, _ := toyStep(1)
		dataset = append(dataset, Example{
			Context: []Step{{Action: 1, Obs: prev, Reward: true}},
			Action:  1,
			Obs:     next,
			Reward:  true,
		})
	}
	m.BatchUpdate(dataset)
	if m.Len() != 1 || m.Trajectories() != 1 {
		t.Fatalf("batch changed the history: len %d, trajectories %d", m.Len(), m.Trajectories())
	}
	if after := m.Predict(1, next); after <= before {
		t.Fatalf("batch update didn't raise the probability: %f -> %f", before, after)
	}
}

func TestPredictIsStateless(t *testing.T) {
	m := newSmall(t, 4)
	for i := range 20 {
		obs, r := toyStep(i % 2)
		m.Update(i%2, obs, r, false, true)
	}
	obs, _ := toyStep(1)
	p1 := m.Predict(1, obs)
	r1 := m.PredictReward(1, obs, true)
	e1 := m.PredictTerminal(1, obs, false)
	p2 := m.Predict(1, obs)
	r2 := m.PredictReward(1, obs, true)
	e2 := m.PredictTerminal(1, obs, false)
	if p1 != p2 || r1 != r2 || e1 != e2 {
		t.Fatalf("repeated predictions differ: (%f %f %f) vs (%f %f %f)", p1, r1, e1, p2, r2, e2)
	}
	if m.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", m.Len())
	}
	if p := m.PredictReward(1, obs, true) + m.PredictReward(1, obs, false); p < 0.999 || p > 1.001 {
		t.Fatalf("reward probabilities sum to %f", p)
	}
}

func TestLearnsToyDynamics(t *testing.T) {
	m := newSmall(t, 5)
	rng := rand.New(rand.NewSource(5))
	for range 400 {
		a := rng.Intn(2)
		obs, r := toyStep(a)
		m.Update(a, obs, r, false, true)
	}

	for a := range 2 {
		obs, _ := toyStep(a)
		if p := m.Predict(a, obs); p < 0.5 {
			t.Errorf("Predict(%d) = %f, want >= 0.5", a, p)
		}
	}
	lit, _ := toyStep(1)
	if p := m.PredictReward(1, lit, true); p < 0.8 {
		t.Errorf("PredictReward = %f, want >= 0.8", p)
	}
	if p := m.PredictTerminal(1, lit, false); p < 0.8 {
		t.Errorf("PredictTerminal(false) = %f, want >= 0.8", p)
	}

	// Sampling follows the learned dynamics
	hits := 0
	for range 50 {
		obs, _, _ := m.Sample(1)
		if obs.Equal(lit) {
			hits++
		}
	}
	t.Logf("sampled the lit grid %d/50 times", hits)
	if hits < 25 {
		t.Errorf("sampled the expected grid only %d/50 times", hits)
	}
}

func TestSamplingIsDeterministicBySeed(t *testing.T) {
	a, b := newSmall(t, 9), newSmall(t, 9)
	for i := range 30 {
		obs, r := toyStep(i % 2)
		a.Update(i%2, obs, r, false, true)
		b.Update(i%2, obs, r, false, true)
	}
	for i := range 20 {
		oa, ra, ta := a.TakeAction(i % 2)
		ob, rb, tb := b.TakeAction(i % 2)
		if !oa.Equal(ob) || ra != rb || ta != tb {
			t.Fatalf("step %d: models with the same seed diverged", i)
		}
	}
}

func TestUpdateCopiesObservation(t *testing.T) {
	m := newSmall(t, 6)
	obs, r := toyStep(1)
	m.Update(1, obs, r, false, false)
	obs[4] = 0
	if got := m.History(0)[0].Obs[4]; got != 1 {
		t.Fatalf("stored observation aliases the caller's slice")
	}
}

func TestStackStepRecordsInNextLayer(t *testing.T) {
	s, err := NewStack(3, smallConfig(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	obs, r := toyStep(1)
	s.Observe(1, obs, r, false)
	s.SaveState()

	m := 0
	for range 4 {
		_, _, _, m = s.Step(m, 1)
	}
	if m != 2 {
		t.Fatalf("layer index = %d, want clamp at 2", m)
	}
	// Layer 0 is only sampled from, layer 1 gets one draw, layer 2 the rest
	if got := []int{s.At(0).Len(), s.At(1).Len(), s.At(2).Len()}; got[0] != 1 || got[1] != 2 || got[2] != 4 {
		t.Fatalf("layer lengths = %v, want [1 2 4]", got)
	}
	s.RetrieveState()
	for i := range s.Layers() {
		if s.At(i).Len() != 1 {
			t.Fatalf("layer %d not restored: len %d", i, s.At(i).Len())
		}
	}

	if s.Clamp(0) != 3 || s.Clamp(5) != 3 || s.Clamp(2) != 2 {
		t.Fatalf("unexpected clamp values %d %d %d", s.Clamp(0), s.Clamp(5), s.Clamp(2))
	}
	if _, err := NewStack(0, smallConfig(), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewStack(0) error = %v", err)
	}
}
