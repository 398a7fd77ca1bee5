package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/IlikeChooros/go-hdagger/pkg/mcts"
	"github.com/IlikeChooros/go-hdagger/pkg/shooter"
)

func TestMain(m *testing.M) {
	mcts.SetSeedGeneratorFn(func() int64 {
		return 42
	})
	fmt.Printf("Using seed %d\n", mcts.SeedGeneratorFn())
	m.Run()
}

func newShooter(t *testing.T) *shooter.Game {
	t.Helper()
	g, err := shooter.New(3, 15, false)
	if err != nil {
		t.Fatalf("shooter.New: %v", err)
	}
	return g
}

type recordingListener struct {
	started  int
	episodes []EpisodeInfo
	summary  *Summary
}

func (r *recordingListener) OnStart(string, int)                { r.started++ }
func (r *recordingListener) OnFinishedEpisode(info EpisodeInfo) { r.episodes = append(r.episodes, info) }
func (r *recordingListener) OnEnd(summary Summary)              { r.summary = &summary }

func TestScriptedOptimalReturn(t *testing.T) {
	g := newShooter(t)
	listener := &recordingListener{}
	runner := NewRunner(g, shooter.NewOracle(g)).SetListener(listener)

	summary, err := runner.Run(context.Background(), NewScripted("optimal", shooter.Optimal), 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("summary: %s", summary)

	// deterministic game, every episode is the same
	if math.Abs(summary.Mean-11.0167) > 1e-3 || summary.StdDev > 1e-9 {
		t.Fatalf("mean %f stddev %f, want ~11.0167 and 0", summary.Mean, summary.StdDev)
	}
	if listener.started != 1 || len(listener.episodes) != 3 || listener.summary == nil {
		t.Fatalf("listener saw %d starts, %d episodes, summary %v", listener.started, len(listener.episodes), listener.summary)
	}
	if got := listener.episodes[2]; got.Episode != 2 || len(got.Actions) != runner.Steps {
		t.Fatalf("last episode info %+v", got)
	}
}

func TestRandomIsWorseThanOptimal(t *testing.T) {
	g := newShooter(t)
	runner := NewRunner(g, shooter.NewOracle(g))
	ctx := context.Background()

	random, err := runner.Run(ctx, NewRandom(shooter.NumActions, rand.New(rand.NewSource(3))), 20)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	optimal, err := runner.Run(ctx, NewScripted("optimal", shooter.Optimal), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("random %.3f +- %.3f, optimal %.3f", random.Mean, random.StdDev, optimal.Mean)
	if random.Mean >= optimal.Mean {
		t.Fatalf("random mean %f not below optimal %f", random.Mean, optimal.Mean)
	}
	if random.StdDev <= 0 {
		t.Fatalf("random returns have no spread: %v", random.Returns)
	}
}

func TestPerfectModelPlanningScores(t *testing.T) {
	g := newShooter(t)
	oracle := shooter.NewOracle(g)
	limits := mcts.DefaultLimits().SetCycles(20).SetDepth(15)
	policy := NewPerfectModel(g, oracle, rand.New(rand.NewSource(1)), limits)

	summary, err := NewRunner(g, oracle).Run(context.Background(), policy, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("perfect model: %s", summary)
	if summary.Mean <= 0 {
		t.Fatalf("perfect model return %f, want positive", summary.Mean)
	}
}

func TestMeanStdDev(t *testing.T) {
	if m, s := meanStdDev(nil); m != 0 || s != 0 {
		t.Fatalf("empty: %f %f", m, s)
	}
	if m, s := meanStdDev([]float64{4}); m != 4 || s != 0 {
		t.Fatalf("single: %f %f", m, s)
	}
	m, s := meanStdDev([]float64{1, 2, 3, 4})
	if m != 2.5 || math.Abs(s-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Fatalf("mean %f stddev %f", m, s)
	}
}

func TestRunCancelled(t *testing.T) {
	g := newShooter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(g, shooter.NewOracle(g)).Run(ctx, NewScripted("noop", func(int) int { return shooter.NoOp }), 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestProgressListener(t *testing.T) {
	var buf bytes.Buffer
	listener := NewMultiListener(NewProgressListener(&buf, termenv.WithProfile(termenv.Ascii)))
	recorder := &recordingListener{}
	listener.Add(recorder)

	g := newShooter(t)
	runner := NewRunner(g, shooter.NewOracle(g)).Setup(10, 0.9).SetListener(listener)
	if _, err := runner.Run(context.Background(), NewScripted("optimal", shooter.Optimal), 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"optimal: 2 episodes", "episode 1/2", "episode 2/2", "mean"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q doesn't contain %q", out, want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("ascii profile produced escape codes: %q", out)
	}
	if len(recorder.episodes) != 2 {
		t.Fatalf("second listener saw %d episodes", len(recorder.episodes))
	}
}
