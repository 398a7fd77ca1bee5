package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IlikeChooros/go-hdagger/pkg/dagger"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func hdaggerInfo() RunInfo {
	return RunInfo{
		Algorithm:             "HDAggerMC.unrolled",
		Exploration:           "random",
		Trial:                 3,
		Note:                  "test",
		MovingBullseye:        true,
		Hallucinate:           true,
		Rollouts:              50,
		Depth:                 15,
		HallucinationDelay:    10,
		MaxHallucinationDepth: 5,
		NeighborhoodWidth:     7,
		NeighborhoodHeight:    7,
		SamplesPerRound:       500,
		Rounds:                50,
	}
}

func TestFileName(t *testing.T) {
	cases := []struct {
		info RunInfo
		want string
	}{
		{
			hdaggerInfo(),
			"shooter.movingSweetSpot.test.HDAggerMC.unrolled.hDelay10.maxH5.nRollouts50.rolloutD15.randomExplore.nbhd7x7.spb500.numBatches50.t3",
		},
		{
			RunInfo{Algorithm: "Random", Benchmark: true, Trial: 0},
			"shooter.Random.t0",
		},
		{
			RunInfo{Algorithm: "PerfectModel", Benchmark: true, Rollouts: 200, Depth: 15, Trial: 1},
			"shooter.PerfectModel.nRollouts200.rolloutD15.t1",
		},
		{
			RunInfo{Algorithm: "DAggerMC.unrolled", Exploration: "optimal", Rollouts: 200, Depth: 15,
				NeighborhoodWidth: 7, NeighborhoodHeight: 7, SamplesPerRound: 10, Rounds: 2, LearnReward: true, Trial: 2},
			"shooter.DAggerMC.unrolled.nRollouts200.rolloutD15.optimalExplore.nbhd7x7.spb10.numBatches2.learnedReward.t2",
		},
	}
	for _, c := range cases {
		if got := c.info.FileName(); got != c.want {
			t.Errorf("FileName() = %q, want %q", got, c.want)
		}
	}
}

func TestWriterLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	if err := w.WriteRound(dagger.RoundResult{Return: 1.5, LogLikelihood: -3}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteReturn(-2); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "1.5\n-2\n" {
		t.Fatalf("output %q", got)
	}

	buf.Reset()
	w = NewWriter(&buf, true)
	if err := w.WriteRound(dagger.RoundResult{Return: 2, LogLikelihood: -10.25, RewardMSE: 0.5}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "2 -10.25 0.5\n" {
		t.Fatalf("output %q", got)
	}
}

func TestCreateFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inProgress")
	info := hdaggerInfo()
	w, err := CreateFile(dir, info)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	for i := range 3 {
		if err := w.WriteRound(dagger.RoundResult{Round: i, Return: float64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if w.Name() != filepath.Join(dir, info.FileName()) {
		t.Fatalf("file name %q", w.Name())
	}
	data, err := os.ReadFile(w.Name())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "0\n1\n2\n" {
		t.Fatalf("file contents %q", data)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := tempStore(t)
	info := hdaggerInfo()
	info.Config = `{"Rounds":50}`

	id, err := s.StartRun(info)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected a run id")
	}

	want := []dagger.RoundResult{
		{Round: 0, Return: -1.5, LogLikelihood: -20, Samples: 500, Duration: 1500 * time.Millisecond},
		{Round: 1, Return: 4.25, LogLikelihood: -12.5, RewardMSE: 0.25, Samples: 7500, Duration: 2 * time.Second},
	}
	// out of order on purpose
	for _, i := range []int{1, 0} {
		if err := s.RecordRound(id, want[i]); err != nil {
			t.Fatalf("RecordRound: %v", err)
		}
	}
	if err := s.RecordRound(id, want[0]); err == nil {
		t.Fatal("expected an error for a duplicate round")
	}
	if err := s.FinishRun(id); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := s.Rounds(id)
	if err != nil {
		t.Fatalf("Rounds: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rounds, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("round %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id || runs[0].Name != info.FileName() || runs[0].Config != info.Config {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].FinishedAt.IsZero() || runs[0].FinishedAt.Before(runs[0].StartedAt) {
		t.Fatalf("bad timestamps: %+v", runs[0])
	}
}

func TestStoreRejectsUnknownRun(t *testing.T) {
	s := tempStore(t)
	if err := s.RecordRound("missing", dagger.RoundResult{}); err == nil {
		t.Fatal("expected a foreign key error")
	}
	if err := s.FinishRun("missing"); err == nil {
		t.Fatal("expected an error finishing an unknown run")
	}
}

func TestStoreKeepsGivenRunID(t *testing.T) {
	s := tempStore(t)
	info := RunInfo{ID: "fixed-id", Algorithm: "Random", Benchmark: true}
	id, err := s.StartRun(info)
	if err != nil || id != "fixed-id" {
		t.Fatalf("StartRun = %q, %v", id, err)
	}
	if _, err := s.StartRun(info); err == nil {
		t.Fatal("expected an error for a duplicate run id")
	}
}

func TestChart(t *testing.T) {
	results := []dagger.RoundResult{{Return: 1}, {Return: 2.5}, {Return: 4}}
	series := ReturnSeries("H-DAgger-MC", results)
	if len(series.Values) != 3 || series.Values[1] != 2.5 {
		t.Fatalf("series %+v", series)
	}

	var buf bytes.Buffer
	if err := WriteChart(&buf, "shooter", series, Series{Name: "optimal", Values: []float64{11, 11}}); err != nil {
		t.Fatalf("WriteChart: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"H-DAgger-MC", "optimal", "echarts"} {
		if !strings.Contains(html, want) {
			t.Fatalf("chart html doesn't mention %q", want)
		}
	}

	path := filepath.Join(t.TempDir(), "charts", "returns.html")
	if err := SaveChart(path, "shooter", series); err != nil {
		t.Fatalf("SaveChart: %v", err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("chart file: %v", err)
	}
}
