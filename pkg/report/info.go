package report

import (
	"fmt"
	"strings"
)

// RunInfo describes one driver invocation, it names the output file and
// the run in the ledger
type RunInfo struct {
	ID string
	// e.g. "HDAggerMC.unrolled", "Random"
	Algorithm   string
	Exploration string
	Trial       int
	Note        string

	MovingBullseye bool
	// Benchmark runs only play a fixed policy, nothing is trained
	Benchmark   bool
	Hallucinate bool
	LearnReward bool

	Rollouts              int
	Depth                 int
	HallucinationDelay    int
	MaxHallucinationDepth int
	NeighborhoodWidth     int
	NeighborhoodHeight    int
	SamplesPerRound       int
	Rounds                int

	// Full configuration as JSON, stored with the run
	Config string
}

func (r RunInfo) FileName() string {
	var b strings.Builder
	b.WriteString("shooter")
	if r.MovingBullseye {
		b.WriteString(".movingSweetSpot")
	}
	if r.Note != "" {
		b.WriteString("." + r.Note)
	}
	b.WriteString("." + r.Algorithm)

	if r.Hallucinate {
		fmt.Fprintf(&b, ".hDelay%d", r.HallucinationDelay)
		if r.MaxHallucinationDepth >= 0 {
			fmt.Fprintf(&b, ".maxH%d", r.MaxHallucinationDepth)
		}
	}
	if r.Rollouts > 0 {
		fmt.Fprintf(&b, ".nRollouts%d.rolloutD%d", r.Rollouts, r.Depth)
	}
	if !r.Benchmark {
		fmt.Fprintf(&b, ".%sExplore.nbhd%dx%d.spb%d.numBatches%d",
			r.Exploration, r.NeighborhoodWidth, r.NeighborhoodHeight, r.SamplesPerRound, r.Rounds)
		if r.LearnReward {
			b.WriteString(".learnedReward")
		}
	}
	fmt.Fprintf(&b, ".t%d", r.Trial)
	return b.String()
}
