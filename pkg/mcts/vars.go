package mcts

import "time"

// Exploration constant of the UCB1 formula used by UCT. Rewards of the shooter
// game are in the tens, so it's much larger than the usual sqrt(2).
// Default is 4
var ExplorationParam float64 = 4

// Set the default exploration parameter used in UCB1 formula
func SetExplorationParam(c float64) {
	ExplorationParam = max(0.0, c)
}

// Values closer than this are considered equal, ties are broken uniformly at random
var TieEpsilon float64 = 1e-6

var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// Set custom seed generator function for random number generators of the searchers,
// by default uses current time in nanoseconds
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}
