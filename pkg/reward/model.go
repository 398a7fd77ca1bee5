package reward

import "github.com/IlikeChooros/go-hdagger/pkg/grid"

// Example is a single reward observation: taking Action while looking at Obs paid Reward.
// Weight scales both the loss and the update step; a zero weight makes the example a no-op.
type Example struct {
	Obs    grid.Observation
	Action int
	Reward float64
	Weight float64
}

// Builds a weight-1 example
func Unweighted(obs grid.Observation, action int, reward float64) Example {
	return Example{Obs: obs, Action: action, Reward: reward, Weight: 1}
}

type Model interface {
	Reward(action int, obs grid.Observation) float64
	// Learn from the examples in order, returns the (weighted) mean squared
	// error measured before each example's update
	BatchUpdate(dataset []Example) float64
	// Mean squared error over the dataset, 0 if it's empty
	BatchMSE(dataset []Example) float64
}

// Mean of the weighted squared errors of 'predict' over the dataset
func MeanSquaredError(dataset []Example, predict func(action int, obs grid.Observation) float64) float64 {
	if len(dataset) == 0 {
		return 0
	}
	sse := 0.0
	for _, ex := range dataset {
		err := ex.Reward - predict(ex.Action, ex.Obs)
		sse += err * err * ex.Weight
	}
	return sse / float64(len(dataset))
}
