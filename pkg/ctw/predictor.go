package ctw

// Predictor is an online model of the next bit of a sequence given a fixed-length
// binary context. The caller builds the context (Reset, then Push the full window)
// before every Train/Probability/SampleBit call.
type Predictor interface {
	// Length of the context the predictor conditions on
	ContextLen() int
	// Learn that 'bit' followed the context
	Train(ctx *Context, bit bool)
	// Probability of 'bit' following the context, doesn't change the predictor
	Probability(ctx *Context, bit bool) float64
	// Draw a bit given a uniform number from [0, 1)
	SampleBit(ctx *Context, u float64) bool
	// Natural logarithm of the probability assigned to everything trained so far
	LogBlockProbability() float64
}
