package dagger

// Whether a hallucinated example of depth 'depth' is used in round 'round':
// every 'delay' rounds one more depth comes in, up to 'maxDepth' (negative means no cap)
func Included(round, depth, delay, maxDepth int) bool {
	return round >= depth*delay && (maxDepth < 0 || depth <= maxDepth)
}

// Number of depth-specialized models the planner may use in round 'round',
// 0 means all of them
func ModelDepth(round, delay int) int {
	if delay <= 0 {
		return 0
	}
	return round/delay + 1
}
