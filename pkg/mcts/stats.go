package mcts

// Per-action statistics of a search node
type NodeStats struct {
	Total   int
	Counts  []int
	Returns []float64
}

func newNodeStats(numActions int) NodeStats {
	return NodeStats{
		Counts:  make([]int, numActions),
		Returns: make([]float64, numActions),
	}
}

// Mean return of 'action', 0 if it was never tried
func (s *NodeStats) Mean(action int) float64 {
	if s.Counts[action] == 0 {
		return 0
	}
	return s.Returns[action] / float64(s.Counts[action])
}

func (s *NodeStats) Add(action int, ret float64) {
	s.Total++
	s.Counts[action]++
	s.Returns[action] += ret
}

// Appends the never tried actions to 'buf'
func (s *NodeStats) Untried(buf []int) []int {
	for a, c := range s.Counts {
		if c == 0 {
			buf = append(buf, a)
		}
	}
	return buf
}

// Whether every action was tried at least once
func (s *NodeStats) Expanded() bool {
	for _, c := range s.Counts {
		if c == 0 {
			return false
		}
	}
	return true
}

// Mean returns of every action
func (s *NodeStats) Means() []float64 {
	means := make([]float64, len(s.Counts))
	for a := range means {
		means[a] = s.Mean(a)
	}
	return means
}
