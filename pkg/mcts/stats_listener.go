package mcts

type ListenerStats struct {
	Cycles     int
	Size       int
	MaxDepth   int
	TimeMs     int
	RootValues []float64
	RootVisits []int
	BestAction int
	StopReason StopReason
}

// Listener function callback, will receive current search statistics, like
// tree size or number of rollouts so far
type ListenerFunc func(ListenerStats)

type StatsListener struct {
	// called when 'max depth' increases
	onDepth ListenerFunc

	// called every N rollouts
	onCycle ListenerFunc
	nCycles int

	// called when the search stops
	onStop ListenerFunc
}

func NewStatsListener() StatsListener {
	return StatsListener{nCycles: 1}
}

func (listener *StatsListener) OnDepth(onDepth ListenerFunc) *StatsListener {
	listener.onDepth = onDepth
	return listener
}

// Attach a rollout counter callback, root statistics are copied on every call,
// so keep the interval large outside of debugging
func (listener *StatsListener) OnCycle(onCycle ListenerFunc) *StatsListener {
	listener.onCycle = onCycle
	return listener
}

func (listener *StatsListener) SetCycleInterval(n int) *StatsListener {
	if n < 1 {
		n = 1
	}
	listener.nCycles = n
	return listener
}

// Attach 'on search end' callback, makes 'StopReason' available in the stats
func (listener *StatsListener) OnStop(onStop ListenerFunc) *StatsListener {
	listener.onStop = onStop
	return listener
}

func (listener *StatsListener) invokeCycle(cycles int, stats func() ListenerStats) {
	if listener.onCycle != nil && listener.nCycles > 0 && cycles%listener.nCycles == 0 {
		listener.onCycle(stats())
	}
}

func (listener *StatsListener) invokeDepth(stats func() ListenerStats) {
	if listener.onDepth != nil {
		listener.onDepth(stats())
	}
}

func (listener *StatsListener) invokeStop(stats func() ListenerStats) {
	if listener.onStop != nil {
		listener.onStop(stats())
	}
}
