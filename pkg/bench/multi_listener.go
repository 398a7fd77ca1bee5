package bench

// Fans the runner's events out to several listeners, in order
type MultiListener struct {
	listeners []ListenerLike
}

func NewMultiListener(listeners ...ListenerLike) *MultiListener {
	return &MultiListener{listeners: listeners}
}

func (m *MultiListener) Add(listener ListenerLike) {
	m.listeners = append(m.listeners, listener)
}

func (m *MultiListener) OnStart(policy string, episodes int) {
	for _, l := range m.listeners {
		l.OnStart(policy, episodes)
	}
}

func (m *MultiListener) OnFinishedEpisode(info EpisodeInfo) {
	for _, l := range m.listeners {
		l.OnFinishedEpisode(info)
	}
}

func (m *MultiListener) OnEnd(summary Summary) {
	for _, l := range m.listeners {
		l.OnEnd(summary)
	}
}
