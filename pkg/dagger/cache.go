package dagger

import "github.com/IlikeChooros/go-hdagger/pkg/grid"

// PolicyCache memoises planner decisions per observation, so every state gets
// a single action. Decisions go stale when the models change, Reset after every update.
type PolicyCache struct {
	actions map[uint64]int
	hits    int
	misses  int
}

func NewPolicyCache() *PolicyCache {
	return &PolicyCache{actions: make(map[uint64]int)}
}

func (c *PolicyCache) Get(obs grid.Observation) (int, bool) {
	a, ok := c.actions[obs.Hash()]
	return a, ok
}

func (c *PolicyCache) Put(obs grid.Observation, action int) {
	c.actions[obs.Hash()] = action
}

// Cached action for 'obs', calls 'decide' on a miss
func (c *PolicyCache) Action(obs grid.Observation, decide func() int) int {
	if a, ok := c.Get(obs); ok {
		c.hits++
		return a
	}
	c.misses++
	a := decide()
	c.Put(obs, a)
	return a
}

func (c *PolicyCache) Reset() {
	clear(c.actions)
	c.hits, c.misses = 0, 0
}

func (c *PolicyCache) Len() int {
	return len(c.actions)
}

// Hits and misses since the last Reset
func (c *PolicyCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
