package library

import "sync"

// flightGuard tracks in-progress scrapes so concurrent requests for the
// same movie are rejected instead of queued.
type flightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newFlightGuard() *flightGuard {
	return &flightGuard{active: make(map[string]struct{})}
}

// acquire reserves the id, returning false if a scrape already holds it.
func (g *flightGuard) acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[id]; busy {
		return false
	}
	g.active[id] = struct{}{}
	return true
}

func (g *flightGuard) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, id)
}
