package app

import "sync"

// pairGuard admits one running settlement per key.
type pairGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newPairGuard() *pairGuard {
	return &pairGuard{running: make(map[string]struct{})}
}

// acquire claims key. The returned release must be called when done.
func (g *pairGuard) acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.running[key]; busy {
		return nil, false
	}
	g.running[key] = struct{}{}

	return func() {
		g.mu.Lock()
		delete(g.running, key)
		g.mu.Unlock()
	}, true
}
