package wasm

import "sync"

// revisionGate serialises renders and drops snapshots that are not newer
// than the last one drawn. The initial render and controller notifications
// arrive on different goroutines.
type revisionGate struct {
	mu    sync.Mutex
	last  uint64
	drawn bool
}

// run calls draw when rev is newer than anything drawn so far and reports
// whether it did.
func (g *revisionGate) run(rev uint64, draw func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.drawn && rev <= g.last {
		return false
	}
	g.drawn = true
	g.last = rev
	draw()
	return true
}
