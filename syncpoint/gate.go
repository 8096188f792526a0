// SPDX-License-Identifier: EPL-2.0

package syncpoint

import "sync"

// gate is a latch that goroutines can wait on until it is opened.
type gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	locked bool
}

func newGate() *gate {
	g := &gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *gate) lock() {
	g.mu.Lock()
	g.locked = true
	g.mu.Unlock()
}

// unlock opens the gate, waking one waiter, or all of them when multi is set.
func (g *gate) unlock(multi bool) {
	g.mu.Lock()
	g.locked = false
	if multi {
		g.cond.Broadcast()
	} else {
		g.cond.Signal()
	}
	g.mu.Unlock()
}

func (g *gate) isLocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}

func (g *gate) waitForUnlock() {
	g.mu.Lock()
	for g.locked {
		g.cond.Wait()
	}
	g.mu.Unlock()
}
