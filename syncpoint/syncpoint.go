// SPDX-License-Identifier: EPL-2.0

package syncpoint

import "sync"

// SyncPoint is a two-phase halt/resume rendezvous. One primary worker
// acknowledges a halt through WaitMain; every other background worker calls
// PassSecondary once per unit of work and is parked only after the primary
// has acknowledged.
type SyncPoint struct {
	ctl sync.Mutex // serialises Halt and Resume

	main      *gate
	reply     *gate
	secondary *gate
}

func New() *SyncPoint {
	return &SyncPoint{
		main:      newGate(),
		reply:     newGate(),
		secondary: newGate(),
	}
}

// Halt blocks until the primary worker has parked in WaitMain, then closes
// the secondary gate. It does nothing if already halted.
func (s *SyncPoint) Halt() {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	if s.main.isLocked() {
		return
	}

	// reply goes first so the primary cannot acknowledge before we wait
	s.reply.lock()
	s.main.lock()
	s.reply.waitForUnlock()

	s.secondary.lock()
}

// Resume releases the primary worker and every goroutine blocked in
// PassSecondary. It does nothing unless halted.
func (s *SyncPoint) Resume() {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	if !s.main.isLocked() {
		return
	}

	s.main.unlock(false)
	s.secondary.unlock(true)
}

// MainLocked reports whether a halt has been requested. The primary worker
// polls it and calls WaitMain when it returns true.
func (s *SyncPoint) MainLocked() bool {
	return s.main.isLocked()
}

// Halted reports whether secondary workers are currently being parked.
func (s *SyncPoint) Halted() bool {
	return s.secondary.isLocked()
}

// WaitMain acknowledges a halt and blocks until Resume.
func (s *SyncPoint) WaitMain() {
	s.reply.unlock(false)
	s.main.waitForUnlock()
}

// PassSecondary returns immediately unless halted, in which case it blocks
// until Resume.
func (s *SyncPoint) PassSecondary() {
	if !s.secondary.isLocked() {
		return
	}

	s.secondary.waitForUnlock()
}
