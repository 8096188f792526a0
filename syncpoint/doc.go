// SPDX-License-Identifier: EPL-2.0

// Package syncpoint freezes background goroutines while the application is
// suspended.
//
// The controller calls Halt and later Resume. A single primary worker polls
// MainLocked and parks in WaitMain; Halt does not return until it has done
// so. Only then is the secondary gate closed, so the remaining workers, such
// as the ducking watchdog, park in PassSecondary before their next unit of
// work and never observe state the primary was halfway through changing.
//
//	sp := syncpoint.New()
//	go func() {
//	    for {
//	        if sp.MainLocked() {
//	            sp.WaitMain()
//	        }
//	        doPrimaryWork()
//	    }
//	}()
//	sp.Halt()
//	// ... application suspended ...
//	sp.Resume()
package syncpoint
