// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"testing"
	"time"
)

// Eventually polls cond every millisecond until it holds or timeout passes.
func Eventually(tb testing.TB, timeout time.Duration, cond func() bool, format string, args ...any) {
	tb.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			tb.Fatalf(format, args...)
		}
		time.Sleep(time.Millisecond)
	}
}
