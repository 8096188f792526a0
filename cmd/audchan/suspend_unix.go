// SPDX-License-Identifier: EPL-2.0

//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan"
)

// suspendOnSignal suspends on SIGUSR1 and resumes on SIGUSR2. It resumes
// before returning so the dispatcher can observe cancellation.
func suspendOnSignal(ctx context.Context, sys *audchan.System, log zerolog.Logger) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			sys.SyncPoint().Resume()
			return nil
		case s := <-sig:
			var err error
			if s == syscall.SIGUSR1 {
				err = sys.Suspend()
			} else {
				err = sys.Resume()
			}
			if err != nil {
				log.Warn().Err(err).Stringer("signal", s).Msg("audio output")
			}
		}
	}
}
