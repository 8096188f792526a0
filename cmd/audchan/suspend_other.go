// SPDX-License-Identifier: EPL-2.0

//go:build !unix

package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan"
)

func suspendOnSignal(ctx context.Context, _ *audchan.System, _ zerolog.Logger) error {
	<-ctx.Done()
	return nil
}
