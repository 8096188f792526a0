// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

var (
	ErrUnknownSink   = errors.New("backend: unknown sink")
	ErrInvalidConfig = errors.New("backend: invalid configuration")
	ErrVoiceClosed   = errors.New("backend: voice closed")
	ErrForeignCue    = errors.New("backend: cue from another backend")
)
