// SPDX-License-Identifier: EPL-2.0

package control

import "errors"

var (
	ErrEmpty          = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("bad arguments")
	ErrUnterminated   = errors.New("unterminated quote")
	ErrFailed         = errors.New("operation failed")
	ErrNoEffects      = errors.New("backend has no filters or effects")
)
