// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrInvalidFadeTiming = errors.New("engine: duck fade-out must be shorter than fade-in")
	ErrInvalidConfig     = errors.New("engine: invalid configuration")
	ErrUnknownKind       = errors.New("engine: unknown channel kind")
)
