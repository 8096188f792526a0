// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize  = errors.New("dst size must be multiple of channels")
	ErrInvalidChannels = errors.New("source reports no channels")
	ErrUnknownFormat   = errors.New("no decoder registered for format")
	ErrInvalidPitch    = errors.New("pitch must be positive")
)
