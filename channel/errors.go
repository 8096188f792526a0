// SPDX-License-Identifier: EPL-2.0

package channel

import "errors"

var (
	ErrNoSlot      = errors.New("channel: no such slot")
	ErrInvalidSize = errors.New("channel: invalid group size")
	ErrPlayFailed  = errors.New("channel: cannot start playback")
)
