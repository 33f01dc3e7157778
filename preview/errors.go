// SPDX-License-Identifier: EPL-2.0

package preview

import "errors"

var (
	ErrInvalidChunkSize = errors.New("preview chunk size must be positive")
	ErrUnknownStrategy  = errors.New("unknown preview strategy")
	ErrInvalidLayout    = errors.New("preview needs a positive sample rate and channel count")

	ErrTooManyDecodeErrors = errors.New("too many undecodable packets")
)
