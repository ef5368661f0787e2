package vault

import "github.com/iov-one/drip/errors"

var (
	// ErrReleaseTransfer is returned when the reserve cannot pay out a
	// redeem. The failing transaction rolls back the burn as well.
	ErrReleaseTransfer = errors.Register(1300, "release transfer failed")
)
