package pool

import "github.com/iov-one/drip/errors"

var (
	// ErrNoRoute is returned when a channel has no registered route.
	ErrNoRoute = errors.Register(1200, "no route for channel")
)
