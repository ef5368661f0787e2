package app

import (
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/sirupsen/logrus"
)

// Logging is a decorator to log every request and its result.
type Logging struct{}

var _ drip.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs the caller and the result of the down stack check.
func (l Logging) Check(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Checker) (*drip.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	logCall(ctx, "check", tx, start, err)
	return res, err
}

// Deliver logs the caller and the result of the down stack deliver.
func (l Logging) Deliver(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Deliverer) (*drip.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	logCall(ctx, "deliver", tx, start, err)
	return res, err
}

func logCall(ctx drip.Context, phase string, tx drip.Tx, start time.Time, err error) {
	logger := drip.GetLogger(ctx).WithFields(logrus.Fields{
		"phase":    phase,
		"path":     drip.GetPath(tx),
		"duration": time.Since(start),
	})
	if err != nil {
		code, _ := errors.ABCIInfo(err, false)
		logger.WithField("err", err).WithField("code", code).Error("rejected")
	} else {
		logger.Debug("applied")
	}
}
