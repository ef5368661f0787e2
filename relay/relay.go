/*
Package relay carries payloads between replicas.

A relay watches delivery results on the source side for published
payloads and submits them to the connected destination in channel order.
Delivery is at least once: the destination's sequence guard rejects any
redelivery, which the relay treats as confirmation. A payload the
destination refuses for any other reason stays queued at the head of its
channel, so ordering is never violated.
*/
package relay

import (
	"sort"
	"sync"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/x/pool"
	"github.com/sirupsen/logrus"
)

// Sink submits a message to a destination replica. How the message is
// wrapped into a transaction is up to the application.
type Sink func(msg drip.Msg) (*drip.DeliverResult, error)

// Relay queues outbound payloads per channel and pushes them to the
// connected sinks in order. Safe for concurrent use.
type Relay struct {
	mu        sync.Mutex
	sinks     map[string]Sink
	queues    map[string][]*pool.Payload
	logger    logrus.FieldLogger
	redeliver int
}

// New returns an empty relay. A nil logger discards everything.
func New(logger logrus.FieldLogger) *Relay {
	if logger == nil {
		logger = drip.DefaultLogger
	}
	return &Relay{
		sinks:  make(map[string]Sink),
		queues: make(map[string][]*pool.Payload),
		logger: logger,
	}
}

// Connect routes payloads of the given channel to the sink. Connecting a
// channel twice replaces the sink.
func (r *Relay) Connect(channel string, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[channel] = sink
}

// Redeliver makes every payload be submitted n extra times after the
// first success. Used to exercise the destination's replay protection.
func (r *Relay) Redeliver(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redeliver = n
}

// Collect scans a delivery result for published payloads and queues them
// for their channels.
func (r *Relay) Collect(res *drip.DeliverResult) {
	if res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tag := range res.Tags {
		if string(tag.Key) != pool.PayloadTagKey {
			continue
		}
		var p pool.Payload
		if err := p.Unmarshal(tag.Value); err != nil {
			r.logger.WithError(err).Error("drop malformed payload")
			continue
		}
		r.queues[p.Channel] = append(r.queues[p.Channel], &p)
		r.logger.WithFields(logrus.Fields{
			"channel":  p.Channel,
			"sequence": p.Sequence,
		}).Debug("payload queued")
	}
}

// Flush drains every queue. A payload rejected as a duplicate counts as
// delivered. Any other rejection leaves the payload and everything behind
// it queued and is reported, other channels are still flushed.
func (r *Relay) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels := make([]string, 0, len(r.queues))
	for ch := range r.queues {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	var errs error
	for _, ch := range channels {
		if err := r.flushChannel(ch); err != nil {
			errs = errors.Append(errs, errors.Wrap(err, ch))
		}
	}
	return errs
}

// Pending returns the number of queued payloads over all channels.
func (r *Relay) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for _, q := range r.queues {
		n += len(q)
	}
	return n
}

func (r *Relay) flushChannel(channel string) error {
	sink, ok := r.sinks[channel]
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "channel not connected")
	}
	queue := r.queues[channel]
	for len(queue) > 0 {
		p := queue[0]
		if err := r.submit(sink, p); err != nil {
			r.queues[channel] = queue
			return err
		}
		queue = queue[1:]
	}
	delete(r.queues, channel)
	return nil
}

func (r *Relay) submit(sink Sink, p *pool.Payload) error {
	log := r.logger.WithFields(logrus.Fields{
		"channel":  p.Channel,
		"sequence": p.Sequence,
	})
	for attempt := 0; attempt <= r.redeliver; attempt++ {
		_, err := sink(&pool.ReceiveMsg{Payload: p})
		switch {
		case err == nil:
			log.Debug("payload delivered")
		case errors.ErrDuplicate.Is(err):
			// already accepted, a redelivery changes nothing
			log.Debug("payload confirmed")
		default:
			log.WithError(err).Error("payload rejected")
			return err
		}
	}
	return nil
}
