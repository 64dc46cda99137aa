package throttle

import (
	"time"

	"eve-craftcost/internal/fetch"
)

// The throttled source publishes a hard limit of one request per five
// seconds; the margin absorbs clock skew between us and the server.
const (
	minInterval  = 5 * time.Second
	safetyMargin = 100 * time.Millisecond
)

type job struct {
	url  string
	ttl  time.Duration
	dst  any
	done chan error
}

// Gateway serializes requests to a single rate-limited data source through
// one worker. Calls complete in submission order; a failed call reports its
// error to its own caller only and never stops the worker.
type Gateway struct {
	client   fetch.Getter
	jobs     chan job
	interval time.Duration
}

// NewGateway wraps client with the source's published rate limit and starts
// the worker.
func NewGateway(client fetch.Getter) *Gateway {
	return newGateway(client, minInterval+safetyMargin)
}

func newGateway(client fetch.Getter, interval time.Duration) *Gateway {
	g := &Gateway{
		client:   client,
		jobs:     make(chan job, 64),
		interval: interval,
	}
	go g.run()
	return g
}

// GetJSON queues the request and blocks until the worker has executed it.
func (g *Gateway) GetJSON(url string, ttl time.Duration, dst any) error {
	done := make(chan error, 1)
	g.jobs <- job{url: url, ttl: ttl, dst: dst, done: done}
	return <-done
}

func (g *Gateway) run() {
	var lastCall time.Time
	for j := range g.jobs {
		if !lastCall.IsZero() {
			if wait := g.interval - time.Since(lastCall); wait > 0 {
				time.Sleep(wait)
			}
		}
		err := g.client.GetJSON(j.url, j.ttl, j.dst)
		// Stamped after the call resolves, success or failure, so failures
		// are spaced out the same as successes.
		lastCall = time.Now()
		j.done <- err
	}
}
