package httpretry

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
)

// ErrCircuitOpen is returned without contacting the backend while the
// breaker is open.
var ErrCircuitOpen = errors.New("httpretry: circuit open")

// errServerStatus marks a 5xx answer as a failure for the breaker while
// the response itself is still handed to the caller.
var errServerStatus = errors.New("server error status")

// BreakerClient fails fast once the backend has failed repeatedly. A
// request counts as failed on a transport error or a 5xx status.
type BreakerClient struct {
	next HTTPDoer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerClient opens after failures consecutive failures and lets a
// single probe through after openFor.
func NewBreakerClient(next HTTPDoer, name string, failures int, openFor time.Duration) *BreakerClient {
	if failures <= 0 {
		failures = 5
	}
	threshold := uint32(failures)
	return &BreakerClient{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     openFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("httpretry: circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Do sends req through the breaker.
func (b *BreakerClient) Do(req *http.Request) (*http.Response, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		resp, err := b.next.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	switch {
	case errors.Is(err, errServerStatus):
		return out.(*http.Response), nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %s %s", ErrCircuitOpen, req.Method, req.URL.Path)
	case err != nil:
		return nil, err
	}
	return out.(*http.Response), nil
}

// State reports the breaker state for diagnostics.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}
