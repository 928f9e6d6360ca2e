package emailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

const (
	timeInterval = time.Duration(30) * time.Second
	timeTimeOut  = time.Duration(15) * time.Second

	repeatNumber = 5
)

// BreakerSender stops calling a failing provider for a while after
// repeatNumber consecutive failures. It never retries.
type BreakerSender struct {
	cb      *gobreaker.CircuitBreaker
	wrapped Sender
}

func NewBreakerSender(wrapped Sender) *BreakerSender {
	settings := gobreaker.Settings{
		Name:        wrapped.Provider(),
		MaxRequests: 1,
		Interval:    timeInterval,
		Timeout:     timeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= repeatNumber
		},
	}
	return &BreakerSender{
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerSender) Provider() string {
	return b.wrapped.Provider()
}

func (b *BreakerSender) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.wrapped.Send(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("%s unavailable: %w", b.Provider(), err)
	}
	return nil
}

func (b *BreakerSender) State() gobreaker.State {
	return b.cb.State()
}
