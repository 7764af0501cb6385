package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/flatshop/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct{}

func (stubEvent) Subject() string           { return "shop.test" }
func (stubEvent) Payload() ([]byte, error) { return []byte(`{}`), nil }

// scriptedPublisher returns the queued errors in order, then succeeds.
// Not thread-safe, should be used in sequential tests only.
type scriptedPublisher struct {
	callCount int
	errs      []error
}

func (p *scriptedPublisher) Publish(_ context.Context, _ Event) error {
	p.callCount++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

func Test_BreakerPublisher(t *testing.T) {
	errBroker := errors.New("broker unavailable")
	cfg := config.CircuitBreakerConfig{
		ConsecutiveFailures: 3,
		ErrorRatePercent:    60,
		OpenTimeout:         50 * time.Millisecond,
	}

	t.Run("Success - events pass through while closed", func(t *testing.T) {
		// given
		next := &scriptedPublisher{}
		publisher := NewBreakerPublisher("test", next, cfg)
		// when
		for range 5 {
			require.NoError(t, publisher.Publish(context.Background(), stubEvent{}))
		}
		// then
		assert.Equal(t, 5, next.callCount)
		assert.Equal(t, gobreaker.StateClosed, publisher.State())
	})

	t.Run("Opens after consecutive failures and fails fast", func(t *testing.T) {
		// given
		next := &scriptedPublisher{errs: []error{errBroker, errBroker, errBroker}}
		publisher := NewBreakerPublisher("test", next, cfg)
		// when
		for range 3 {
			assert.ErrorIs(t, publisher.Publish(context.Background(), stubEvent{}), errBroker)
		}
		err := publisher.Publish(context.Background(), stubEvent{})
		// then
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 3, next.callCount, "open breaker must not call the broker")
		assert.Equal(t, gobreaker.StateOpen, publisher.State())
	})

	t.Run("Recovers through half-open after the timeout", func(t *testing.T) {
		// given
		next := &scriptedPublisher{errs: []error{errBroker, errBroker, errBroker}}
		publisher := NewBreakerPublisher("test", next, cfg)
		for range 3 {
			_ = publisher.Publish(context.Background(), stubEvent{})
		}
		require.Equal(t, gobreaker.StateOpen, publisher.State())
		// when
		time.Sleep(2 * cfg.OpenTimeout)
		err := publisher.Publish(context.Background(), stubEvent{})
		// then
		require.NoError(t, err)
		assert.Equal(t, gobreaker.StateClosed, publisher.State())
	})
}

func Test_NopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), stubEvent{}))
}
