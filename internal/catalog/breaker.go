// internal/catalog/breaker.go
package catalog

import (
	"context"
	stderrors "errors"
	"time"

	"cinema-sage/internal/common/errors"
	"cinema-sage/internal/common/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerSettings configures BreakerGateway.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// BreakerGateway stops calling the catalog after a run of consecutive
// transient failures, and probes it again once OpenTimeout has elapsed.
type BreakerGateway struct {
	next   Gateway
	cb     *gobreaker.CircuitBreaker[string]
	name   string
	logger Logger
}

func NewBreakerGateway(next Gateway, settings BreakerSettings, log Logger) *BreakerGateway {
	if settings.Name == "" {
		settings.Name = "tmdb"
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	metrics.BreakerState.WithLabelValues(settings.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		// A 4xx is the caller's problem, not the catalog's health.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("catalog circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerGateway{
		next:   next,
		cb:     cb,
		name:   settings.Name,
		logger: log,
	}
}

func (b *BreakerGateway) Fetch(ctx context.Context, query string) (string, error) {
	body, err := b.cb.Execute(func() (string, error) {
		return b.next.Fetch(ctx, query)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", errors.NewCatalogCircuitOpenError(err)
		}
		return "", err
	}
	return body, nil
}

// State reports the breaker state, mainly for health output and tests.
func (b *BreakerGateway) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
