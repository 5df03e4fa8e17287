package translator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lingo-load/internal/detector"
	"lingo-load/internal/models"
	"lingo-load/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// breakerBackend wraps a Backend in a circuit breaker. A flapping backend
// trips open and is skipped by the router the same way a transient failure
// would be, without burning a request against a provider that is down.
type breakerBackend struct {
	inner Backend
	cb    *gobreaker.CircuitBreaker
}

func newBreakerBackend(inner Backend) Backend {
	name := inner.Profile().Identifier
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 3
		},
		// Only transient invocation failures count against the breaker;
		// cancellations and policy errors say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || !utils.IsRetryableError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"backend": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Backend circuit breaker state changed")
		},
	}
	return &breakerBackend{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerBackend) Profile() *models.BackendProfile {
	return b.inner.Profile()
}

func (b *breakerBackend) Translate(ctx context.Context, text, sourceLang, targetLang, promptHint string) (*BackendResult, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Translate(ctx, text, sourceLang, targetLang, promptHint)
	})
	if err != nil {
		return nil, translateBreakerError(b.Profile().Identifier, err)
	}
	return result.(*BackendResult), nil
}

func (b *breakerBackend) RewriteTone(ctx context.Context, text, tone string) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.RewriteTone(ctx, text, tone)
	})
	if err != nil {
		return "", translateBreakerError(b.Profile().Identifier, err)
	}
	return result.(string), nil
}

func (b *breakerBackend) DetectLanguage(ctx context.Context, text string) (detector.Result, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.DetectLanguage(ctx, text)
	})
	if err != nil {
		return detector.Result{}, translateBreakerError(b.Profile().Identifier, err)
	}
	return result.(detector.Result), nil
}

// translateBreakerError maps breaker rejections onto the transient category
// so the router falls through to the next backend in the pool.
func translateBreakerError(backendID string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &utils.CategorizedError{
			Type:        utils.ErrorCategoryConnection,
			Message:     "backend " + backendID + " circuit breaker is open",
			StatusCode:  http.StatusServiceUnavailable,
			ShouldRetry: true,
			Err:         err,
		}
	}
	return err
}
