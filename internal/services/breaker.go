package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"lyricflow/internal/shared"
)

// BreakerTranslator wraps a [Translator] in a circuit breaker so a failing
// provider stops receiving traffic instead of burning the retry budget of
// every line.
type BreakerTranslator struct {
	inner   Translator
	breaker *gobreaker.CircuitBreaker[string]
}

// NewBreakerTranslator wraps inner. The breaker opens after five consecutive
// failures and half-opens after thirty seconds.
func NewBreakerTranslator(inner Translator) *BreakerTranslator {
	settings := gobreaker.Settings{
		Name:    inner.Name(),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &BreakerTranslator{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (b *BreakerTranslator) Name() string { return b.inner.Name() }

func (b *BreakerTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	result, err := b.breaker.Execute(func() (string, error) {
		return b.inner.Translate(ctx, text, targetLang)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: translator %s circuit open", shared.ErrServiceUnavailable, b.inner.Name())
		}
		return "", err
	}
	return result, nil
}
