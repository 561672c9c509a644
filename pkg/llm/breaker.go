package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ResilientClient wraps a Completer with a circuit breaker so a failing
// completion endpoint stops absorbing report-generation time quickly.
type ResilientClient struct {
	inner   Completer
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientClient creates a circuit-breaker wrapper around the given client.
func NewResilientClient(inner Completer, logger *logrus.Logger) *ResilientClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-completions",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientClient{
		inner:   inner,
		breaker: breaker,
		logger:  logger,
	}
}

// Complete executes the completion call through the circuit breaker.
func (r *ResilientClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.Complete(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("completion call failed: %w", err)
	}
	return result.(*CompletionResult), nil
}
