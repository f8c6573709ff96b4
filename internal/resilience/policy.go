package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
)

// Class names one policy profile. Every externally-facing call runs under
// exactly one class.
type Class string

const (
	ClassSourceFetch Class = "source_fetch"
	ClassCache       Class = "cache"
	ClassPersistence Class = "persistence"
)

type ClassConfig struct {
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// InitialBackoff doubles on every retry.
	InitialBackoff time.Duration
	// BreakerFailures consecutive failures trip the breaker.
	BreakerFailures uint32
	// BreakerOpenFor is how long the breaker stays open before a half-open trial.
	BreakerOpenFor time.Duration
}

func DefaultConfigs() map[Class]ClassConfig {
	return map[Class]ClassConfig{
		ClassSourceFetch: {
			Timeout:         60 * time.Second,
			MaxRetries:      2,
			InitialBackoff:  2 * time.Second,
			BreakerFailures: 5,
			BreakerOpenFor:  30 * time.Second,
		},
		ClassCache: {
			Timeout:         10 * time.Second,
			MaxRetries:      2,
			InitialBackoff:  2 * time.Second,
			BreakerFailures: 5,
			BreakerOpenFor:  30 * time.Second,
		},
		ClassPersistence: {
			Timeout:         30 * time.Second,
			MaxRetries:      2,
			InitialBackoff:  2 * time.Second,
			BreakerFailures: 5,
			BreakerOpenFor:  30 * time.Second,
		},
	}
}

// Executor composes circuit breaker, retry and per-attempt timeout, outermost
// first, so an open breaker fails fast without paying any retry or timeout
// cost. Breaker state is shared across all callers of a class; gobreaker
// guards its own transitions.
type Executor struct {
	log      *logger.Logger
	configs  map[Class]ClassConfig
	breakers map[Class]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(baseLog *logger.Logger, configs map[Class]ClassConfig) *Executor {
	if configs == nil {
		configs = DefaultConfigs()
	}
	log := baseLog.With("component", "ResilienceExecutor")
	breakers := make(map[Class]*gobreaker.CircuitBreaker[any], len(configs))
	for class, cfg := range configs {
		threshold := cfg.BreakerFailures
		breakers[class] = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        string(class),
			MaxRequests: 1,
			Timeout:     cfg.BreakerOpenFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// Caller faults must not poison the breaker.
			IsSuccessful: func(err error) bool {
				return err == nil || errs.IsPermanent(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state change",
					"class", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return &Executor{log: log, configs: configs, breakers: breakers}
}

// Execute runs fn under the class's composed policy. When the breaker is open
// the call fails immediately with ErrCircuitOpen and fn is never invoked.
func (e *Executor) Execute(ctx context.Context, class Class, fn func(ctx context.Context) error) error {
	cfg, ok := e.configs[class]
	if !ok {
		return errs.Invalidf("unknown operation class %q", class)
	}
	br := e.breakers[class]
	_, err := br.Execute(func() (any, error) {
		return nil, e.retry(ctx, class, cfg, fn)
	})
	if errs.Is(err, gobreaker.ErrOpenState) || errs.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", errs.ErrCircuitOpen, class)
	}
	return err
}

func (e *Executor) retry(ctx context.Context, class Class, cfg ClassConfig, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = cfg.InitialBackoff << 4
	b.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if cfg.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		}
		defer cancel()
		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if errs.IsPermanent(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		e.log.Warn("retrying operation",
			"class", class, "attempt", attempt, "wait", wait.String(), "error", err)
	}
	return backoff.RetryNotify(op, backoff.WithMaxRetries(backoff.WithContext(b, ctx), cfg.MaxRetries), notify)
}

// Do is Execute for operations that return a value. Nothing is returned when
// the call fails, so partial results never escape.
func Do[T any](ctx context.Context, e *Executor, class Class, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := e.Execute(ctx, class, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
