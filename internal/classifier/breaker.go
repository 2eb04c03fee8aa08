package classifier

import (
	"context"
	"errors"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
)

// BreakerCompleter skips the LLM while it keeps failing, so submissions fall back
// immediately instead of waiting out the timeout on every call.
type BreakerCompleter struct {
	next    Completer
	breaker *circuitbreaker.Breaker
}

// NewBreakerCompleter wraps next. Caller cancellation does not count as a failure.
func NewBreakerCompleter(next Completer, cfg circuitbreaker.Config, log infralogger.Logger) *BreakerCompleter {
	if log == nil {
		log = infralogger.NewNop()
	}
	cfg.IsFailure = func(err error) bool {
		return err != nil && !errors.Is(err, context.Canceled)
	}
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		log.Warn("LLM circuit breaker state changed",
			infralogger.String("from", from.String()),
			infralogger.String("to", to.String()),
		)
	}
	return &BreakerCompleter{next: next, breaker: circuitbreaker.New(cfg)}
}

// Complete calls the wrapped completer unless the circuit is open.
func (c *BreakerCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	var reply string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		reply, callErr = c.next.Complete(ctx, prompt)
		return callErr
	})
	return reply, err
}

// State reports the breaker state.
func (c *BreakerCompleter) State() circuitbreaker.State {
	return c.breaker.State()
}
