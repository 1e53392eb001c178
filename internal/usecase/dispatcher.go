package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Referent/internal/domain"
	"Referent/internal/ports"
)

const defaultCompletionTimeout = 60 * time.Second

// Dispatcher bounds a completion call in time and normalizes its outcome.
type Dispatcher struct {
	provider ports.CompletionProvider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDispatcher accepts a nil provider; every call then fails with domain.ErrConfiguration.
func NewDispatcher(provider ports.CompletionProvider, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultCompletionTimeout
	}
	return &Dispatcher{provider: provider, timeout: timeout, logger: log}
}

type completion struct {
	text string
	err  error
}

// Complete returns non-blank text or a classified error. It never waits longer
// than the configured timeout, even if the provider ignores cancellation.
func (d *Dispatcher) Complete(ctx context.Context, payload domain.PromptPayload) (string, error) {
	if d == nil || d.provider == nil {
		return "", fmt.Errorf("%w: completion provider is not configured", domain.ErrConfiguration)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	started := time.Now()
	done := make(chan completion, 1)
	go func() {
		text, err := d.provider.Complete(ctx, payload)
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case <-ctx.Done():
		res.err = ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) && !errors.Is(res.err, domain.ErrTimeout) {
			return "", fmt.Errorf("%w: no answer within %s", domain.ErrTimeout, d.timeout)
		}
		return "", res.err
	}
	if strings.TrimSpace(res.text) == "" {
		return "", domain.ErrEmptyResult
	}

	d.debug("completion received", "elapsed", time.Since(started), "chars", len(res.text))
	return res.text, nil
}

func (d *Dispatcher) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
