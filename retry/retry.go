// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retry runs operations with bounded attempts and exponential backoff.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	// ErrInvalidMaxAttempts is returned when MaxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// Policy bounds a retried operation.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait after the first failure; it doubles on each retry.
	BaseDelay time.Duration
	// MaxDelay caps the wait between attempts. Zero means no cap.
	MaxDelay time.Duration
	// AttemptTimeout bounds each attempt. Zero means only ctx bounds it.
	AttemptTimeout time.Duration
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. WithBackoff returns the wrapped
// error immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// WithBackoff retries an operation with exponential backoff.
// Returns the error from the last attempt if all attempts fail, or the
// context's error if ctx ends first.
func WithBackoff(ctx context.Context, policy Policy, operation func(ctx context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = runAttempt(ctx, policy.AttemptTimeout, operation)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		var p *permanentError
		if errors.As(lastErr, &p) {
			return p.err
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", policy.MaxAttempts, "error", lastErr)

		if attempt == policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(policy.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

func runAttempt(ctx context.Context, timeout time.Duration, operation func(ctx context.Context) error) error {
	if timeout <= 0 {
		return operation(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return operation(attemptCtx)
}

// delay is BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
