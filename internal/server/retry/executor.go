// Package retry runs a single object put with bounded, linearly growing
// waits between failed attempts.
package retry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/archdrive/internal/common"
	"github.com/dmitrijs2005/archdrive/internal/logging"
	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
)

// Putter is the part of objectstore.Store the executor needs.
type Putter interface {
	Put(ctx context.Context, in objectstore.PutInput) error
}

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// AttemptFunc performs attempt number n (1-based).
type AttemptFunc func(ctx context.Context, n int) Result

// Attempt describes a finished attempt. Delay is the wait scheduled before
// the next one, zero when none follows.
type Attempt struct {
	Key     string
	Number  int
	Outcome Outcome
	Err     error
	Delay   time.Duration
}

type Executor struct {
	store     Putter
	policy    Policy
	sleep     SleepFunc
	onAttempt func(Attempt)
	logger    logging.Logger
}

type Option func(*Executor)

// WithSleep replaces the timer based wait.
func WithSleep(fn SleepFunc) Option {
	return func(e *Executor) { e.sleep = fn }
}

// WithObserver registers a hook called after every attempt.
func WithObserver(fn func(Attempt)) Option {
	return func(e *Executor) { e.onAttempt = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Executor) { e.logger = l.With("module", "upload_executor") }
}

func NewExecutor(store Putter, policy Policy, opts ...Option) *Executor {
	e := &Executor{
		store:  store,
		policy: policy,
		sleep:  sleepContext,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Upload buffers body and puts it under key, retrying per the policy. Every
// attempt sends the full payload from the start. It returns the number of
// bytes stored.
func (e *Executor) Upload(ctx context.Context, key string, body io.Reader, contentType string) (int64, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return 0, fmt.Errorf("read payload: %w", err)
	}
	size := int64(len(data))

	_, err = e.Run(ctx, key, func(ctx context.Context, n int) Result {
		return Classify(ctx, e.store.Put(ctx, objectstore.PutInput{
			Key:           key,
			Body:          bytes.NewReader(data),
			ContentType:   contentType,
			ContentLength: size,
		}))
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

// Run drives fn until it succeeds, fails fatally, the attempts run out or
// ctx is cancelled. It returns the number of attempts made.
func (e *Executor) Run(ctx context.Context, key string, fn AttemptFunc) (int, error) {
	backoff := e.policy.backoff()

	for n := 1; ; n++ {
		res := fn(ctx, n).validate()

		if res.Outcome == Ok {
			e.observe(Attempt{Key: key, Number: n, Outcome: Ok})
			if n > 1 {
				e.logger.Info(ctx, "upload succeeded after retries", "key", key, "attempts", n)
			}
			return n, nil
		}

		if res.Outcome == Fatal {
			e.observe(Attempt{Key: key, Number: n, Outcome: Fatal, Err: res.Err})
			e.logger.Warn(ctx, "upload failed", "key", key, "attempt", n, "error", res.Err)
			if ctx.Err() != nil {
				return n, &common.UploadError{Kind: common.ErrorUploadAborted, Attempts: n, Err: res.Err}
			}
			return n, fmt.Errorf("upload %q: %w", key, res.Err)
		}

		delay, stop := backoff.Next()
		if stop {
			e.observe(Attempt{Key: key, Number: n, Outcome: Retryable, Err: res.Err})
			e.logger.Error(ctx, "upload attempts exhausted", "key", key, "attempts", n, "error", res.Err)
			return n, &common.UploadError{Kind: common.ErrorUploadExhausted, Attempts: n, Err: res.Err}
		}

		e.observe(Attempt{Key: key, Number: n, Outcome: Retryable, Err: res.Err, Delay: delay})
		e.logger.Warn(ctx, "upload attempt failed, retrying",
			"key", key, "attempt", n, "max_attempts", e.policy.attempts(), "delay", delay, "error", res.Err)

		if err := e.sleep(ctx, delay); err != nil {
			return n, &common.UploadError{Kind: common.ErrorUploadAborted, Attempts: n, Err: err}
		}
	}
}

func (e *Executor) observe(a Attempt) {
	if e.onAttempt != nil {
		e.onAttempt(a)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
