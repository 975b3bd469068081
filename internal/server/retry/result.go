package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
)

// Outcome classifies a single attempt.
type Outcome int

const (
	Ok Outcome = iota
	Retryable
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what an attempt reports back to the loop.
type Result struct {
	Outcome Outcome
	Err     error
}

func Success() Result { return Result{Outcome: Ok} }

func Retry(err error) Result { return Result{Outcome: Retryable, Err: err} }

func Stop(err error) Result { return Result{Outcome: Fatal, Err: err} }

// Classify turns the error of a put into a Result. A deadline or
// cancellation inside err is final only when ctx itself is done; otherwise it
// came from a per-exchange timeout and the put is worth repeating.
func Classify(ctx context.Context, err error) Result {
	switch {
	case err == nil:
		return Success()
	case ctx.Err() != nil:
		return Stop(err)
	case isContextErr(err):
		return Retry(err)
	case objectstore.IsRetryable(err):
		return Retry(err)
	default:
		return Stop(err)
	}
}

func (r Result) validate() Result {
	if r.Outcome != Ok && r.Err == nil {
		r.Err = errors.New("attempt failed without an error")
	}
	return r
}
