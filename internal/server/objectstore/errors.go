package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/archdrive/internal/common"
)

// translate maps an SDK error onto the common taxonomy, keeping the original
// error in the chain. Context errors pass through unchanged only when the
// caller's ctx is done; a deadline hit by a single exchange is a transport
// failure.
func translate(ctx context.Context, err error, op, key string) error {
	if err == nil {
		return nil
	}
	switch {
	case isNotFound(err):
		return fmt.Errorf("%s %q: %w", op, key, common.ErrorNotFound)
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return fmt.Errorf("%s %q: %w", op, key, err)
	default:
		return fmt.Errorf("%s %q: %w: %w", op, key, common.ErrorTransport, err)
	}
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	if status, ok := StatusCode(err); ok {
		return status == http.StatusNotFound
	}
	return false
}

// StatusCode extracts the HTTP status of a failed store call, if the error
// chain carries one.
func StatusCode(err error) (int, bool) {
	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		return statusErr.HTTPStatusCode(), true
	}
	return 0, false
}

// IsRetryable reports whether a failed put is worth repeating, judged from
// the error alone. Callers that still hold a live context should treat
// deadline errors as retryable themselves. Cancellation, missing objects, invalid input and client-side 4xx responses (other than
// 408 and 429) are final; server errors, throttling and anything without an
// HTTP status (dropped connections, resets, timeouts on the wire) are retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, common.ErrorInvalidInput) || errors.Is(err, common.ErrorNotFound) {
		return false
	}
	if status, ok := StatusCode(err); ok {
		switch {
		case status >= http.StatusInternalServerError:
			return true
		case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
			return true
		case status >= http.StatusBadRequest:
			return false
		}
	}
	return true
}
