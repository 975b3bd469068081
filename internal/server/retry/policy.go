package retry

import (
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	DefaultMaxAttempts = 10
	DefaultBaseDelay   = 10 * time.Second
)

// Policy bounds an upload: at most MaxAttempts puts, waiting
// attempt*BaseDelay after each failed one. MaxDelay caps a single wait when
// positive.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// backoff yields the wait after each failed attempt and stops once
// MaxAttempts-1 waits were handed out, so the last attempt is never followed
// by a sleep. A fresh value is needed per upload.
func (p Policy) backoff() goretry.Backoff {
	var n int64
	base := p.BaseDelay
	var b goretry.Backoff = goretry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return time.Duration(n) * base, false
	})
	if p.MaxDelay > 0 && base > 0 {
		b = goretry.WithCappedDuration(p.MaxDelay, b)
	}
	return goretry.WithMaxRetries(uint64(p.attempts()-1), b)
}

// schedule lists the waits a fully failing upload would go through.
func (p Policy) schedule() []time.Duration {
	b := p.backoff()
	var out []time.Duration
	for {
		d, stop := b.Next()
		if stop {
			return out
		}
		out = append(out, d)
	}
}
