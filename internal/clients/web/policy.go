package web

import (
	"context"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
	"math/rand"
	"time"
)

type sleepFunc func(ctx context.Context, d time.Duration) error

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

// RetryPolicy waits BaseDelay * 2^attempt between failed attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	sleep       sleepFunc
}

func NewRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: time.Second, sleep: sleepContext}
}

func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Do runs fn until it succeeds, attempts run out or ctx is done.
// It returns the number of attempts made and the last error.
func (p RetryPolicy) Do(ctx context.Context, maxAttempts int, fn func(attempt int) error) (int, error) {
	if maxAttempts <= 0 {
		maxAttempts = p.MaxAttempts
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	attempts, _ := lo.AttemptWhile(maxAttempts, func(attempt int) (error, bool) {
		if attempt > 0 {
			if err := sleep(ctx, p.Backoff(attempt-1)); err != nil {
				lastErr = errors.Wrap(err, lastErr.Error())
				return lastErr, false
			}
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil, false
		}
		return lastErr, ctx.Err() == nil
	})

	return attempts, lastErr
}

// PolitenessPolicy spaces requests to one site: an optional rate limit before
// each request and a random pause after each successful one.
type PolitenessPolicy struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Limiter  *rate.Limiter
	sleep    sleepFunc
	random   func(n int64) int64
}

func NewPolitenessPolicy(minDelay, maxDelay time.Duration, requestsPerSecond float64) PolitenessPolicy {
	policy := PolitenessPolicy{MinDelay: minDelay, MaxDelay: maxDelay, sleep: sleepContext, random: rand.Int63n}
	if requestsPerSecond > 0 {
		policy.Limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return policy
}

func (p PolitenessPolicy) Wait(ctx context.Context) error {
	if p.Limiter == nil {
		return nil
	}
	return p.Limiter.Wait(ctx)
}

func (p PolitenessPolicy) Pause(ctx context.Context) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, p.NextDelay())
}

func (p PolitenessPolicy) NextDelay() time.Duration {
	spread := int64(p.MaxDelay - p.MinDelay)
	if spread <= 0 {
		return p.MinDelay
	}
	random := p.random
	if random == nil {
		random = rand.Int63n
	}
	return p.MinDelay + time.Duration(random(spread+1))
}
