package web

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func Test_RetryPolicy_Backoff_ShouldDoubleEachAttempt(t *testing.T) {
	policy := NewRetryPolicy(3)

	assert.Equal(t, time.Second, policy.Backoff(0))
	assert.Equal(t, 2*time.Second, policy.Backoff(1))
	assert.Equal(t, 4*time.Second, policy.Backoff(2))
}

func Test_RetryPolicy_Do_WhenAlwaysFails_ShouldMakeExactlyMaxAttempts(t *testing.T) {
	sleeps := &recordedSleeps{}
	policy := NewRetryPolicy(3)
	policy.sleep = sleeps.sleep

	calls := 0
	attempts, err := policy.Do(context.Background(), 0, func(int) error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.delays)
}

func Test_RetryPolicy_Do_WhenSecondAttemptSucceeds_ShouldStop(t *testing.T) {
	sleeps := &recordedSleeps{}
	policy := NewRetryPolicy(5)
	policy.sleep = sleeps.sleep

	attempts, err := policy.Do(context.Background(), 0, func(attempt int) error {
		if attempt == 0 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Len(t, sleeps.delays, 1)
}

func Test_RetryPolicy_Do_WhenExplicitAttemptsGiven_ShouldOverrideDefault(t *testing.T) {
	policy := NewRetryPolicy(5)
	policy.sleep = (&recordedSleeps{}).sleep

	calls := 0
	_, _ = policy.Do(context.Background(), 1, func(int) error {
		calls++
		return errors.New("boom")
	})

	assert.Equal(t, 1, calls)
}

func Test_RetryPolicy_Do_WhenContextCancelled_ShouldNotRetry(t *testing.T) {
	policy := NewRetryPolicy(3)
	policy.sleep = (&recordedSleeps{}).sleep
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := policy.Do(ctx, 0, func(int) error {
		calls++
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func Test_PolitenessPolicy_NextDelay_ShouldStayWithinRange(t *testing.T) {
	policy := NewPolitenessPolicy(2*time.Second, 5*time.Second, 0)

	for i := 0; i < 100; i++ {
		delay := policy.NextDelay()
		assert.GreaterOrEqual(t, delay, 2*time.Second)
		assert.LessOrEqual(t, delay, 5*time.Second)
	}
}

func Test_PolitenessPolicy_NextDelay_WhenRangeEmpty_ShouldReturnMin(t *testing.T) {
	policy := NewPolitenessPolicy(3*time.Second, 3*time.Second, 0)

	assert.Equal(t, 3*time.Second, policy.NextDelay())
}

func Test_PolitenessPolicy_Pause_ShouldSleepForNextDelay(t *testing.T) {
	sleeps := &recordedSleeps{}
	policy := NewPolitenessPolicy(time.Second, 2*time.Second, 0)
	policy.sleep = sleeps.sleep
	policy.random = func(int64) int64 { return int64(500 * time.Millisecond) }

	assert.NoError(t, policy.Pause(context.Background()))
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, sleeps.delays)
}

func Test_NewPolitenessPolicy_WhenRateGiven_ShouldCreateLimiter(t *testing.T) {
	assert.Nil(t, NewPolitenessPolicy(0, 0, 0).Limiter)
	assert.NotNil(t, NewPolitenessPolicy(0, 0, 1).Limiter)
}
