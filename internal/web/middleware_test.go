package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFailureLimiterForgetsExpiredIPs(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	fl := newFailureLimiter()
	fl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		fl.record("10.0.0.1")
	}
	fl.record("10.0.0.2")
	assert.Len(t, fl.attempts, 2)

	now = now.Add(failureWindow + time.Second)
	fl.record("10.0.0.3")
	assert.Len(t, fl.attempts, 1)
	assert.Contains(t, fl.attempts, "10.0.0.3")

	now = now.Add(failureWindow + time.Second)
	assert.False(t, fl.limited("10.0.0.3"))
	assert.Empty(t, fl.attempts)
}

func TestFailureLimiterWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	fl := newFailureLimiter()
	fl.now = func() time.Time { return now }

	for i := 0; i < failureMaxFail; i++ {
		assert.False(t, fl.record("10.0.0.1"))
	}
	assert.True(t, fl.record("10.0.0.1"))
	assert.True(t, fl.limited("10.0.0.1"))
	assert.False(t, fl.limited("10.0.0.9"))

	now = now.Add(failureWindow)
	assert.False(t, fl.limited("10.0.0.1"))
}
