package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(bulkActions.WithLabelValues("checkin", "error"))
	IncBulkItem("checkin", false)
	assert.Equal(t, before+1, testutil.ToFloat64(bulkActions.WithLabelValues("checkin", "error")))

	SetUnread(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(unreadNotifications))

	beforePoll := testutil.ToFloat64(polls.WithLabelValues("lobby", "ok"))
	IncPoll("lobby", true)
	assert.Equal(t, beforePoll+1, testutil.ToFloat64(polls.WithLabelValues("lobby", "ok")))
}
