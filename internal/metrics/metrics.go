// Package metrics exposes Prometheus collectors for the lobby console.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gatepass"

var (
	once sync.Once

	polls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visitor_polls_total",
			Help:      "Count of visitor list polls by result.",
		},
		[]string{"poller", "result"},
	)

	visitorsTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visitors_tracked",
			Help:      "Visitors in the most recent poll.",
		},
	)

	notificationsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Count of newly surfaced notifications by type.",
		},
		[]string{"type"},
	)

	unreadNotifications = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications_unread",
			Help:      "Unread notifications after the most recent derivation.",
		},
	)

	bulkActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_action_items_total",
			Help:      "Count of bulk action items by action and result.",
		},
		[]string{"action", "result"},
	)

	tokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Count of access token refresh attempts by result.",
		},
		[]string{"result"},
	)

	readStatePruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_state_pruned_total",
			Help:      "Rows of notification read-state removed by retention.",
		},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Console HTTP request latency.",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			polls,
			visitorsTracked,
			notificationsEmitted,
			unreadNotifications,
			bulkActions,
			tokenRefreshes,
			readStatePruned,
			requestDuration,
		)
	})
}

// IncPoll counts one poll by the named poller.
func IncPoll(poller string, ok bool) {
	polls.WithLabelValues(poller, result(ok)).Inc()
}

// SetVisitorsTracked records the size of the latest visitor list.
func SetVisitorsTracked(n int) {
	visitorsTracked.Set(float64(n))
}

// IncNotification counts a newly surfaced notification.
func IncNotification(kind string) {
	notificationsEmitted.WithLabelValues(kind).Inc()
}

// SetUnread records the current unread notification count.
func SetUnread(n int) {
	unreadNotifications.Set(float64(n))
}

// IncBulkItem counts one item of a bulk action.
func IncBulkItem(action string, ok bool) {
	bulkActions.WithLabelValues(action, result(ok)).Inc()
}

// IncTokenRefresh counts an access token refresh attempt.
func IncTokenRefresh(ok bool) {
	tokenRefreshes.WithLabelValues(result(ok)).Inc()
}

// AddPruned counts pruned read-state rows.
func AddPruned(n int64) {
	readStatePruned.Add(float64(n))
}

// ObserveRequest records a console request.
func ObserveRequest(method, status string, seconds float64) {
	requestDuration.WithLabelValues(method, status).Observe(seconds)
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
