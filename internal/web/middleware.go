package web

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/gatepass/internal/metrics"
)

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// WithRequestID sets an X-Request-ID response header, reusing the caller's
// when present.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// ObserveRequests records request latency by method and status.
func ObserveRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		metrics.ObserveRequest(r.Method, strconv.Itoa(sr.status), time.Since(start).Seconds())
	})
}

// failureLimiter tracks failed token attempts per IP. IPs with no attempt
// inside the window are dropped.
type failureLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

const (
	failureWindow  = time.Minute
	failureMaxFail = 10
)

func newFailureLimiter() *failureLimiter {
	return &failureLimiter{attempts: make(map[string][]time.Time), now: time.Now}
}

// record notes a failed attempt and reports whether ip is now limited.
func (fl *failureLimiter) record(ip string) bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	now := fl.now()
	for other := range fl.attempts {
		if other != ip {
			fl.trim(other, now)
		}
	}
	valid := append(fl.trim(ip, now), now)
	fl.attempts[ip] = valid

	return len(valid) > failureMaxFail
}

func (fl *failureLimiter) limited(ip string) bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	return len(fl.trim(ip, fl.now())) > failureMaxFail
}

// trim drops attempts older than the window and forgets ip once none remain.
// The caller holds mu.
func (fl *failureLimiter) trim(ip string, now time.Time) []time.Time {
	attempts, ok := fl.attempts[ip]
	if !ok {
		return nil
	}
	cutoff := now.Add(-failureWindow)
	valid := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(fl.attempts, ip)
		return nil
	}
	fl.attempts[ip] = valid
	return valid
}

func clientIP(r *http.Request) string {
	if i := strings.LastIndex(r.RemoteAddr, ":"); i > 0 {
		return r.RemoteAddr[:i]
	}
	return r.RemoteAddr
}

// RequireToken checks a Bearer token on /api/ and /export/ paths. An empty
// token leaves the console open. Returns 401 for a missing or wrong token
// and 429 once an IP has failed too often.
func RequireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	limiter := newFailureLimiter()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") && !strings.HasPrefix(r.URL.Path, "/export/") {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if limiter.limited(ip) {
			apiError(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			if limiter.record(ip) {
				apiError(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			apiError(w, "authorization required", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
