package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/gatepass/internal/visit"
)

type fakeSource struct {
	mu     sync.Mutex
	visits []*visit.Visit
	err    error
	calls  int
}

func (f *fakeSource) Visitors(ctx context.Context) ([]*visit.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.visits, f.err
}

func (f *fakeSource) set(visits []*visit.Visit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits = visits
}

type failingStore struct{ ReadStore }

func (failingStore) ReadIDs(string, string) (map[string]bool, error) {
	return nil, errors.New("disk gone")
}

func (failingStore) Prune(string) (int64, error) { return 0, nil }

func testCenter(t *testing.T, store ReadStore) *Center {
	t.Helper()
	c := NewCenter(store, deskUser, zerolog.New(io.Discard))
	c.now = func() time.Time { return testNow }
	return c
}

func TestWatcherPublishesOnlyNewUnread(t *testing.T) {
	store := testStore(t)
	center := testCenter(t, store)
	src := &fakeSource{visits: []*visit.Visit{approvedAt(1, 0)}}

	var got []Notification
	w := NewWatcher(DefaultWatcherConfig(), src, center, func(n Notification) { got = append(got, n) }, zerolog.New(io.Discard))

	fresh, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"new_1"}, IDs(fresh))

	fresh, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fresh, "second poll republished")

	src.set([]*visit.Visit{approvedAt(1, 0), approvedAt(2, 0)})
	require.NoError(t, center.MarkRead("new_2"))

	fresh, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fresh, "read notification published")
	assert.Equal(t, []string{"new_1"}, IDs(got))
}

func TestWatcherPollError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	w := NewWatcher(DefaultWatcherConfig(), src, testCenter(t, testStore(t)), nil, zerolog.New(io.Discard))

	_, err := w.Poll(context.Background())
	assert.Error(t, err)
}

func TestWatcherPrunesOncePerDay(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.MarkRead("desk", "2025-01-01", "new_1"))

	w := NewWatcher(WatcherConfig{Interval: time.Minute, RetentionDays: 7}, &fakeSource{}, testCenter(t, store), nil, zerolog.New(io.Discard))

	_, err := w.Poll(context.Background())
	require.NoError(t, err)

	ids, err := store.ReadIDs("desk", "2025-01-01")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, Day(testNow), w.lastPrune)
}

func TestCenterStoreFailureTreatedAsUnread(t *testing.T) {
	center := testCenter(t, failingStore{})

	ns := center.List([]*visit.Visit{approvedAt(1, 0)})
	require.Len(t, ns, 1)
	assert.False(t, ns[0].Read)
}

func TestCenterMarkAllRead(t *testing.T) {
	store := testStore(t)
	center := testCenter(t, store)
	visits := []*visit.Visit{approvedAt(1, 0), approvedAt(2, -20*time.Minute)}

	ns, err := center.MarkAllRead(visits)
	require.NoError(t, err)
	assert.Len(t, ns, 3)

	listed := center.List(visits)
	assert.Equal(t, 0, UnreadCount(listed))
}

func TestWatcherStartStop(t *testing.T) {
	src := &fakeSource{}
	w := NewWatcher(WatcherConfig{Interval: 10 * time.Millisecond}, src, testCenter(t, testStore(t)), nil, zerolog.New(io.Discard))

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls >= 2
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.False(t, w.IsRunning())
}

func TestWatcherRestart(t *testing.T) {
	src := &fakeSource{}
	w := NewWatcher(WatcherConfig{Interval: time.Hour}, src, testCenter(t, testStore(t)), nil, zerolog.New(io.Discard))

	for round := 1; round <= 2; round++ {
		done := make(chan struct{})
		go func() {
			w.Start(context.Background())
			close(done)
		}()

		want := round
		require.Eventually(t, func() bool {
			src.mu.Lock()
			defer src.mu.Unlock()
			return src.calls == want
		}, time.Second, 5*time.Millisecond)
		assert.True(t, w.IsRunning())

		w.Stop()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("watcher did not stop in round %d", round)
		}
		assert.False(t, w.IsRunning())
	}
}
