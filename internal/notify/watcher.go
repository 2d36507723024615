package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evcraddock/gatepass/internal/metrics"
	"github.com/evcraddock/gatepass/internal/visit"
)

// VisitorSource fetches the current visitor list.
type VisitorSource interface {
	Visitors(ctx context.Context) ([]*visit.Visit, error)
}

// WatcherConfig holds configuration for the notification watcher.
type WatcherConfig struct {
	// Interval is how often the visitor list is polled.
	Interval time.Duration
	// RetentionDays is how many days of read-state to keep.
	RetentionDays int
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Interval:      30 * time.Second,
		RetentionDays: 7,
	}
}

// Watcher polls the visitor list and hands newly surfaced unread
// notifications to a sink.
type Watcher struct {
	config    WatcherConfig
	source    VisitorSource
	center    *Center
	sink      func(Notification)
	logger    zerolog.Logger
	mu        sync.Mutex
	seen      map[string]bool
	lastPrune string
	running   bool
	stopCh    chan struct{}
}

// NewWatcher creates a watcher. sink may be nil.
func NewWatcher(config WatcherConfig, source VisitorSource, center *Center, sink func(Notification), logger zerolog.Logger) *Watcher {
	if config.Interval <= 0 {
		config.Interval = DefaultWatcherConfig().Interval
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = DefaultWatcherConfig().RetentionDays
	}
	return &Watcher{
		config: config,
		source: source,
		center: center,
		sink:   sink,
		logger: logger,
		seen:   make(map[string]bool),
	}
}

// Start polls immediately and then on every interval until ctx is done or
// Stop is called. A stopped watcher can be started again.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	stopCh := make(chan struct{})
	w.stopCh = stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.stopCh == stopCh {
			w.running = false
		}
		w.mu.Unlock()
	}()

	w.logger.Info().Dur("interval", w.config.Interval).Msg("notification watcher started")

	w.tick(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("notification watcher stopped by context")
			return
		case <-stopCh:
			w.logger.Info().Msg("notification watcher stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.running {
		w.running = false
		close(w.stopCh)
	}
	w.mu.Unlock()
}

// IsRunning returns whether the watcher loop is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) tick(ctx context.Context) {
	if _, err := w.Poll(ctx); err != nil {
		w.logger.Error().Err(err).Msg("polling visitors")
	}
}

// Poll runs one fetch-derive-publish cycle and returns the notifications
// that were newly published.
func (w *Watcher) Poll(ctx context.Context) ([]Notification, error) {
	visits, err := w.source.Visitors(ctx)
	metrics.IncPoll("notifications", err == nil)
	if err != nil {
		return nil, err
	}

	w.pruneDaily()

	ns := w.center.List(visits)
	metrics.SetUnread(UnreadCount(ns))

	w.mu.Lock()
	current := make(map[string]bool, len(ns))
	var fresh []Notification
	for _, n := range ns {
		current[n.ID] = true
		if n.Read || w.seen[n.ID] {
			continue
		}
		fresh = append(fresh, n)
	}
	w.seen = current
	w.mu.Unlock()

	for _, n := range fresh {
		metrics.IncNotification(string(n.Kind))
		w.logger.Debug().Str("id", n.ID).Str("title", n.Title).Msg("notification")
		if w.sink != nil {
			w.sink(n)
		}
	}
	return fresh, nil
}

func (w *Watcher) pruneDaily() {
	today := Day(w.center.now())

	w.mu.Lock()
	due := w.lastPrune != today
	w.lastPrune = today
	w.mu.Unlock()

	if !due {
		return
	}

	n, err := w.center.Prune(w.config.RetentionDays)
	if err != nil {
		w.logger.Error().Err(err).Msg("pruning read state")
		return
	}
	metrics.AddPruned(n)
	if n > 0 {
		w.logger.Info().Int64("deleted", n).Msg("pruned old read state")
	}
}
