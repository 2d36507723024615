package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evcraddock/gatepass/internal/client"
	"github.com/evcraddock/gatepass/internal/metrics"
	"github.com/evcraddock/gatepass/internal/visit"
)

// Source fetches the visitor list from the API.
type Source interface {
	Visitors(ctx context.Context) ([]*visit.Visit, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]*visit.Visit, error)

// Visitors implements Source.
func (f SourceFunc) Visitors(ctx context.Context) ([]*visit.Visit, error) {
	return f(ctx)
}

// SourceFor picks the visitor list a user works from: today's visitors for
// the lobby desk, the caller's own visitors for a host.
func SourceFor(c *client.Client, u *visit.User) Source {
	if u.IsLobbyAttendant() {
		return SourceFunc(c.TodayVisitors)
	}
	return SourceFunc(func(ctx context.Context) ([]*visit.Visit, error) {
		return c.MyVisitors(ctx, u.Username)
	})
}

// Snapshots persists the last fetched list.
type Snapshots interface {
	SaveSnapshot(visits []*visit.Visit, fetchedAt time.Time) error
	LoadSnapshot() ([]*visit.Visit, time.Time, error)
}

// PollerConfig holds configuration for the visitor poller.
type PollerConfig struct {
	Interval time.Duration
}

// DefaultPollerConfig returns the default poller configuration.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{Interval: 30 * time.Second}
}

// Poller keeps a Cache filled from a Source and signals the Hub after every
// successful fetch.
type Poller struct {
	config    PollerConfig
	source    Source
	cache     *Cache
	hub       *Hub
	snapshots Snapshots
	logger    zerolog.Logger
	now       func() time.Time
	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
}

// NewPoller creates a poller. snapshots may be nil.
func NewPoller(config PollerConfig, source Source, cache *Cache, hub *Hub, snapshots Snapshots, logger zerolog.Logger) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	return &Poller{
		config:    config,
		source:    source,
		cache:     cache,
		hub:       hub,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Warm loads the stored snapshot into an empty cache.
func (p *Poller) Warm() error {
	if p.snapshots == nil || p.cache.Updated() != (time.Time{}) {
		return nil
	}
	visits, fetchedAt, err := p.snapshots.LoadSnapshot()
	if err != nil {
		return err
	}
	if len(visits) == 0 {
		return nil
	}
	p.cache.Set(visits, fetchedAt)
	p.logger.Debug().Int("visits", len(visits)).Time("fetched_at", fetchedAt).Msg("loaded visitor snapshot")
	return nil
}

// Start fetches immediately and then on every interval until ctx is done or
// Stop is called. A stopped poller can be started again.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	stopCh := make(chan struct{})
	p.stopCh = stopCh
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.stopCh == stopCh {
			p.running = false
		}
		p.mu.Unlock()
	}()

	p.logger.Info().Dur("interval", p.config.Interval).Msg("visitor poller started")

	p.tick(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("visitor poller stopped by context")
			return
		case <-stopCh:
			p.logger.Info().Msg("visitor poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Stop stops the poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.running {
		p.running = false
		close(p.stopCh)
	}
	p.mu.Unlock()
}

// IsRunning returns whether the poller loop is active.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Error().Err(err).Msg("refreshing visitors")
	}
}

// Refresh fetches the list once, stores it and notifies subscribers. On
// failure the cache keeps its previous contents.
func (p *Poller) Refresh(ctx context.Context) error {
	visits, err := p.source.Visitors(ctx)
	metrics.IncPoll("lobby", err == nil)
	if err != nil {
		return err
	}

	for _, v := range visits {
		if verr := v.Validate(); verr != nil {
			p.logger.Warn().Err(verr).Msg("inconsistent visit")
		}
	}

	now := p.now()
	p.cache.Set(visits, now)
	metrics.SetVisitorsTracked(len(visits))

	if p.snapshots != nil {
		if err := p.snapshots.SaveSnapshot(visits, now); err != nil {
			p.logger.Warn().Err(err).Msg("saving visitor snapshot")
		}
	}

	p.hub.Refresh()
	return nil
}
