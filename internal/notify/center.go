package notify

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/evcraddock/gatepass/internal/visit"
)

// Center derives one user's notifications and records what they read.
type Center struct {
	store  ReadStore
	user   *visit.User
	logger zerolog.Logger
	now    func() time.Time
}

// NewCenter creates a notification center for user.
func NewCenter(store ReadStore, user *visit.User, logger zerolog.Logger) *Center {
	return &Center{
		store:  store,
		user:   user,
		logger: logger,
		now:    time.Now,
	}
}

// User returns the user the center derives notifications for.
func (c *Center) User() *visit.User {
	return c.user
}

// List derives the current notifications for visits, marking the ones read
// today. A failing read store is logged and treated as nothing read.
func (c *Center) List(visits []*visit.Visit) []Notification {
	now := c.now()
	return Derive(visits, c.user, now, c.readIDs(Day(now)))
}

// MarkRead records id as read today.
func (c *Center) MarkRead(id string) error {
	return c.store.MarkRead(c.user.Username, Day(c.now()), id)
}

// MarkAllRead marks every notification currently derived from visits as
// read, replacing today's read set.
func (c *Center) MarkAllRead(visits []*visit.Visit) ([]Notification, error) {
	now := c.now()
	ns := Derive(visits, c.user, now, nil)
	if err := c.store.MarkAllRead(c.user.Username, Day(now), IDs(ns)); err != nil {
		return nil, err
	}
	for i := range ns {
		ns[i].Read = true
	}
	return ns, nil
}

// Prune drops read-state older than retention days.
func (c *Center) Prune(retention int) (int64, error) {
	cutoff := c.now().AddDate(0, 0, -retention)
	return c.store.Prune(Day(cutoff))
}

func (c *Center) readIDs(day string) map[string]bool {
	ids, err := c.store.ReadIDs(c.user.Username, day)
	if err != nil {
		c.logger.Warn().Err(err).Str("user", c.user.Username).Msg("loading read notifications")
		return map[string]bool{}
	}
	return ids
}
