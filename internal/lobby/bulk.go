package lobby

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/evcraddock/gatepass/internal/metrics"
	"github.com/evcraddock/gatepass/internal/visit"
)

// Action is a bulk lobby action.
type Action string

const (
	ActionNoShow   Action = "no-show"
	ActionCheckIn  Action = "checkin"
	ActionCheckOut Action = "checkout"
)

// ParseAction validates a bulk action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionNoShow, ActionCheckIn, ActionCheckOut:
		return a, nil
	default:
		return "", fmt.Errorf("unknown bulk action %q (use no-show, checkin or checkout)", s)
	}
}

// ErrNotEligible is recorded for a visit the action does not apply to.
var ErrNotEligible = errors.New("not eligible")

// Eligible reports whether action applies to v at now.
func Eligible(action Action, v *visit.Visit, now time.Time) bool {
	switch action {
	case ActionNoShow:
		return v.CanMarkNoShow(now)
	case ActionCheckIn:
		return v.CanCheckIn()
	case ActionCheckOut:
		return v.CanCheckOut()
	default:
		return false
	}
}

// EligibleIDs returns the ids in visits that action applies to, in list
// order.
func EligibleIDs(action Action, visits []*visit.Visit, now time.Time) []int64 {
	var ids []int64
	for _, v := range visits {
		if Eligible(action, v, now) {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// Actions is the API surface bulk actions call.
type Actions interface {
	MarkNoShow(ctx context.Context, id int64) (string, error)
	CheckInVisit(ctx context.Context, id int64) (string, error)
	CheckOutVisit(ctx context.Context, id int64) (string, error)
}

// BulkResult is the per-visit outcome of a bulk action.
type BulkResult struct {
	Action    Action          `json:"action"`
	Succeeded []int64         `json:"succeeded"`
	Failed    map[int64]error `json:"-"`
}

// FailedIDs returns the failed ids in ascending order.
func (r *BulkResult) FailedIDs() []int64 {
	ids := make([]int64, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Bulk runs one action over many visits, one request at a time.
type Bulk struct {
	api     Actions
	cache   *Cache
	hub     *Hub
	limiter *rate.Limiter
	logger  zerolog.Logger
	now     func() time.Time
}

// NewBulk creates a bulk runner issuing at most perSecond requests a second.
// cache and hub may be nil.
func NewBulk(api Actions, cache *Cache, hub *Hub, perSecond float64, logger zerolog.Logger) *Bulk {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Bulk{
		api:     api,
		cache:   cache,
		hub:     hub,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		now:     time.Now,
	}
}

// Run applies action to every id. Visits the cache knows to be ineligible
// are failed without a request; the rest are sent and each outcome is
// recorded, so one failure does not stop the batch. The returned error is
// only set when ctx ends the batch early.
func (b *Bulk) Run(ctx context.Context, action Action, ids []int64) (*BulkResult, error) {
	res := &BulkResult{Action: action, Failed: make(map[int64]error)}
	now := b.now()

	defer func() {
		if len(res.Succeeded) > 0 && b.hub != nil {
			b.hub.Refresh()
		}
	}()

	for _, id := range ids {
		if b.cache != nil {
			if v, ok := b.cache.Get(id); ok && !Eligible(action, v, now) {
				res.Failed[id] = ErrNotEligible
				metrics.IncBulkItem(string(action), false)
				continue
			}
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("bulk %s interrupted: %w", action, err)
		}

		if err := b.apply(ctx, action, id); err != nil {
			b.logger.Warn().Err(err).Int64("visit_id", id).Str("action", string(action)).Msg("bulk item failed")
			res.Failed[id] = err
			metrics.IncBulkItem(string(action), false)
			continue
		}

		res.Succeeded = append(res.Succeeded, id)
		metrics.IncBulkItem(string(action), true)
		b.patchCache(action, id)
	}

	b.logger.Info().
		Str("action", string(action)).
		Int("succeeded", len(res.Succeeded)).
		Int("failed", len(res.Failed)).
		Msg("bulk action finished")
	return res, nil
}

func (b *Bulk) apply(ctx context.Context, action Action, id int64) error {
	var err error
	switch action {
	case ActionNoShow:
		_, err = b.api.MarkNoShow(ctx, id)
	case ActionCheckIn:
		_, err = b.api.CheckInVisit(ctx, id)
	case ActionCheckOut:
		_, err = b.api.CheckOutVisit(ctx, id)
	default:
		err = fmt.Errorf("unknown bulk action %q", action)
	}
	return err
}

func (b *Bulk) patchCache(action Action, id int64) {
	if b.cache == nil {
		return
	}
	now := b.now()
	b.cache.Update(id, func(v *visit.Visit) {
		switch action {
		case ActionNoShow:
			v.Status = visit.NoShow
		case ActionCheckIn:
			v.CheckedIn = true
			v.CheckInTime = visit.At(now)
		case ActionCheckOut:
			v.CheckedOut = true
			v.CheckOutTime = visit.At(now)
		}
	})
}
