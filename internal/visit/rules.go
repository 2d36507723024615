package visit

import (
	"errors"
	"fmt"
	"time"
)

// NoShowGrace is how late an approved visitor must be before the lobby may
// mark them as a no-show.
const NoShowGrace = 15 * time.Minute

// ErrCheckedOutNotIn is returned when a visit claims a check-out without a
// check-in.
var ErrCheckedOutNotIn = errors.New("visit is checked out but was never checked in")

// Validate checks the structural invariants of a visit.
func (v *Visit) Validate() error {
	if v.CheckedOut && !v.CheckedIn {
		return fmt.Errorf("visit %d: %w", v.ID, ErrCheckedOutNotIn)
	}
	if v.Status == NoShow && v.CheckedIn {
		return fmt.Errorf("visit %d: no-show visit cannot be checked in", v.ID)
	}
	if v.Status != "" && !v.Status.IsValid() {
		return fmt.Errorf("visit %d: invalid status %q", v.ID, v.Status)
	}
	if v.Type != "" && !v.Type.IsValid() {
		return fmt.Errorf("visit %d: invalid visit type %q", v.ID, v.Type)
	}
	return nil
}

// Late returns how far past the scheduled time now is. It is negative before
// the scheduled time and zero when the schedule is unknown.
func (v *Visit) Late(now time.Time) time.Duration {
	if v.Scheduled.IsZero() {
		return 0
	}
	return now.Sub(v.Scheduled.Time)
}

// MinutesLate returns Late in whole minutes.
func (v *Visit) MinutesLate(now time.Time) int {
	return int(v.Late(now) / time.Minute)
}

// CanMarkNoShow reports whether the visit may be marked as a no-show:
// approved, not checked in, and at least NoShowGrace late.
func (v *Visit) CanMarkNoShow(now time.Time) bool {
	if v.CheckedIn || v.Status != Approved || v.Scheduled.IsZero() {
		return false
	}
	return v.Late(now) >= NoShowGrace
}

// CanCheckIn reports whether the visitor may be checked in.
func (v *Visit) CanCheckIn() bool {
	return !v.CheckedIn && v.Status == Approved
}

// CanCheckOut reports whether the visitor may be checked out.
func (v *Visit) CanCheckOut() bool {
	return v.CheckedIn && !v.CheckedOut
}

// DisplayStatus is the status shown in lobby tables and exports.
func (v *Visit) DisplayStatus() string {
	switch {
	case v.CheckedOut:
		return "Checked Out"
	case v.CheckedIn:
		return "Checked In"
	case v.Status == NoShow:
		return "No Show"
	default:
		return "Pending"
	}
}
