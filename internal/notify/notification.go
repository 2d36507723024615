// Package notify derives visitor notifications from the visitor list and
// tracks which of them each user has read.
package notify

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/evcraddock/gatepass/internal/visit"
)

// Kind identifies the event a notification reports.
type Kind string

const (
	NewVisitor Kind = "new_visitor"
	CheckIn    Kind = "check_in"
	CheckOut   Kind = "check_out"
	Reminder   Kind = "reminder"
	NoShow     Kind = "no_show"
)

// Windows applied by Derive.
const (
	ArrivalWindow  = 30 * time.Minute
	RecentWindow   = 30 * time.Minute
	ReminderAfter  = 15 * time.Minute
	ReminderUntil  = 45 * time.Minute
	NoShowAfter    = 30 * time.Minute
	NoShowUntil    = 120 * time.Minute
	thresholdGrace = time.Minute
)

// Notification is a derived, read-flagged event about one visit.
type Notification struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Read         bool      `json:"read"`
	VisitID      int64     `json:"visit_id"`
	EmployeeName string    `json:"employee_name"`
	VisitorName  string    `json:"visitor_name"`
}

// ID builds the stable identifier for a kind of event on a visit.
func ID(kind Kind, visitID int64) string {
	var prefix string
	switch kind {
	case NewVisitor:
		prefix = "new"
	case CheckIn:
		prefix = "checkin"
	case CheckOut:
		prefix = "checkout"
	case Reminder:
		prefix = "reminder"
	case NoShow:
		prefix = "noshow"
	default:
		prefix = string(kind)
	}
	return prefix + "_" + strconv.FormatInt(visitID, 10)
}

type audience int

const (
	nobody audience = iota
	attendant
	host
)

func audienceFor(u *visit.User) audience {
	switch {
	case u == nil:
		return nobody
	case u.IsLobbyAttendant():
		return attendant
	case u.IsEmployee():
		return host
	default:
		return nobody
	}
}

// Derive computes the notifications user should see for visits at now.
// Lobby attendants see every visit, employees only the visits they host.
// The result is sorted newest first and each entry is marked read when its
// id is in readIDs. Visits whose relevant time is unknown produce nothing
// for that rule.
func Derive(visits []*visit.Visit, user *visit.User, now time.Time, readIDs map[string]bool) []Notification {
	aud := audienceFor(user)
	if aud == nobody {
		return nil
	}

	var out []Notification
	for _, v := range visits {
		if aud == host && v.Host() != user.Username {
			continue
		}
		out = append(out, deriveVisit(v, aud, now)...)
	}

	for i := range out {
		out[i].Read = readIDs[out[i].ID]
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func deriveVisit(v *visit.Visit, aud audience, now time.Time) []Notification {
	var out []Notification
	mk := func(kind Kind, ts time.Time, title, msg string) {
		out = append(out, Notification{
			ID:           ID(kind, v.ID),
			Kind:         kind,
			Title:        title,
			Message:      msg,
			Timestamp:    ts,
			VisitID:      v.ID,
			EmployeeName: v.Host(),
			VisitorName:  v.VisitorName,
		})
	}

	sched := v.Scheduled.Time
	hasSched := !v.Scheduled.IsZero()

	if hasSched && v.Status == visit.Approved {
		d := now.Sub(sched)
		if d >= -ArrivalWindow && d <= ArrivalWindow {
			msg := fmt.Sprintf("%s is scheduled to arrive at %s", v.VisitorName, sched.Local().Format("3:04 PM"))
			if aud == attendant {
				mk(NewVisitor, sched, "New Visitor Scheduled", msg)
			} else {
				mk(NewVisitor, sched, "Visitor Coming to Meet You", msg)
			}
		}
	}

	if v.CheckedIn && !v.CheckInTime.IsZero() && now.Sub(v.CheckInTime.Time) <= RecentWindow {
		if aud == attendant {
			mk(CheckIn, v.CheckInTime.Time, "Visitor Checked In",
				fmt.Sprintf("%s has checked in to meet %s", v.VisitorName, v.Host()))
		} else {
			mk(CheckIn, v.CheckInTime.Time, "Your Visitor Has Arrived",
				fmt.Sprintf("%s has checked in and is waiting for you", v.VisitorName))
		}
	}

	if v.CheckedOut && !v.CheckOutTime.IsZero() && now.Sub(v.CheckOutTime.Time) <= RecentWindow {
		if aud == attendant {
			mk(CheckOut, v.CheckOutTime.Time, "Visitor Checked Out",
				fmt.Sprintf("%s has checked out after meeting %s", v.VisitorName, v.Host()))
		} else {
			mk(CheckOut, v.CheckOutTime.Time, "Your Visitor Has Left",
				fmt.Sprintf("%s has checked out and left the building", v.VisitorName))
		}
	}

	if !hasSched || v.CheckedIn || v.Status != visit.Approved {
		return out
	}

	late := now.Sub(sched)
	minutes := int(late / time.Minute)

	if aud == attendant && late >= ReminderAfter+thresholdGrace && late <= ReminderUntil {
		mk(Reminder, sched.Add(ReminderAfter), "Visitor Running Late",
			fmt.Sprintf("%s is %d minutes late to meet %s", v.VisitorName, minutes, v.Host()))
	}

	if late >= NoShowAfter+thresholdGrace && late <= NoShowUntil {
		if aud == attendant {
			mk(NoShow, sched.Add(NoShowAfter), "Visitor No-Show",
				fmt.Sprintf("%s is %d minutes late and may be a no-show", v.VisitorName, minutes))
		} else {
			mk(NoShow, sched.Add(NoShowAfter), "Your Visitor May Be a No-Show",
				fmt.Sprintf("%s is %d minutes late and hasn't arrived yet", v.VisitorName, minutes))
		}
	}

	return out
}

// UnreadCount counts notifications not yet read.
func UnreadCount(ns []Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}

// Badge renders an unread count the way the bell icon shows it.
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > 9:
		return "9+"
	default:
		return strconv.Itoa(unread)
	}
}

// IDs returns the ids of ns in order.
func IDs(ns []Notification) []string {
	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = n.ID
	}
	return ids
}

// TimeAgo renders how long before now t happened.
func TimeAgo(t, now time.Time) string {
	mins := int(now.Sub(t) / time.Minute)
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 1440:
		return fmt.Sprintf("%dh ago", mins/60)
	default:
		return fmt.Sprintf("%dd ago", mins/1440)
	}
}

// LandingPath is where a notification click takes the user.
func LandingPath(u *visit.User) string {
	switch audienceFor(u) {
	case attendant:
		return "/lobby"
	case host:
		return "/my-visitors"
	default:
		return ""
	}
}
