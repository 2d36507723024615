package notify

import (
	"reflect"
	"testing"
	"time"

	"github.com/evcraddock/gatepass/internal/visit"
)

var (
	testNow  = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deskUser = &visit.User{Username: "desk", Groups: []string{visit.RoleLobbyAttendant}}
	employee = &visit.User{Username: "alice", Groups: []string{visit.RoleEmployee}}
)

func approvedAt(id int64, offset time.Duration) *visit.Visit {
	return &visit.Visit{
		ID:           id,
		VisitorName:  "Ann",
		EmployeeName: "alice",
		Status:       visit.Approved,
		Scheduled:    visit.At(testNow.Add(offset)),
	}
}

func kinds(ns []Notification) []Kind {
	out := make([]Kind, len(ns))
	for i, n := range ns {
		out[i] = n.Kind
	}
	return out
}

func TestDeriveLateWindows(t *testing.T) {
	tests := []struct {
		name string
		late time.Duration
		user *visit.User
		want []Kind
	}{
		{"on time", 0, deskUser, []Kind{NewVisitor}},
		{"15 minutes late", 15 * time.Minute, deskUser, []Kind{NewVisitor}},
		{"15m59s late", 16*time.Minute - time.Second, deskUser, []Kind{NewVisitor}},
		{"16 minutes late", 16 * time.Minute, deskUser, []Kind{Reminder, NewVisitor}},
		{"30 minutes late", 30 * time.Minute, deskUser, []Kind{Reminder, NewVisitor}},
		{"31 minutes late", 31 * time.Minute, deskUser, []Kind{NoShow, Reminder}},
		{"45 minutes late", 45 * time.Minute, deskUser, []Kind{NoShow, Reminder}},
		{"46 minutes late", 46 * time.Minute, deskUser, []Kind{NoShow}},
		{"120 minutes late", 120 * time.Minute, deskUser, []Kind{NoShow}},
		{"121 minutes late", 121 * time.Minute, deskUser, nil},
		{"employee never gets reminder", 20 * time.Minute, employee, []Kind{NewVisitor}},
		{"employee no-show", 40 * time.Minute, employee, []Kind{NoShow}},
		{"31 minutes early", -31 * time.Minute, deskUser, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive([]*visit.Visit{approvedAt(1, -tt.late)}, tt.user, testNow, nil)
			gotKinds := kinds(got)
			if len(gotKinds) == 0 {
				gotKinds = nil
			}
			if !reflect.DeepEqual(gotKinds, tt.want) {
				t.Errorf("kinds = %v, want %v", gotKinds, tt.want)
			}
		})
	}
}

func TestDeriveReminderTimestampAndMessage(t *testing.T) {
	v := approvedAt(7, -20*time.Minute)
	ns := Derive([]*visit.Visit{v}, deskUser, testNow, nil)

	var reminder *Notification
	for i := range ns {
		if ns[i].Kind == Reminder {
			reminder = &ns[i]
		}
	}
	if reminder == nil {
		t.Fatal("expected reminder")
	}
	if reminder.ID != "reminder_7" {
		t.Errorf("id = %q, want reminder_7", reminder.ID)
	}
	if want := v.Scheduled.Add(15 * time.Minute); !reminder.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", reminder.Timestamp, want)
	}
	if reminder.Message != "Ann is 20 minutes late to meet alice" {
		t.Errorf("message = %q", reminder.Message)
	}
	if reminder.Title != "Visitor Running Late" {
		t.Errorf("title = %q", reminder.Title)
	}
}

func TestDeriveCheckInOut(t *testing.T) {
	v := &visit.Visit{
		ID:           3,
		VisitorName:  "Bob",
		EmployeeName: "alice",
		Status:       visit.Approved,
		Scheduled:    visit.At(testNow.Add(-3 * time.Hour)),
		CheckedIn:    true,
		CheckInTime:  visit.At(testNow.Add(-10 * time.Minute)),
		CheckedOut:   true,
		CheckOutTime: visit.At(testNow.Add(-5 * time.Minute)),
	}

	tests := []struct {
		name       string
		user       *visit.User
		wantIDs    []string
		wantTitles []string
	}{
		{
			name:       "attendant",
			user:       deskUser,
			wantIDs:    []string{"checkout_3", "checkin_3"},
			wantTitles: []string{"Visitor Checked Out", "Visitor Checked In"},
		},
		{
			name:       "host",
			user:       employee,
			wantIDs:    []string{"checkout_3", "checkin_3"},
			wantTitles: []string{"Your Visitor Has Left", "Your Visitor Has Arrived"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := Derive([]*visit.Visit{v}, tt.user, testNow, nil)
			if !reflect.DeepEqual(IDs(ns), tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", IDs(ns), tt.wantIDs)
			}
			for i, n := range ns {
				if n.Title != tt.wantTitles[i] {
					t.Errorf("title[%d] = %q, want %q", i, n.Title, tt.wantTitles[i])
				}
			}
		})
	}

	old := *v
	old.CheckInTime = visit.At(testNow.Add(-31 * time.Minute))
	old.CheckOutTime = visit.At(testNow.Add(-31 * time.Minute))
	if ns := Derive([]*visit.Visit{&old}, deskUser, testNow, nil); len(ns) != 0 {
		t.Errorf("expected no notifications for old events, got %v", IDs(ns))
	}
}

func TestDeriveRoleFiltering(t *testing.T) {
	mine := approvedAt(1, 0)
	theirs := approvedAt(2, 0)
	theirs.EmployeeName = "bob"
	lobbyOnly := approvedAt(3, 0)
	lobbyOnly.EmployeeName = ""
	lobbyOnly.HostName = "alice"

	visits := []*visit.Visit{mine, theirs, lobbyOnly}

	tests := []struct {
		name string
		user *visit.User
		want int
	}{
		{"attendant sees all", deskUser, 3},
		{"employee sees own", employee, 2},
		{"no role sees nothing", &visit.User{Username: "alice"}, 0},
		{"nil user", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Derive(visits, tt.user, testNow, nil)); got != tt.want {
				t.Errorf("got %d notifications, want %d", got, tt.want)
			}
		})
	}
}

func TestDeriveIdempotent(t *testing.T) {
	visits := []*visit.Visit{approvedAt(1, -20*time.Minute), approvedAt(2, 5*time.Minute), approvedAt(3, -40*time.Minute)}

	first := Derive(visits, deskUser, testNow, nil)
	second := Derive(visits, deskUser, testNow, nil)
	if !reflect.DeepEqual(first, second) {
		t.Error("recomputation changed the result")
	}

	later := Derive(visits, deskUser, testNow.Add(time.Minute), nil)
	prev := make(map[string]bool)
	for _, id := range IDs(first) {
		prev[id] = true
	}
	for _, id := range IDs(later) {
		if !prev[id] {
			t.Errorf("new id %q after one minute", id)
		}
	}
}

func TestDeriveReadFlagsAndOrder(t *testing.T) {
	visits := []*visit.Visit{approvedAt(1, -20*time.Minute), approvedAt(2, 10*time.Minute)}
	read := map[string]bool{"new_2": true}

	ns := Derive(visits, deskUser, testNow, read)

	want := []string{"new_2", "reminder_1", "new_1"}
	if !reflect.DeepEqual(IDs(ns), want) {
		t.Fatalf("ids = %v, want %v", IDs(ns), want)
	}
	if !ns[0].Read || ns[1].Read || ns[2].Read {
		t.Errorf("read flags = %v %v %v", ns[0].Read, ns[1].Read, ns[2].Read)
	}
	if UnreadCount(ns) != 2 {
		t.Errorf("UnreadCount() = %d, want 2", UnreadCount(ns))
	}
}

func TestDeriveSkipsMalformedTimes(t *testing.T) {
	v := &visit.Visit{ID: 9, VisitorName: "X", Status: visit.Approved, CheckedIn: true}
	if ns := Derive([]*visit.Visit{v}, deskUser, testNow, nil); len(ns) != 0 {
		t.Errorf("expected nothing for unknown times, got %v", IDs(ns))
	}
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{59 * time.Minute, "59m ago"},
		{2 * time.Hour, "2h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(testNow.Add(-tt.ago), testNow); got != tt.want {
			t.Errorf("TimeAgo(%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestBadge(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{3, "3"},
		{9, "9"},
		{10, "9+"},
	}
	for _, tt := range tests {
		if got := Badge(tt.n); got != tt.want {
			t.Errorf("Badge(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestLandingPath(t *testing.T) {
	if got := LandingPath(deskUser); got != "/lobby" {
		t.Errorf("attendant path = %q", got)
	}
	if got := LandingPath(employee); got != "/my-visitors" {
		t.Errorf("employee path = %q", got)
	}
	if got := LandingPath(&visit.User{}); got != "" {
		t.Errorf("no-role path = %q", got)
	}
}
