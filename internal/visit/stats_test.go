package visit

import (
	"testing"
	"time"
)

func TestComputeStats(t *testing.T) {
	visits := []*Visit{
		{Status: Approved},
		{Status: Approved, CheckedIn: true},
		{Status: Approved, CheckedIn: true, CheckedOut: true},
		{Status: NoShow},
		{Status: Pending},
	}

	got := ComputeStats(visits)
	want := Stats{Total: 5, CheckedIn: 2, CheckedOut: 1, PendingCheckIns: 1, NoShow: 1}
	if got != want {
		t.Errorf("ComputeStats() = %+v, want %+v", got, want)
	}
}

func TestComputeAnalytics(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	at := func(h, m int) Timestamp { return At(day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)) }

	visits := []*Visit{
		{Status: Approved, Scheduled: at(9, 0), CheckedIn: true, CheckInTime: at(9, 10)},
		{Status: Approved, Scheduled: at(9, 30), CheckedIn: true, CheckInTime: at(9, 20)},
		{Status: Approved, Scheduled: at(14, 0)},
		{Status: Approved, Scheduled: at(14, 15)},
		{Status: Pending, Scheduled: at(16, 0)},
	}

	a := ComputeAnalytics(visits)

	if a.Hourly[9] != 2 || a.Hourly[14] != 2 || a.Hourly[16] != 1 {
		t.Errorf("hourly = %v", a.Hourly)
	}
	if a.CheckInRate != 50 {
		t.Errorf("CheckInRate = %v, want 50", a.CheckInRate)
	}
	// one visitor 10 minutes late, one early (counted as zero)
	if a.AverageLateness != "5.0 min late" {
		t.Errorf("AverageLateness = %q, want %q", a.AverageLateness, "5.0 min late")
	}
	if a.PeakHours != "9:00, 14:00" {
		t.Errorf("PeakHours = %q, want %q", a.PeakHours, "9:00, 14:00")
	}

	counts := map[string]int{}
	for _, s := range a.StatusDistribution {
		counts[s.Status] = s.Count
	}
	if counts["checkedIn"] != 2 || counts["approved"] != 2 || counts["pending"] != 1 {
		t.Errorf("distribution = %+v", a.StatusDistribution)
	}
}

func TestComputeAnalyticsEmpty(t *testing.T) {
	a := ComputeAnalytics(nil)
	if a.PeakHours != "No data" {
		t.Errorf("PeakHours = %q, want No data", a.PeakHours)
	}
	if a.AverageLateness != "N/A" {
		t.Errorf("AverageLateness = %q, want N/A", a.AverageLateness)
	}
	if a.CheckInRate != 0 {
		t.Errorf("CheckInRate = %v, want 0", a.CheckInRate)
	}
	if a.StatusDistribution != nil {
		t.Errorf("StatusDistribution = %v, want nil", a.StatusDistribution)
	}
}

func TestAverageLatenessOnTime(t *testing.T) {
	s := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	visits := []*Visit{{CheckedIn: true, Scheduled: At(s), CheckInTime: At(s.Add(30 * time.Second))}}
	if got := averageLateness(visits); got != "On time" {
		t.Errorf("averageLateness() = %q, want On time", got)
	}
}

func TestTopHostsAndPurposes(t *testing.T) {
	visits := []*Visit{
		{EmployeeName: "alice", Purpose: "Interview"},
		{EmployeeName: "bob", Purpose: "Delivery"},
		{HostName: "alice", Purpose: "Interview"},
		{EmployeeName: "carol", Purpose: "Interview"},
	}

	hosts := TopHosts(visits, 2)
	if len(hosts) != 2 || hosts[0] != (Count{"alice", 2}) || hosts[1] != (Count{"bob", 1}) {
		t.Errorf("TopHosts() = %v", hosts)
	}

	purposes := TopPurposes(visits, 0)
	if len(purposes) != 2 || purposes[0] != (Count{"Interview", 3}) {
		t.Errorf("TopPurposes() = %v", purposes)
	}
}

func TestInRange(t *testing.T) {
	d := func(day int) Timestamp { return At(time.Date(2025, 3, day, 10, 0, 0, 0, time.Local)) }
	visits := []*Visit{{ID: 1, Scheduled: d(1)}, {ID: 2, Scheduled: d(2)}, {ID: 3, Scheduled: d(3)}, {ID: 4}}

	start := time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local)
	end := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)

	got := InRange(visits, start, end)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Errorf("InRange() = %v", got)
	}

	if got := InRange(visits, time.Time{}, time.Time{}); len(got) != 4 {
		t.Errorf("open range returned %d visits, want 4", len(got))
	}
}
