package visit

import (
	"time"
)

// HostCount is a row of the busiest-hosts table.
type HostCount struct {
	Name     string `json:"name"`
	Visitors int    `json:"visitors"`
}

// PurposeCount is a row of the common-purposes table.
type PurposeCount struct {
	Purpose string `json:"purpose"`
	Count   int    `json:"count"`
}

// Report is a summary of visits over a date range.
type Report struct {
	Total              int            `json:"totalVisitors"`
	CheckedIn          int            `json:"checkedInVisitors"`
	CheckedOut         int            `json:"checkedOutVisitors"`
	NoShow             int            `json:"noShowVisitors"`
	Pending            int            `json:"pendingVisitors"`
	AverageCheckInTime string         `json:"averageCheckInTime"`
	PeakHours          string         `json:"peakHours"`
	TopEmployees       []HostCount    `json:"topEmployees"`
	TopPurposes        []PurposeCount `json:"topPurposes"`
	Visitors           []*Visit       `json:"visitors"`
}

// ReportFilter narrows a report. Empty fields and "all" match everything.
type ReportFilter struct {
	Start    time.Time
	End      time.Time
	Status   string
	Employee string
	Type     string
}

// Matches reports whether v passes the status, employee and type filters.
// The date range is applied separately by InRange.
func (f ReportFilter) Matches(v *Visit) bool {
	switch f.Status {
	case "", "all":
	case "checked_in":
		if !v.CheckedIn || v.CheckedOut {
			return false
		}
	case "checked_out":
		if !v.CheckedOut {
			return false
		}
	default:
		if string(v.Status) != f.Status {
			return false
		}
	}
	if f.Employee != "" && f.Employee != "all" && v.Host() != f.Employee {
		return false
	}
	if f.Type != "" && f.Type != "all" && string(v.Type) != f.Type {
		return false
	}
	return true
}

// Apply returns the visits within the filter's range that match it.
func (f ReportFilter) Apply(visits []*Visit) []*Visit {
	var out []*Visit
	for _, v := range InRange(visits, f.Start, f.End) {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// BuildReport summarises visits the way the reports endpoint does, so the
// console can report on its cached list without a round trip.
func BuildReport(visits []*Visit) *Report {
	r := &Report{Total: len(visits), Visitors: visits}
	for _, v := range visits {
		switch {
		case v.CheckedOut:
			r.CheckedOut++
		case v.CheckedIn:
			r.CheckedIn++
		}
		switch v.Status {
		case NoShow:
			r.NoShow++
		case Pending:
			r.Pending++
		}
	}

	a := ComputeAnalytics(visits)
	r.AverageCheckInTime = a.AverageLateness
	r.PeakHours = a.PeakHours

	for _, c := range TopHosts(visits, 5) {
		r.TopEmployees = append(r.TopEmployees, HostCount{Name: c.Name, Visitors: c.Count})
	}
	for _, c := range TopPurposes(visits, 5) {
		r.TopPurposes = append(r.TopPurposes, PurposeCount{Purpose: c.Name, Count: c.Count})
	}
	return r
}

// Normalize fills the check-in flags from the recorded times, for payloads
// that only carry the times.
func Normalize(visits []*Visit) {
	for _, v := range visits {
		if !v.CheckInTime.IsZero() {
			v.CheckedIn = true
		}
		if !v.CheckOutTime.IsZero() {
			v.CheckedOut = true
		}
	}
}
