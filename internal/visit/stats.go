package visit

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Stats are the lobby dashboard counters for a visitor list.
type Stats struct {
	Total           int `json:"total"`
	CheckedIn       int `json:"checkedIn"`
	CheckedOut      int `json:"checkedOut"`
	PendingCheckIns int `json:"pendingCheckIns"`
	NoShow          int `json:"noShow"`
}

// ComputeStats counts visits by lobby state.
func ComputeStats(visits []*Visit) Stats {
	s := Stats{Total: len(visits)}
	for _, v := range visits {
		if v.CheckedIn {
			s.CheckedIn++
		}
		if v.CheckedOut {
			s.CheckedOut++
		}
		if !v.CheckedIn && v.Status == Approved {
			s.PendingCheckIns++
		}
		if v.Status == NoShow {
			s.NoShow++
		}
	}
	return s
}

// StatusShare is one slice of the status distribution.
type StatusShare struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Percent float64 `json:"percentage"`
}

// Analytics summarises a visitor list for the analytics panel.
type Analytics struct {
	Hourly             [24]int       `json:"hourly"`
	CheckInRate        float64       `json:"checkInRate"`
	AverageLateness    string        `json:"averageCheckInTime"`
	PeakHours          string        `json:"peakHours"`
	StatusDistribution []StatusShare `json:"statusDistribution"`
}

// ComputeAnalytics derives hourly load, check-in rate, lateness and the
// status split. Visits without a scheduled time are left out of the hourly
// buckets.
func ComputeAnalytics(visits []*Visit) Analytics {
	var a Analytics
	for _, v := range visits {
		if v.Scheduled.IsZero() {
			continue
		}
		a.Hourly[v.Scheduled.Local().Hour()]++
	}

	var approved, approvedIn int
	for _, v := range visits {
		if v.Status == Approved {
			approved++
			if v.CheckedIn {
				approvedIn++
			}
		}
	}
	if approved > 0 {
		a.CheckInRate = round1(float64(approvedIn) / float64(approved) * 100)
	}

	a.AverageLateness = averageLateness(visits)
	a.PeakHours = peakHours(a.Hourly)
	a.StatusDistribution = statusDistribution(visits)
	return a
}

func averageLateness(visits []*Visit) string {
	var total float64
	var n int
	for _, v := range visits {
		if !v.CheckedIn || v.CheckInTime.IsZero() || v.Scheduled.IsZero() {
			continue
		}
		n++
		total += math.Max(0, v.CheckInTime.Sub(v.Scheduled.Time).Minutes())
	}
	if n == 0 {
		return "N/A"
	}
	avg := total / float64(n)
	if avg < 1 {
		return "On time"
	}
	return fmt.Sprintf("%.1f min late", avg)
}

func peakHours(hourly [24]int) string {
	peak := 0
	for _, c := range hourly {
		if c > peak {
			peak = c
		}
	}
	if peak == 0 {
		return "No data"
	}
	var hours []string
	for h, c := range hourly {
		if c == peak {
			hours = append(hours, fmt.Sprintf("%d:00", h))
		}
	}
	return strings.Join(hours, ", ")
}

func statusDistribution(visits []*Visit) []StatusShare {
	counts := []StatusShare{{Status: "approved"}, {Status: "checkedIn"}, {Status: "checkedOut"}, {Status: "noShow"}, {Status: "pending"}}
	for _, v := range visits {
		switch {
		case v.CheckedOut:
			counts[2].Count++
		case v.CheckedIn:
			counts[1].Count++
		case v.Status == Approved:
			counts[0].Count++
		}
		switch v.Status {
		case NoShow:
			counts[3].Count++
		case Pending:
			counts[4].Count++
		}
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil
	}

	out := make([]StatusShare, 0, len(counts))
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		c.Percent = round1(float64(c.Count) / float64(total) * 100)
		out = append(out, c)
	}
	return out
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Count is a name with an occurrence count, used for top-N tables.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopHosts returns the n hosts with the most visits, busiest first.
func TopHosts(visits []*Visit, n int) []Count {
	return topN(visits, n, (*Visit).Host)
}

// TopPurposes returns the n most common visit purposes.
func TopPurposes(visits []*Visit, n int) []Count {
	return topN(visits, n, func(v *Visit) string { return v.Purpose })
}

func topN(visits []*Visit, n int, key func(*Visit) string) []Count {
	seen := make(map[string]int)
	for _, v := range visits {
		k := key(v)
		if k == "" {
			continue
		}
		seen[k]++
	}
	out := make([]Count, 0, len(seen))
	for k, c := range seen {
		out = append(out, Count{Name: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// InRange keeps the visits scheduled on days from start to end inclusive.
// Zero bounds are open. Visits with no known schedule only survive a fully
// open range.
func InRange(visits []*Visit, start, end time.Time) []*Visit {
	open := start.IsZero() && end.IsZero()
	var out []*Visit
	for _, v := range visits {
		if v.Scheduled.IsZero() {
			if open {
				out = append(out, v)
			}
			continue
		}
		day := truncateDay(v.Scheduled.Local())
		if !start.IsZero() && day.Before(truncateDay(start)) {
			continue
		}
		if !end.IsZero() && day.After(truncateDay(end)) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
