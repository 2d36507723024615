package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/gatepass/internal/notify"
	"github.com/evcraddock/gatepass/internal/visit"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTime renders a timestamp for tables, "-" when unknown.
func formatTime(t visit.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// printVisitTable prints visits as a formatted table.
func printVisitTable(visits []*visit.Visit) error {
	if len(visits) == 0 {
		fmt.Println("No visitors found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "VISIT\tVISITOR\tHOST\tPURPOSE\tSCHEDULED\tCHECK-IN\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "-----\t-------\t----\t-------\t---------\t--------\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, v := range visits {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, truncate(v.VisitorName, 24), truncate(v.Host(), 16), truncate(v.Purpose, 28),
			formatTime(v.Scheduled), formatTime(v.CheckInTime), v.DisplayStatus()); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d visitors\n", len(visits))
	return nil
}

// printRequestTable prints visit requests as a formatted table.
func printRequestTable(reqs []*visit.Request) error {
	if len(reqs) == 0 {
		fmt.Println("No visit requests.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tVISITOR\tPURPOSE\tSCHEDULED\tTYPE\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t-------\t-------\t---------\t----\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, r := range reqs {
		name := "(awaiting registration)"
		if r.Visitor != nil && r.Visitor.FullName != "" {
			name = r.Visitor.FullName
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, truncate(name, 24), truncate(r.Purpose, 28), formatTime(r.Scheduled),
			r.Type.Label(), r.Status.Label()); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	return w.Flush()
}

// printStats prints the lobby counters.
func printStats(s visit.Stats) {
	fmt.Printf("Total:            %d\n", s.Total)
	fmt.Printf("Checked in:       %d\n", s.CheckedIn)
	fmt.Printf("Checked out:      %d\n", s.CheckedOut)
	fmt.Printf("Pending check-in: %d\n", s.PendingCheckIns)
	fmt.Printf("No-show:          %d\n", s.NoShow)
}

// printAnalytics prints the analytics panel.
func printAnalytics(a visit.Analytics, hosts, purposes []visit.Count) {
	fmt.Printf("Check-in rate:        %.1f%%\n", a.CheckInRate)
	fmt.Printf("Average check-in:     %s\n", a.AverageLateness)
	fmt.Printf("Peak hours:           %s\n", a.PeakHours)

	fmt.Println("\nHourly distribution:")
	for h, n := range a.Hourly {
		if n == 0 {
			continue
		}
		fmt.Printf("  %02d:00  %s %d\n", h, strings.Repeat("#", n), n)
	}

	if len(a.StatusDistribution) > 0 {
		fmt.Println("\nStatus:")
		for _, s := range a.StatusDistribution {
			fmt.Printf("  %-12s %3d  %5.1f%%\n", s.Status, s.Count, s.Percent)
		}
	}
	printCounts("Top hosts", hosts)
	printCounts("Top purposes", purposes)
}

func printCounts(title string, counts []visit.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, c := range counts {
		fmt.Printf("  %-24s %d\n", truncate(c.Name, 24), c.Count)
	}
}

// printNotifications prints notifications newest first with the unread badge.
func printNotifications(ns []notify.Notification, now time.Time) {
	unread := notify.UnreadCount(ns)
	if len(ns) == 0 {
		fmt.Println("No notifications.")
		return
	}

	header := "Notifications"
	if badge := notify.Badge(unread); badge != "" {
		header += " (" + badge + " unread)"
	}
	fmt.Println(header)
	fmt.Println()

	for _, n := range ns {
		fmt.Println(formatNotification(n, now))
	}
}

func formatNotification(n notify.Notification, now time.Time) string {
	mark := " "
	if !n.Read {
		mark = "●"
	}
	return fmt.Sprintf("%s %-9s %s\n  %s\n  [%s]", mark, notify.TimeAgo(n.Timestamp, now), n.Title, n.Message, n.ID)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
