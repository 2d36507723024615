package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/client"
)

func newDashboardCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show dashboard metrics and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			metrics, err := c.DashboardMetrics(cmd.Context())
			if err != nil {
				return err
			}
			activities, err := c.RecentActivities(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(map[string]interface{}{
					"metrics":    metrics,
					"activities": activities,
				})
			}
			return printDashboard(metrics, activities)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "activity page")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "activities per page")

	return cmd
}

func printDashboard(metrics []client.DashboardMetric, page *client.ActivityPage) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range metrics {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", m.Label, m.Value); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing metrics: %w", err)
	}

	fmt.Println("\nRecent activity:")
	if len(page.Results) == 0 {
		fmt.Println("  No recent activity.")
		return nil
	}
	for _, a := range page.Results {
		when := a.TimeDisplay
		if when == "" {
			when = formatTime(a.Time)
		}
		fmt.Printf("  [%s] %s\n", when, a.Message)
		if a.Details != "" {
			fmt.Printf("      %s\n", a.Details)
		}
	}
	if page.TotalPages > 1 {
		fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.Count)
	}
	return nil
}
