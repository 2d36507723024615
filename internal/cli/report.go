package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/visit"
)

// reportFlags are the report filter flags.
type reportFlags struct {
	rangeFlags
	status, employee, visitType string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	f.rangeFlags.register(cmd)
	cmd.Flags().StringVar(&f.status, "status", "", "status filter (approved|pending|no_show|checked_in|checked_out|all)")
	cmd.Flags().StringVar(&f.employee, "employee", "", "host username filter")
	cmd.Flags().StringVar(&f.visitType, "visit-type", "", "visit type filter (scheduled|walkin)")
}

func (f *reportFlags) filter() (visit.ReportFilter, error) {
	start, end, err := f.parse()
	if err != nil {
		return visit.ReportFilter{}, err
	}
	return visit.ReportFilter{
		Start:    start,
		End:      end,
		Status:   f.status,
		Employee: f.employee,
		Type:     f.visitType,
	}, nil
}

func newReportCmd() *cobra.Command {
	var f reportFlags
	var download, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the visitor report",
		Long: `Show the server's visitor report for a date range.

With --download the server renders the report (csv, excel or pdf) and it is
saved to --output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}

			c, done := newAPIClient()
			defer done()

			if download != "" {
				if output == "" {
					return fmt.Errorf("--output is required with --download")
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				if err := c.DownloadReport(cmd.Context(), download, filter, file); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("closing %s: %w", output, err)
				}
				fmt.Printf("✓ Report saved to %s\n", output)
				return nil
			}

			r, err := c.Report(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(r)
			}
			return printReport(r)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&download, "download", "", "download the server-rendered report (csv|excel|pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to save the download to")

	return cmd
}

func printReport(r *visit.Report) error {
	fmt.Printf("Total visitors:    %d\n", r.Total)
	fmt.Printf("Checked in:        %d\n", r.CheckedIn)
	fmt.Printf("Checked out:       %d\n", r.CheckedOut)
	fmt.Printf("No-show:           %d\n", r.NoShow)
	fmt.Printf("Pending:           %d\n", r.Pending)
	fmt.Printf("Average check-in:  %s\n", r.AverageCheckInTime)
	fmt.Printf("Peak hours:        %s\n", r.PeakHours)

	if len(r.TopEmployees) > 0 {
		fmt.Println("\nTop employees:")
		for _, h := range r.TopEmployees {
			fmt.Printf("  %-24s %d\n", truncate(h.Name, 24), h.Visitors)
		}
	}
	if len(r.TopPurposes) > 0 {
		fmt.Println("\nTop purposes:")
		for _, p := range r.TopPurposes {
			fmt.Printf("  %-24s %d\n", truncate(p.Purpose, 24), p.Count)
		}
	}

	fmt.Println()
	return printVisitTable(r.Visitors)
}
