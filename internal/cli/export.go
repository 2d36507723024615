package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/export"
	"github.com/evcraddock/gatepass/internal/visit"
)

func newExportCmd() *cobra.Command {
	var f reportFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export <csv|xlsx|pdf>",
		Short: "Export visitors to a file",
		Long: `Fetch visits for a date range and render them locally as CSV, Excel or PDF.

The file is named visitor_report_<date>.<ext> unless --output is given.

Examples:
  gp export csv
  gp export pdf --start 2026-10-01 --end 2026-10-19 --status no_show`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			filter, err := f.filter()
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			var visits []*visit.Visit
			if s.user.IsLobbyAttendant() {
				visits, err = s.client.TodayAllVisits(cmd.Context(), filter.Start, filter.End)
			} else {
				visits, err = s.source.Visitors(cmd.Context())
			}
			if err != nil {
				return err
			}

			now := timeNow()
			report := visit.BuildReport(filter.Apply(visits))

			var buf bytes.Buffer
			if err := export.Write(&buf, format, report, now); err != nil {
				return err
			}

			if output == "" {
				output = export.FileName(format, filter.Start, filter.End, now)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			if isJSON() {
				return printJSON(map[string]interface{}{"file": output, "visitors": report.Total})
			}
			fmt.Printf("✓ Exported %d visitors to %s\n", report.Total, output)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	return cmd
}
