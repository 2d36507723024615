package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/lobby"
	"github.com/evcraddock/gatepass/internal/metrics"
)

func newBulkCmd() *cobra.Command {
	var allEligible bool
	var perSecond float64

	cmd := &cobra.Command{
		Use:   "bulk <no-show|checkin|checkout> [visit-id...]",
		Short: "Apply a lobby action to many visits",
		Long: `Apply a lobby action to several of today's visits, one request at a time.

Visits the action does not apply to are skipped. A failure on one visit does
not stop the rest; both lists are reported at the end.

Examples:
  gp bulk checkin 12 14 15
  gp bulk no-show --all-eligible`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := lobby.ParseAction(args[0])
			if err != nil {
				return err
			}
			var ids []int64
			for _, a := range args[1:] {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 && !allEligible {
				return fmt.Errorf("no visits selected (pass visit IDs or --all-eligible)")
			}

			c, done := newAPIClient()
			defer done()

			visits, err := c.TodayVisitors(cmd.Context())
			if err != nil {
				return err
			}
			cache := lobby.NewCache()
			cache.Set(visits, timeNow())

			if allEligible {
				ids = lobby.EligibleIDs(action, visits, timeNow())
				if len(ids) == 0 {
					fmt.Printf("No visits eligible for %s.\n", action)
					return nil
				}
			}

			metrics.Register()
			res, runErr := lobby.NewBulk(c, cache, nil, perSecond, logger).Run(cmd.Context(), action, ids)

			if isJSON() {
				failed := make(map[int64]string, len(res.Failed))
				for id, ferr := range res.Failed {
					failed[id] = ferr.Error()
				}
				if err := printJSON(map[string]interface{}{
					"action":    res.Action,
					"succeeded": res.Succeeded,
					"failed":    failed,
				}); err != nil {
					return err
				}
				return runErr
			}

			fmt.Printf("%s: %d succeeded, %d failed\n", action, len(res.Succeeded), len(res.Failed))
			for _, id := range res.Succeeded {
				fmt.Printf("  ✓ #%d\n", id)
			}
			for _, id := range res.FailedIDs() {
				fmt.Printf("  ✗ #%d: %v\n", id, res.Failed[id])
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&allEligible, "all-eligible", false, "select every visit the action applies to")
	cmd.Flags().Float64Var(&perSecond, "rate", 5, "maximum requests per second (0 for no limit)")

	return cmd
}
