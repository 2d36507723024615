package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/client"
	"github.com/evcraddock/gatepass/internal/visit"
)

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Run the lobby desk",
		Long:  "Lobby attendant commands: today's visitors, check-in and check-out, walk-ins and lobby statistics.",
	}

	cmd.AddCommand(
		newLobbyTodayCmd(),
		newLobbyAllCmd(),
		newLobbyCheckCmd("checkin", "Check a visitor in by visitor ID", (*client.Client).CheckIn),
		newLobbyCheckCmd("checkout", "Check a visitor out by visitor ID", (*client.Client).CheckOut),
		newLobbyWalkInCmd(),
		newLobbyConvertCmd(),
		newLobbyStatsCmd(),
		newLobbyAnalyticsCmd(),
	)

	return cmd
}

func newLobbyTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List today's approved visitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			visits, err := c.TodayVisitors(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(visits)
			}
			return printVisitTable(visits)
		},
	}
}

// rangeFlags are the --start/--end pair shared by ranged commands.
type rangeFlags struct {
	start, end string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.end, "end", "", "last day (YYYY-MM-DD)")
}

func (r *rangeFlags) parse() (time.Time, time.Time, error) {
	start, err := parseDay(r.start)
	if err != nil {
		return start, time.Time{}, err
	}
	end, err := parseDay(r.end)
	if err != nil {
		return start, end, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("--end is before --start")
	}
	return start, end, nil
}

// fetchRange returns every visit in the range, defaulting to the current week.
func fetchRange(ctx context.Context, c *client.Client, r rangeFlags) ([]*visit.Visit, time.Time, time.Time, error) {
	start, end, err := r.parse()
	if err != nil {
		return nil, start, end, err
	}
	visits, err := c.TodayAllVisits(ctx, start, end)
	return visits, start, end, err
}

func newLobbyAllCmd() *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "all",
		Short: "List every visit in a date range",
		Long:  "List every visit between --start and --end. Without a range the server returns the current week.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			visits, _, _, err := fetchRange(cmd.Context(), c, rf)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(visits)
			}
			return printVisitTable(visits)
		},
	}
	rf.register(cmd)

	return cmd
}

type lobbyAction func(*client.Client, context.Context, int64) (*client.LobbyResponse, error)

func newLobbyCheckCmd(name, short string, action lobbyAction) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <visitor-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, done := newAPIClient()
			defer done()

			resp, err := action(c, cmd.Context(), id)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(resp)
			}

			fmt.Printf("✓ %s\n", resp.Message)
			if resp.Visitor.Name != "" {
				fmt.Printf("  Visitor: %s\n", resp.Visitor.Name)
			}
			if t, ok := visit.ParseTimestamp(resp.CheckInTime + resp.CheckOutTime); ok {
				fmt.Printf("  At:      %s\n", t.Local().Format("15:04"))
			}
			return nil
		},
	}
}

// walkInFlags are the visitor fields of a walk-in.
type walkInFlags struct {
	name, email, contact, address, purpose, at string
}

func (f *walkInFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "visitor full name (required)")
	cmd.Flags().StringVar(&f.email, "email", "", "visitor email (required)")
	cmd.Flags().StringVar(&f.contact, "contact", "", "visitor phone number")
	cmd.Flags().StringVar(&f.address, "address", "", "visitor address")
	cmd.Flags().StringVarP(&f.purpose, "purpose", "p", "", "purpose (default: "+client.DefaultWalkInPurpose+")")
	cmd.Flags().StringVar(&f.at, "at", "", "arrival time (default: now)")
}

// build validates the flags into a walk-in payload.
func (f *walkInFlags) build() (visit.WalkInRequest, error) {
	w := visit.WalkInRequest{
		FullName: f.name,
		Email:    f.email,
		Contact:  f.contact,
		Address:  f.address,
		Purpose:  f.purpose,
	}
	if w.Purpose == "" {
		w.Purpose = client.DefaultWalkInPurpose
	}
	if f.at != "" {
		t, err := parseLocalTime(f.at)
		if err != nil {
			return w, err
		}
		w.Scheduled = t.Format(time.RFC3339)
	}
	if err := visit.NewValidator().Validate(w); err != nil {
		return w, err
	}
	return w, nil
}

func printWalkIn(resp *client.WalkInResponse) error {
	if isJSON() {
		return printJSON(resp)
	}
	fmt.Printf("✓ %s\n", resp.Message)
	fmt.Printf("  Visit #%d for %s (%s)\n", resp.VisitID, resp.VisitorName, resp.Purpose)
	return nil
}

func newLobbyWalkInCmd() *cobra.Command {
	var f walkInFlags

	cmd := &cobra.Command{
		Use:   "walkin",
		Short: "Register an unscheduled visitor",
		Long: `Register a walk-in visitor at the desk.

Examples:
  gp lobby walkin --name "Ann Lee" --email ann@example.com --contact "555 010 0199"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := f.build()
			if err != nil {
				return err
			}

			c, done := newAPIClient()
			defer done()

			resp, err := c.CreateWalkIn(cmd.Context(), w)
			if err != nil {
				return err
			}
			return printWalkIn(resp)
		},
	}
	f.register(cmd)

	return cmd
}

func newLobbyConvertCmd() *cobra.Command {
	var f walkInFlags

	cmd := &cobra.Command{
		Use:   "convert <visit-id>",
		Short: "Convert a late scheduled visit into a walk-in",
		Long:  "Turns a scheduled visit that has not checked in into a walk-in so it is no longer marked as a no-show.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			w, err := f.build()
			if err != nil {
				return err
			}

			c, done := newAPIClient()
			defer done()

			resp, err := c.ConvertToWalkIn(cmd.Context(), id, w)
			if err != nil {
				return err
			}
			return printWalkIn(resp)
		},
	}
	f.register(cmd)

	return cmd
}

func newLobbyStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's lobby counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			visits, err := c.TodayVisitors(cmd.Context())
			if err != nil {
				return err
			}
			stats := visit.ComputeStats(visits)
			if isJSON() {
				return printJSON(stats)
			}
			printStats(stats)
			return nil
		},
	}
}

type analyticsOutput struct {
	visit.Analytics
	TopHosts    []visit.Count `json:"topHosts"`
	TopPurposes []visit.Count `json:"topPurposes"`
}

func newLobbyAnalyticsCmd() *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show visit analytics for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			visits, start, end, err := fetchRange(cmd.Context(), c, rf)
			if err != nil {
				return err
			}
			visits = visit.InRange(visits, start, end)

			out := analyticsOutput{
				Analytics:   visit.ComputeAnalytics(visits),
				TopHosts:    visit.TopHosts(visits, 5),
				TopPurposes: visit.TopPurposes(visits, 5),
			}
			if isJSON() {
				return printJSON(out)
			}
			printAnalytics(out.Analytics, out.TopHosts, out.TopPurposes)
			return nil
		},
	}
	rf.register(cmd)

	return cmd
}
