package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/client"
	"github.com/evcraddock/gatepass/internal/visit"
)

// ErrPastSchedule is returned when a visit is scheduled before now.
var ErrPastSchedule = errors.New("cannot create a visit request for a time that has already passed")

func newVisitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Manage visit requests",
		Long:  "Invite visitors, reschedule visits and approve, reject or cancel requests.",
	}

	cmd.AddCommand(
		newVisitsListCmd(),
		newVisitsPendingCmd(),
		newVisitsCreateCmd(),
		newVisitsUpdateCmd(),
		newVisitActionCmd("approve", "Approve a pending visit request", (*client.Client).Approve),
		newVisitActionCmd("reject", "Reject a pending visit request", (*client.Client).Reject),
		newVisitActionCmd("cancel", "Cancel an approved visit", (*client.Client).Cancel),
		newVisitActionCmd("no-show", "Mark an approved visit as a no-show", (*client.Client).MarkNoShow),
		newVisitActionCmd("check-in", "Check a visit in by visit ID", (*client.Client).CheckInVisit),
		newVisitActionCmd("check-out", "Check a visit out by visit ID", (*client.Client).CheckOutVisit),
	)

	return cmd
}

func newVisitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your visit requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			reqs, err := c.ListVisitRequests(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(reqs)
			}
			return printRequestTable(reqs)
		},
	}
}

func newVisitsPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List visit requests awaiting approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			reqs, err := c.PendingVisitRequests(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(reqs)
			}
			return printRequestTable(reqs)
		},
	}
}

func newVisitsCreateCmd() *cobra.Command {
	var purpose, at, visitType string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Invite a visitor",
		Long: `Create a visit request and print the registration link to send the visitor.

Time format: YYYY-MM-DD HH:MM (local time)

Examples:
  gp visits create --purpose "Quarterly review" --at "2026-10-21 14:30"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVisitsCreate(cmd.Context(), purpose, at, visitType, time.Now())
		},
	}

	cmd.Flags().StringVarP(&purpose, "purpose", "p", "", "purpose of the visit (required)")
	cmd.Flags().StringVar(&at, "at", "", "scheduled time (required)")
	cmd.Flags().StringVar(&visitType, "type", string(visit.Scheduled), "visit type (scheduled|walkin)")

	return cmd
}

// buildNewRequest validates the create flags into a request payload.
func buildNewRequest(purpose, at, visitType string, now time.Time) (visit.NewRequest, error) {
	req := visit.NewRequest{Purpose: purpose, Type: visit.Type(visitType)}
	if at != "" {
		t, err := parseLocalTime(at)
		if err != nil {
			return req, err
		}
		if t.Before(now) {
			return req, ErrPastSchedule
		}
		req.Scheduled = t.Format(time.RFC3339)
	}
	if err := visit.NewValidator().Validate(req); err != nil {
		return req, err
	}
	return req, nil
}

func runVisitsCreate(ctx context.Context, purpose, at, visitType string, now time.Time) error {
	req, err := buildNewRequest(purpose, at, visitType, now)
	if err != nil {
		return err
	}

	c, done := newAPIClient()
	defer done()

	created, err := c.CreateVisitRequest(ctx, req)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(created)
	}

	fmt.Printf("Visit request #%d created for %s (%s)\n", created.ID, formatTime(created.Scheduled), created.Status.Label())
	if created.InvitationLink != "" {
		fmt.Printf("  Registration link: %s\n", created.InvitationLink)
	} else if created.Token != "" {
		fmt.Printf("  Registration token: %s\n", created.Token)
	}
	return nil
}

func newVisitsUpdateCmd() *cobra.Command {
	var purpose, at string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the purpose or time of a visit request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			fields := map[string]interface{}{}
			if purpose != "" {
				fields["purpose"] = purpose
			}
			if at != "" {
				t, err := parseLocalTime(at)
				if err != nil {
					return err
				}
				if t.Before(time.Now()) {
					return ErrPastSchedule
				}
				fields["scheduled_time"] = t.Format(time.RFC3339)
			}
			if len(fields) == 0 {
				return fmt.Errorf("nothing to update (use --purpose or --at)")
			}

			c, done := newAPIClient()
			defer done()

			updated, err := c.UpdateVisitRequest(cmd.Context(), id, fields)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(updated)
			}
			fmt.Printf("Visit request #%d updated: %s at %s\n", updated.ID, updated.Purpose, formatTime(updated.Scheduled))
			return nil
		},
	}

	cmd.Flags().StringVarP(&purpose, "purpose", "p", "", "new purpose")
	cmd.Flags().StringVar(&at, "at", "", "new scheduled time (YYYY-MM-DD HH:MM)")

	return cmd
}

type visitAction func(*client.Client, context.Context, int64) (string, error)

func newVisitActionCmd(name, short string, action visitAction) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, done := newAPIClient()
			defer done()

			msg, err := action(c, cmd.Context(), id)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(client.MessageResponse{Message: msg})
			}
			if msg == "" {
				msg = "done"
			}
			fmt.Printf("✓ #%d: %s\n", id, msg)
			return nil
		},
	}
}

// parseID parses a positive numeric ID argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}
