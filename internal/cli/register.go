package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/client"
	"github.com/evcraddock/gatepass/internal/visit"
)

func newRegisterCmd() *cobra.Command {
	var name, email, contact, address string
	var show bool

	cmd := &cobra.Command{
		Use:   "register <token>",
		Short: "Fill in a visitor registration link",
		Long: `Submit visitor details for the registration token from an invitation link.
No login is required.

Examples:
  gp register 5b1f0f5c-3a4e-4f0e-9d7a-0c1f2e3d4b5a --show
  gp register 5b1f0f5c-3a4e-4f0e-9d7a-0c1f2e3d4b5a --name "Ann Lee" --email ann@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			if _, err := client.ParseFormToken(token); err != nil {
				return err
			}

			c := client.New(getServerURL(), nil)
			c.SetLogger(logger)

			if show {
				form, err := c.VisitorForm(cmd.Context(), token)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(form)
				}
				d := form.VisitDetails
				fmt.Printf("Visit with %s\n", d.EmployeeName)
				fmt.Printf("  Purpose:   %s\n", d.Purpose)
				fmt.Printf("  Scheduled: %s\n", formatTime(d.Scheduled))
				if form.Message != "" {
					fmt.Printf("\n%s\n", form.Message)
				}
				return nil
			}

			v := visit.Visitor{FullName: name, Email: email, Contact: contact, Address: address}
			if err := visit.NewValidator().Validate(v); err != nil {
				return err
			}

			res, err := c.SubmitVisitorForm(cmd.Context(), token, v)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(res)
			}
			fmt.Printf("✓ %s\n", res.Message)
			fmt.Printf("  Visit #%d for %s at %s\n", res.VisitID, res.VisitorName, formatTime(res.Scheduled))
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "show the visit details instead of submitting")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&contact, "contact", "", "phone number")
	cmd.Flags().StringVar(&address, "address", "", "address")

	return cmd
}
