package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/notify"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done := newAPIClient()
			defer done()

			u, err := c.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(u)
			}

			fmt.Printf("%s (%s)\n", u.DisplayName(), u.Username)
			if u.Email != "" {
				fmt.Printf("  Email: %s\n", u.Email)
			}
			fmt.Printf("  Roles: %s\n", strings.Join(u.Groups, ", "))
			if path := notify.LandingPath(u); path != "" {
				fmt.Printf("  Home:  %s\n", path)
			}
			return nil
		},
	}
}
