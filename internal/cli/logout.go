package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove stored tokens",
		Long:  "Ends the session on the server and removes the stored tokens from the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd)
		},
	}
}

func runLogout(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.AccessToken == "" && cfg.RefreshToken == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	c, done := newAPIClient()
	defer done()

	if err := c.Logout(cmd.Context()); err != nil {
		fmt.Printf("warning: server logout failed: %v\n", err)
	}

	fmt.Println("✓ Logged out. Tokens removed.")
	return nil
}
