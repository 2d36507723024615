package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks whether the stored session is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tokens := newConfigTokens().Tokens()

	fmt.Printf("Server:  %s\n", getServerURL())
	if cfg.Username != "" {
		fmt.Printf("User:    %s\n", cfg.Username)
	}

	if tokens.Access == "" && tokens.Refresh == "" {
		fmt.Println("Session: not logged in")
		fmt.Println("\nRun 'gp login' to authenticate.")
		return nil
	}

	prefix := tokens.Access
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	fmt.Printf("Token:   %s…\n", prefix)

	c, done := newAPIClient()
	defer done()

	u, err := c.CurrentUser(cmd.Context())
	switch {
	case err == nil:
		fmt.Printf("Status:  ✓ connected as %s\n", u.DisplayName())
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Println("Status:  ✗ session expired")
		fmt.Println("\nRun 'gp login' to re-authenticate.")
	default:
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Printf("Status:  ✗ unexpected response (%d)\n", apiErr.StatusCode)
		} else {
			fmt.Printf("Status:  ✗ cannot reach server (%v)\n", err)
		}
	}

	return nil
}
