package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/client"
	"github.com/evcraddock/gatepass/internal/notify"
)

func newLoginCmd() *cobra.Command {
	var server, username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a session",
		Long:  "Authenticates with username and password and stores the access and refresh tokens.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, server, username, os.Stdin)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or "+defaultServerURL+")")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, serverFlag, username string, in io.Reader) error {
	reader := bufio.NewReader(in)

	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("no username provided")
	}

	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	fmt.Println()

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	cfg.Username = username
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	c := client.New(getServerURL(), newConfigTokens())
	c.SetLogger(logger)

	resp, err := c.Login(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if isJSON() {
		return printJSON(resp.User)
	}

	fmt.Printf("✓ Logged in as %s (%s)\n", resp.User.DisplayName(), strings.Join(resp.User.Groups, ", "))
	if path := notify.LandingPath(&resp.User); path != "" {
		fmt.Printf("  Home: %s\n", path)
	}
	return nil
}
