// Package cli defines the cobra command tree for gp.
package cli

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/client"
	"github.com/evcraddock/gatepass/internal/db"
	"github.com/evcraddock/gatepass/internal/logging"
)

var (
	flagFormat string
	flagDB     string

	logger = zerolog.Nop()

	timeNow = time.Now
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gp",
		Short: "Manage visitors and gate passes",
		Long: "A client for the visitor management service. Invite visitors, run the lobby desk, " +
			"follow notifications and export reports from the command line or the local console.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadEnv()
			logger = logging.Setup(isDevMode())
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.gatepass/gatepass.db)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newWhoamiCmd(),
		newVisitsCmd(),
		newLobbyCmd(),
		newBulkCmd(),
		newNotificationsCmd(),
		newDashboardCmd(),
		newReportCmd(),
		newExportCmd(),
		newRegisterCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag or default path.
func openDB() (*sql.DB, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an API client backed by the stored session. The
// returned func releases the optional Redis connection.
func newAPIClient() (*client.Client, func()) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	c := client.New(getServerURL(), newConfigTokens())
	c.SetLogger(logger)

	addr := getRedisAddr(cfg)
	if addr == "" {
		return c, func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	c.UseRedisCache(rdb, cfg.cacheTTL(), cfg.Username)
	return c, func() {
		if err := rdb.Close(); err != nil {
			logger.Debug().Err(err).Msg("closing redis")
		}
	}
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// parseLocalTime accepts "YYYY-MM-DD HH:MM", "YYYY-MM-DDTHH:MM" or RFC 3339.
func parseLocalTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD HH:MM)", s)
}

// parseDay parses an optional YYYY-MM-DD flag value.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return t, nil
}
