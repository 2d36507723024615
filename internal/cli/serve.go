package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/lobby"
	"github.com/evcraddock/gatepass/internal/notify"
	"github.com/evcraddock/gatepass/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int
	var token string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local lobby console",
		Long: `Start an HTTP console for the logged-in user.

The console polls the visitor list, derives notifications, serves the list,
analytics, reports and exports as JSON or files, runs bulk lobby actions and
exposes Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("GP_CONSOLE_TOKEN")
			}
			return runServe(cmd, port, token)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8081, "port to listen on")
	cmd.Flags().StringVar(&token, "token", "", "bearer token required by the console API (default: $GP_CONSOLE_TOKEN)")

	return cmd
}

func runServe(cmd *cobra.Command, port int, token string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	cfg, _ := loadConfig()

	cache, hub := lobby.NewCache(), lobby.NewHub()
	poller := lobby.NewPoller(lobby.PollerConfig{Interval: cfg.pollInterval()}, s.source, cache, hub, s.repo, logger)
	if err := poller.Warm(); err != nil {
		logger.Warn().Err(err).Msg("loading visitor snapshot")
	}

	watcher := notify.NewWatcher(notify.WatcherConfig{Interval: cfg.pollInterval()}, cache, s.center,
		func(n notify.Notification) {
			logger.Info().Str("id", n.ID).Str("type", string(n.Kind)).Msg(n.Title + ": " + n.Message)
		}, logger)

	var bulk *lobby.Bulk
	if s.user.IsLobbyAttendant() {
		bulk = lobby.NewBulk(s.client, cache, hub, 5, logger)
	}

	srv := web.NewServer(cache, s.center, bulk, logger, web.Config{Token: token})

	unsubscribe := hub.Subscribe(func() {
		if _, err := watcher.Poll(ctx); err != nil {
			logger.Error().Err(err).Msg("deriving notifications")
		}
	})
	defer unsubscribe()

	go poller.Start(ctx)
	defer poller.Stop()

	logger.Info().Str("user", s.user.Username).Bool("attendant", s.user.IsLobbyAttendant()).Msg("console ready")
	return srv.ListenAndServe(ctx, port)
}
