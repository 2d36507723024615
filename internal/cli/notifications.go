package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/gatepass/internal/metrics"
	"github.com/evcraddock/gatepass/internal/notify"
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Show visitor notifications",
		Long: `Show notifications derived from your visitors: upcoming arrivals, check-ins,
check-outs, late reminders and possible no-shows. Read state is kept per day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotificationsList(cmd.Context())
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List current notifications",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runNotificationsList(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "read <id>",
			Short: "Mark a notification as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runNotificationsRead(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every current notification as read",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runNotificationsReadAll(cmd.Context())
			},
		},
		newNotificationsWatchCmd(),
	)

	return cmd
}

func runNotificationsList(ctx context.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	visits, err := s.source.Visitors(ctx)
	if err != nil {
		return err
	}
	ns := s.center.List(visits)

	if isJSON() {
		return printJSON(ns)
	}
	printNotifications(ns, time.Now())
	return nil
}

func runNotificationsRead(ctx context.Context, id string) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.center.MarkRead(id); err != nil {
		return fmt.Errorf("marking %s read: %w", id, err)
	}
	fmt.Printf("✓ %s marked as read\n", id)
	return nil
}

func runNotificationsReadAll(ctx context.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	visits, err := s.source.Visitors(ctx)
	if err != nil {
		return err
	}
	ns, err := s.center.MarkAllRead(visits)
	if err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	fmt.Printf("✓ %d notifications marked as read\n", len(ns))
	return nil
}

func newNotificationsWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print new notifications as they appear",
		Long:  "Polls your visitors and prints each new unread notification until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			if interval <= 0 {
				cfg, _ := loadConfig()
				interval = cfg.pollInterval()
			}

			metrics.Register()
			w := notify.NewWatcher(notify.WatcherConfig{Interval: interval}, s.source, s.center,
				func(n notify.Notification) {
					if isJSON() {
						if err := printJSON(n); err != nil {
							logger.Warn().Err(err).Msg("printing notification")
						}
						return
					}
					fmt.Println(formatNotification(n, time.Now()))
				}, logger)

			fmt.Printf("Watching notifications for %s every %s (Ctrl-C to stop)\n\n", s.user.Username, interval)
			w.Start(ctx)
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default: from config or 30s)")

	return cmd
}
