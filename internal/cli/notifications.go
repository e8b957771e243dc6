package cli

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"activity"},
	Short:   "Follow the activity feed",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		items, err := client.Notifications(cmd.Context(), limit)
		if err != nil {
			return err
		}

		return render(outputFormat(cmd), items, func() {
			t := newTable("TIME", "ACTION", "ENTITY", "DETAILS", "READ")
			for _, n := range items {
				read := ""
				if n.IsRead {
					read = "✓"
				}
				t.addRow(n.Timestamp.Format("15:04:05"), n.Action, n.Entity, n.Details, read)
			}
			t.render()
			if count, err := client.UnreadNotificationCount(cmd.Context()); err == nil {
				info("%d unread", count)
			}
		})
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Mark activity as read",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if err := client.MarkAllNotificationsRead(cmd.Context()); err != nil {
				return err
			}
			success("Marked all activity as read")
			return nil
		}
		if err := client.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
			return err
		}
		success("Marked %s as read", args[0])
		return nil
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream activity live over NATS",
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		subject, _ := cmd.Flags().GetString("subject")

		nc, err := nats.Connect(natsURL)
		if err != nil {
			return err
		}
		defer nc.Close()

		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			var n console.Notification
			if err := json.Unmarshal(msg.Data, &n); err != nil {
				errorf("bad message: %v", err)
				return
			}
			info("%s  %-6s %-12s %s", n.Timestamp.Format("15:04:05"), n.Action, n.Entity, n.Details)
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		info("Watching %s on %s (Ctrl-C to stop)", subject, natsURL)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsWatchCmd)

	notificationsListCmd.Flags().Int("limit", 50, "number of entries to fetch")
	notificationsWatchCmd.Flags().String("nats-url", nats.DefaultURL, "NATS server URL")
	notificationsWatchCmd.Flags().String("subject", "console.notifications", "NATS subject")
}
