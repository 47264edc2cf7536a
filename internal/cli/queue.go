package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lookout/internal/notify"
	"lookout/internal/publish"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Work with the review queue",
	}
	cmd.AddCommand(newQueueListCmd())
	cmd.AddCommand(newQueueScanCmd())
	cmd.AddCommand(newQueueMarkPublishedCmd())
	cmd.AddCommand(newQueuePublishCmd())
	return cmd
}

func newQueueListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queue files and their review status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp("queue")
			if err != nil {
				return err
			}
			entries, err := app.router.ListQueue()
			if err != nil {
				return err
			}
			statusColor := map[string]func(a ...interface{}) string{
				"pending":   color.New(color.FgYellow).SprintFunc(),
				"approved":  color.New(color.FgGreen).SprintFunc(),
				"rejected":  color.New(color.FgRed).SprintFunc(),
				"published": color.New(color.FgCyan).SprintFunc(),
			}
			for _, e := range entries {
				paint := statusColor[e.Status]
				if paint == nil {
					paint = fmt.Sprint
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s [%2d] %s\n", paint(e.Status), e.Score, e.File)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "queue is empty")
			}
			return nil
		},
	}
}

func newQueueScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Collect approved queue files into the publish manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp("queue")
			if err != nil {
				return err
			}
			approved, err := app.router.ScanApproved()
			if err != nil {
				return err
			}
			for _, item := range approved {
				fmt.Fprintf(cmd.OutOrStdout(), "approved: %s (%s)\n", item.File, item.Title)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d items written to %s\n", len(approved), app.cfg.ApprovedFile)
			return nil
		},
	}
}

func newQueueMarkPublishedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-published <file>...",
		Short: "Mark queue files as published so rescans skip them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp("queue")
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := app.router.MarkPublished(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "published: %s\n", name)
			}
			return nil
		},
	}
}

func newQueuePublishCmd() *cobra.Command {
	var outboxDir string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Send approved items through the sanitizer gate and rate limit",
		Long:  "Scans the queue for approved files and publishes them: email drafts when SMTP is configured, otherwise JSON files in the outbox directory. Published files are marked so they are not sent twice.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp("publish")
			if err != nil {
				return err
			}
			approved, err := app.router.ScanApproved()
			if err != nil {
				return err
			}
			if len(approved) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing approved to publish")
				return nil
			}

			st, err := app.openStats()
			if err != nil {
				return err
			}

			var publisher publish.Publisher
			if app.cfg.SMTPHost != "" && app.cfg.NotifyEmail != "" {
				smtp := notify.SMTPConfig{
					Host:     app.cfg.SMTPHost,
					Port:     app.cfg.SMTPPort,
					User:     app.cfg.SMTPUser,
					Password: app.cfg.SMTPPassword,
					From:     app.cfg.SMTPFrom,
					FromName: "lookout",
				}
				publisher = publish.NewEmailPublisher(publish.EmailPublisherConfig{
					Sender: notify.NewEmailSender(smtp),
					SMTP:   smtp,
					To:     app.cfg.NotifyEmail,
					Logger: app.logger,
				})
			} else {
				publisher = publish.NewOutboxPublisher(outboxDir, app.logger)
			}

			var humanizer *publish.Humanizer
			if app.cfg.HumanizerURL != "" {
				humanizer = publish.NewHumanizer(app.cfg.HumanizerURL, app.cfg.HumanizerTimeout, app.logger)
			}

			dispatcher := publish.NewDispatcher(publish.DispatcherConfig{
				Publisher:        publisher,
				Humanizer:        humanizer,
				Stats:            st,
				MaxPostsPerDay:   app.cfg.MaxPostsPerDay,
				MaxRepliesPerDay: app.cfg.MaxRepliesPerDay,
				Logger:           app.logger,
			})
			result, err := dispatcher.PublishAll(cmd.Context(), approved)
			if err != nil {
				return err
			}

			// Flip published files so the next scan skips them.
			for _, name := range result.PublishedFiles {
				if err := app.router.MarkPublished(name); err != nil {
					app.logger.WithField("file", name).WithError(err).Warn("Could not mark file published")
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %d, blocked %d, rate-limited %d\n",
				result.Published, result.Blocked, result.RateLimited)
			return nil
		},
	}

	cmd.Flags().StringVar(&outboxDir, "outbox", "data/outbox", "outbox directory used when SMTP is not configured")
	return cmd
}
