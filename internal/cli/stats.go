package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show daily publishing activity",
		Long:  "Prints posts and replies per day over the retained window, plus today's remaining budget under the daily caps.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp("stats")
			if err != nil {
				return err
			}
			st, err := app.openStats()
			if err != nil {
				return err
			}

			for _, day := range st.History() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  posts: %d  replies: %d\n", day.Date, day.Posts, day.Replies)
			}
			today := st.Today()
			fmt.Fprintf(cmd.OutOrStdout(), "today: %d/%d posts, %d/%d replies\n",
				today.Posts, app.cfg.MaxPostsPerDay, today.Replies, app.cfg.MaxRepliesPerDay)
			return nil
		},
	}
}
