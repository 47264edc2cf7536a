package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lookout/internal/pipeline"
)

func newPipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the fetch/score/route pipeline",
	}
	cmd.AddCommand(newPipelineRunCmd())
	return cmd
}

func newPipelineRunCmd() *cobra.Command {
	var (
		fetch bool
		score bool
		route bool
		check bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run pipeline stages (all of fetch, score, route by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// No stage flags means the full pipeline.
			if !fetch && !score && !route && !check {
				fetch, score, route = true, true, true
			}

			app, err := buildApp("pipeline")
			if err != nil {
				return err
			}

			if fetch || score || route {
				scorer, err := app.buildScorer()
				if err != nil && score {
					// Only the score stage needs models.
					return err
				}
				p := pipeline.NewPipeline(pipeline.PipelineConfig{
					Adapters:    app.buildAdapters(),
					Scorer:      scorer,
					Router:      app.router,
					Cache:       app.cache,
					PendingFile: app.cfg.PendingFile,
					ScoredFile:  app.cfg.ScoredFile,
					Notifier:    app.buildNotifier(),
					Logger:      app.logger,
				})
				summary, err := p.Run(cmd.Context(), pipeline.Options{
					Fetch: fetch,
					Score: score,
					Route: route,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"run %s: fetched %d, scored %d (dropped %d), queued %d, archived %d, skipped %d\n",
					summary.RunID, summary.Fetched, summary.Scored, summary.Dropped,
					summary.Queued, summary.Archived, summary.Skipped)
			}

			if check {
				approved, err := app.router.ScanApproved()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d approved items written to %s\n",
					len(approved), app.cfg.ApprovedFile)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fetch, "fetch", false, "run the fetch stage")
	cmd.Flags().BoolVar(&score, "score", false, "run the score stage")
	cmd.Flags().BoolVar(&route, "route", false, "run the route stage")
	cmd.Flags().BoolVar(&check, "check", false, "scan the queue for approved items")
	return cmd
}
