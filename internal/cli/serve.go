package cli

import (
	"github.com/spf13/cobra"

	"lookout/internal/review"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the review API server",
		Long:  "Serves the queue over HTTP for reviewing from other devices: list pending items, read drafts, approve or reject. Stops cleanly on SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp("review")
			if err != nil {
				return err
			}
			if port == "" {
				port = app.cfg.ServePort
			}
			server := review.NewServer(review.ServerConfig{
				Port:   port,
				Router: app.router,
				Logger: app.logger,
			})
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default from LOOKOUT_SERVE_PORT)")
	return cmd
}
