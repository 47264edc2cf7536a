package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAdaptersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adapters",
		Short: "Inspect and test content source adapters",
	}
	cmd.AddCommand(newAdaptersTestCmd())
	return cmd
}

func newAdaptersTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "test [rss|twitter|anime|vc|all]",
		Short:     "Fetch from one adapter (or all) and print what came back",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"rss", "twitter", "anime", "vc", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "all"
			if len(args) == 1 {
				target = args[0]
			}

			app, err := buildApp("adapters-test")
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			cyan := color.New(color.FgCyan).SprintFunc()

			out := cmd.OutOrStdout()
			matched := false
			for _, adapter := range app.buildAdapters() {
				if target != "all" && adapter.Name() != target {
					continue
				}
				matched = true
				if !adapter.Enabled() {
					fmt.Fprintf(out, "%s %s (disabled)\n", yellow("SKIP"), adapter.Name())
					continue
				}
				items, err := adapter.Fetch(cmd.Context())
				if err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", red("FAIL"), adapter.Name(), err)
					continue
				}
				fmt.Fprintf(out, "%s %s: %d items\n", green("OK"), adapter.Name(), len(items))
				for _, item := range items {
					fmt.Fprintf(out, "  [%2d] %s\n       %s\n",
						item.KeywordScore, cyan(item.Title), item.URL)
				}
			}
			if !matched {
				return fmt.Errorf("unknown adapter %q", target)
			}
			return nil
		},
	}
}
