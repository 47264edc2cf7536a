// Package cli defines the lookout command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pkgconfig "lookout/pkg/config"
)

var (
	cfgFile string
	verbose bool
)

// NewRootCmd returns the root command for lookout.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lookout",
		Short:         "lookout — personal news intelligence and posting pipeline",
		Long:          "lookout fetches news from configured sources, scores it with an LLM fallback chain, and queues the good parts as markdown drafts for human review and publishing.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lookout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(newPipelineCmd())
	rootCmd.AddCommand(newAdaptersCmd())
	rootCmd.AddCommand(newQueueCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func initConfig() {
	// .env first so viper and pkg/config see the same environment.
	pkgconfig.LoadEnv(nil)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.lookout")
			viper.SetConfigName("config")
		}
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LOOKOUT")
	viper.AutomaticEnv()

	// Ignore missing config
	_ = viper.ReadInConfig()

	// Promote config-file values to env so internal/config sees them.
	for _, key := range viper.AllKeys() {
		envKey := "LOOKOUT_" + envName(key)
		if os.Getenv(envKey) == "" && viper.GetString(key) != "" {
			_ = os.Setenv(envKey, viper.GetString(key))
		}
	}

	if verbose {
		_ = os.Setenv("LOG_LEVEL", "debug")
	}
}

func envName(key string) string {
	out := make([]rune, 0, len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r-'a'+'A')
		case r == '.' || r == '-':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
