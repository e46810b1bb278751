package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boyd4y/forgemcp-proteus/pkg/logging"
)

var (
	loggingType string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:     "proteus [topic] [style]",
	Short:   "Generate social media content from templates with Gemini",
	Long:    `Proteus runs a template of prompt, transform and image steps against a Gemini model and prints the result as JSON.`,
	Version: version,
	Args:    cobra.MaximumNArgs(2),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logging.Initialize(os.Stderr, loggingType, logLevel); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitLoggingSetupFailed)
		}
		includeEnv()
	},
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runGenerate(cmd, args))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCommandFailed)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&loggingType, "logging-type", logging.Tint, "logging type: json, text or tint")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&templatesDir, "templates-dir", "templates", "directory scanned for <name>/proteus.json templates")
}
