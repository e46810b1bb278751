package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/boyd4y/forgemcp-proteus/pkg/gemini"
)

const healthModel = "gemini-2.0-flash"

var (
	healthAPIKey  string
	healthTimeout time.Duration
	healthList    bool
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check Gemini credentials and connectivity",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runHealth(cmd.Context()))
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthAPIKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY)")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 30*time.Second, "deadline for the check")
	healthCmd.Flags().BoolVar(&healthList, "list-models", false, "also list available models")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(ctx context.Context) int {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	cfg := gemini.ConfigFromEnv(healthAPIKey)
	logAuth(cfg)

	client, err := gemini.NewClient(ctx, cfg)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		return exitHealthCheckFailed
	}

	reply, err := client.Ping(ctx, healthModel)
	if err != nil {
		slog.Error("ping failed", "model", healthModel, "error", err)
		return exitHealthCheckFailed
	}
	slog.Info("ping ok", "model", healthModel, "reply", reply)

	if healthList {
		models, err := client.ListModels(ctx)
		if err != nil {
			slog.Error("listing models failed", "error", err)
			return exitHealthCheckFailed
		}
		for _, m := range models {
			fmt.Println(m)
		}
	}
	return 0
}
