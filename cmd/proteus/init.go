package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boyd4y/forgemcp-proteus/pkg/processing"
)

var initGlobal bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter proteus.json",
	Long:  `Init writes an empty template configuration. Without a path it writes ./proteus.json, or ~/.config/proteus/proteus.json with --global.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runInit(args))
	},
}

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write to the user config directory")
	rootCmd.AddCommand(initCmd)
}

func runInit(args []string) int {
	path := processing.ConfigFileName
	switch {
	case len(args) > 0:
		path = args[0]
	case initGlobal:
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to locate home directory", "error", err)
			return exitInitFailed
		}
		path = filepath.Join(home, ".config", "proteus", processing.ConfigFileName)
	}

	if err := processing.WriteStarterConfig(path); err != nil {
		slog.Error("failed to write config", "path", path, "error", err)
		return exitInitFailed
	}
	slog.Info("wrote config", "path", path)
	return 0
}
