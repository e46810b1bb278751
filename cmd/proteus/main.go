package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

var version = "dev"

const (
	_ = iota
	exitCommandFailed
	exitDotenvError
	exitLoggingSetupFailed
	exitInvalidArguments
	exitLoadInputFailed
	exitLoadTemplatesFailed
	exitGenerateFailed
	exitWriteMetricsFailed
	exitInitFailed
	exitHealthCheckFailed
)

func main() {
	Execute()
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Debug("using .env file")
	}
}
