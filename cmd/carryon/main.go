// Package main provides the entry point for the carryon CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/carryon/cmd/carryon/app"
	"github.com/agentstation/carryon/pkg/constants"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	runErr := application.Execute(ctx, os.Args[1:])

	// Shut down with a fresh context (the signal context may be cancelled)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		// Log shutdown error, but don't let it mask the original error
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown error")
		if runErr == nil {
			runErr = shutdownErr
		}
	}
	app.ExitOnError(runErr)
}
