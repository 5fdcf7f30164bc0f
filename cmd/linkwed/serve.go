// Serve command: runs the backend HTTP server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linkwed/linkwed/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the invitation backend server",
	Long: `Run the HTTP backend: invitation document API, asset upload and
serving, and the built frontend when one is present. Configuration comes
from LINKWED_* environment variables; --data-dir overrides the document
location.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := server.ParseEnv()
		if err != nil {
			fmt.Fprintln(os.Stderr, "serve:", err)
			os.Exit(exitUserError)
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.Run(ctx, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "serve:", err)
			os.Exit(exitSysError)
		}
		return nil
	},
}
