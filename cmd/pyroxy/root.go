package main

import (
	"github.com/spf13/cobra"

	"pyroxy/internal/domain"
)

var rootCmd = &cobra.Command{
	Use:   "pyroxy",
	Short: "CORS-bypassing HTTP forwarding proxy",
	Long: `pyroxy fetches remote URLs server-side and returns them annotated with
permissive cross-origin headers, so browser clients can read resources
their CORS policy would otherwise block.

Formats:
  /get   JSON envelope with decoded contents and status
  /json  same as /get
  /raw   upstream bytes passed through untouched
  /info  header-only probe (no body fetched)`,
	Version: domain.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
