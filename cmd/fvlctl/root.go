// Command fvlctl is the non-interactive client side of §6's CLI surface: a
// thin wrapper that turns one command into one HTTP call against fvld, or
// (for replay) one local pass over the block log. The interactive
// console/history/help/exit loop built on top of these commands is out of
// scope (§1 Non-goals, "the interactive console").
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	daemonURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "fvlctl",
	Short: "Client for the fvl sequencer",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&daemonURL, "daemon-url", envOr("FVL_DAEMON_URL", "http://localhost:8090"), "fvld base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-parseable JSON output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		os.Exit(exitCodeFor(err))
	}
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
