package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finvault/fvl/pkg/blocklog"
	"github.com/finvault/fvl/pkg/ir"
	"github.com/finvault/fvl/pkg/sequencer"
)

// replayCmd re-executes the block log directly against the filesystem
// (§4.4 "Replay"), independent of a running fvld, since the daemon already
// does this at startup and a standalone check must not require it.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay the local block log from genesis and verify its state root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := os.Getenv("FVL_DATA_DIR")
		if dataDir == "" {
			dataDir = "./data"
		}
		adminHex := os.Getenv("FVL_ADMIN_ADDRESS")
		if adminHex == "" {
			return fmt.Errorf("FVL_ADMIN_ADDRESS is required")
		}
		admin, err := ir.ParseAddress(adminHex)
		if err != nil {
			return fmt.Errorf("FVL_ADMIN_ADDRESS: %w", err)
		}

		log, err := blocklog.Open(filepath.Join(dataDir, "blocks.log"))
		if err != nil {
			return err
		}
		defer log.Close()
		if err := log.Scan(); err != nil {
			return err
		}

		_, seq, err := sequencer.Rebuild(admin, log, sequencer.WallClock)
		if err != nil {
			return err
		}

		tip, ok := log.Tip()
		var root string
		if ok {
			root = fmt.Sprintf("0x%x", tip.StateRoot)
		}
		printResult(map[string]any{
			"blocks_replayed": log.Len(),
			"tip":             seq.Tip(),
			"state_root":      root,
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
