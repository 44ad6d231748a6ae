package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stateSource bool

var stateCmd = &cobra.Command{
	Use:   "state [balance <addr> | system <sys-id>]",
	Short: "Query account balances or system state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "balance":
			resp, err := get("/fvl/state/balance/" + args[1])
			if err != nil {
				return err
			}
			printResult(resp)
		case "system":
			path := "/fvl/state/system/" + args[1]
			if stateSource {
				path += "/source"
			}
			resp, err := get(path)
			if err != nil {
				return err
			}
			printResult(resp)
		default:
			return fmt.Errorf("unrecognized state query %q: expected balance or system", args[0])
		}
		return nil
	},
}

func init() {
	stateCmd.Flags().BoolVar(&stateSource, "source", false, "for 'state system', print the deployed template's original YAML instead of its decoded state")
	rootCmd.AddCommand(stateCmd)
}
