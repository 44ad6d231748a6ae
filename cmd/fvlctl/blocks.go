package main

import "github.com/spf13/cobra"

var blocksCmd = &cobra.Command{
	Use:   "blocks [number]",
	Short: "Show the chain tip, or a specific block by number",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		var err error
		if len(args) == 0 {
			resp, err = get("/fvl/blocks/tip")
		} else {
			resp, err = get("/fvl/blocks/" + args[0])
		}
		if err != nil {
			return err
		}
		printResult(resp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blocksCmd)
}
