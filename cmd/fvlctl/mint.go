package main

import "github.com/spf13/cobra"

var mintSender string

var mintCmd = &cobra.Command{
	Use:   "mint <addr> <amt> <asset>",
	Short: "Mint an asset to an address (admin only)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := currentSender(mintSender)
		if err != nil {
			return err
		}
		asset, err := assetRequestArg(args[2])
		if err != nil {
			return err
		}
		nonce, err := nextNonce(sender)
		if err != nil {
			return err
		}
		resp, err := post("/fvl/tx/mint", map[string]any{
			"sender": sender,
			"nonce":  nonce,
			"to":     args[0],
			"amount": args[1],
			"asset":  asset,
		})
		if err != nil {
			return err
		}
		printResult(resp)
		return nil
	},
}

func init() {
	mintCmd.Flags().StringVar(&mintSender, "sender", "", "sender address (default: configured sender)")
	rootCmd.AddCommand(mintCmd)
}
