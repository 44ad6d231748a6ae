package main

import "github.com/spf13/cobra"

// transferCmd implements §4.3 Transfer's "self-move only" rule: the
// sequencer only ever accepts sender == from, so <from> doubles as the
// signer and no separate --sender flag is offered.
var transferCmd = &cobra.Command{
	Use:   "transfer <from> <to> <amt> <asset>",
	Short: "Transfer an asset between addresses",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		from := args[0]
		asset, err := assetRequestArg(args[3])
		if err != nil {
			return err
		}
		nonce, err := nextNonce(from)
		if err != nil {
			return err
		}
		resp, err := post("/fvl/tx/transfer", map[string]any{
			"sender": from,
			"nonce":  nonce,
			"to":     args[1],
			"amount": args[2],
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
	rootCmd.AddCommand(transferCmd)
}
