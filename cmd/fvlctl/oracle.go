package main

import "github.com/spf13/cobra"

var oracleSender string

var oracleUpdateCmd = &cobra.Command{
	Use:   "oracle-update <sys-id> <oracle> <value>",
	Short: "Push a new oracle reading for a system (deployer only)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := currentSender(oracleSender)
		if err != nil {
			return err
		}
		nonce, err := nextNonce(sender)
		if err != nil {
			return err
		}
		resp, err := post("/fvl/tx/oracle-update", map[string]any{
			"sender":       sender,
			"nonce":        nonce,
			"system_id":    args[0],
			"oracle_name":  args[1],
			"oracle_value": args[2],
		})
		if err != nil {
			return err
		}
		printResult(resp)
		return nil
	},
}

func init() {
	oracleUpdateCmd.Flags().StringVar(&oracleSender, "sender", "", "sender address, must equal the system's deployer (default: configured sender)")
	rootCmd.AddCommand(oracleUpdateCmd)
}
