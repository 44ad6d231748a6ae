package main

import (
	"os"

	"github.com/spf13/cobra"
)

var deploySender string

var deployCmd = &cobra.Command{
	Use:   "deploy <file>",
	Short: "Deploy a template file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := currentSender(deploySender)
		if err != nil {
			return err
		}
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		nonce, err := nextNonce(sender)
		if err != nil {
			return err
		}
		resp, err := post("/fvl/tx/deploy", map[string]any{
			"sender":   sender,
			"nonce":    nonce,
			"template": string(text),
		})
		if err != nil {
			return err
		}
		printResult(resp)
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deploySender, "sender", "", "sender address (default: configured sender)")
	rootCmd.AddCommand(deployCmd)
}
