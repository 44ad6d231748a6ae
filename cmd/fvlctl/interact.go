package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var interactSender string

var interactCmd = &cobra.Command{
	Use:   "interact <sys-id> {evaluate | trigger <action> | both <action>}",
	Short: "Evaluate and/or trigger a deployed system's rules",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := currentSender(interactSender)
		if err != nil {
			return err
		}
		systemID := args[0]
		mode := args[1]
		var actionName string
		switch mode {
		case "evaluate":
		case "trigger", "both":
			if len(args) < 3 {
				return fmt.Errorf("%s requires an action name", mode)
			}
			actionName = args[2]
		default:
			return fmt.Errorf("unrecognized mode %q: expected evaluate, trigger or both", mode)
		}

		nonce, err := nextNonce(sender)
		if err != nil {
			return err
		}
		resp, err := post("/fvl/tx/interact", map[string]any{
			"sender":      sender,
			"nonce":       nonce,
			"system_id":   systemID,
			"mode":        mode,
			"action_name": actionName,
		})
		if err != nil {
			return err
		}
		printResult(resp)
		return nil
	},
}

func init() {
	interactCmd.Flags().StringVar(&interactSender, "sender", "", "sender address (default: configured sender)")
	rootCmd.AddCommand(interactCmd)
}
