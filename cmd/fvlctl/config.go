package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cliConfig is §6's "small config file for the admin/sender default",
// kept alongside the block log in the data directory.
type cliConfig struct {
	Sender string `json:"sender"`
}

func configPath() string {
	dataDir := os.Getenv("FVL_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	return filepath.Join(dataDir, "fvlctl.json")
}

func loadConfig() cliConfig {
	var cfg cliConfig
	b, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}
	_ = json.Unmarshal(b, &cfg)
	return cfg
}

func saveConfig(cfg cliConfig) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// currentSender resolves the sender for a tx command: an explicit --sender
// flag wins, otherwise the configured default.
func currentSender(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg := loadConfig()
	if cfg.Sender == "" {
		return "", errNoSender
	}
	return cfg.Sender, nil
}

var errNoSender = &apiError{kind: "ValidationError", message: "no sender configured; pass --sender or run `fvlctl config set-sender <addr>`"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the default sender address",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		printResult(map[string]any{"sender": cfg.Sender})
		return nil
	},
}

var configSetSenderCmd = &cobra.Command{
	Use:   "set-sender <addr>",
	Short: "Set the default sender address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cfg.Sender = args[0]
		if err := saveConfig(cfg); err != nil {
			return err
		}
		printResult(map[string]any{"sender": cfg.Sender})
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetSenderCmd)
	rootCmd.AddCommand(configCmd)
}
