package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and update the analyzer configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var config map[string]any
		if err := getJSON("/api/config", &config); err != nil {
			return err
		}
		raw, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <config.json>",
	Short: "Replace the configuration from a JSON file",
	Long: `Posts the file's contents to /api/config. The backend validates the
whole document and rejects it wholesale when any field is out of range,
so start from "config get" output and edit what you need.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if err := postJSON("/api/config", payload, nil); err != nil {
			return err
		}
		fmt.Println("Configuration updated.")
		return nil
	},
}

var configThresholdCmd = &cobra.Command{
	Use:   "threshold <value>",
	Short: "Set just the suggestion confidence threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parse threshold %q: %w", args[0], err)
		}
		var config map[string]any
		if err := getJSON("/api/config", &config); err != nil {
			return err
		}
		config["confidence_threshold"] = value
		if err := postJSON("/api/config", config, nil); err != nil {
			return err
		}
		fmt.Printf("Confidence threshold set to %.2f\n", value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configThresholdCmd)
}
