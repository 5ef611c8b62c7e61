package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <observation.json>",
	Short: "Send a board observation and print ranked suggestions",
	Long: `Reads an observation file and posts it to /api/observe.

The file carries the same JSON the recognition layer sends: a 20x10
"board" grid of piece letters ("" or "empty" for free cells) plus an
optional "current_piece" object. Without a current piece the backend
updates state but has nothing to rank.`,
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
		var status statusDTO
		if err := postJSON("/api/observe", payload, &status); err != nil {
			return err
		}
		if len(status.Suggestions) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}
		fmt.Printf("%-4s %-6s %-4s %-8s %-8s %-6s %s\n", "#", "piece", "rot", "anchor", "score", "conf", "reasoning")
		for i, sg := range status.Suggestions {
			fmt.Printf("%-4d %-6s %-4d (%2d,%2d)  %-8.1f %-6.2f %s\n",
				i+1, sg.PieceKind, sg.Rotation, sg.Position.X, sg.Position.Y, sg.Score, sg.Confidence, sg.Reasoning)
		}
		return nil
	},
}
