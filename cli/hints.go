package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hintsCmd = &cobra.Command{
	Use:   "hints",
	Short: "Show active coaching hints",
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload struct {
			Hints []hintDTO `json:"hints"`
		}
		if err := getJSON("/api/hints", &payload); err != nil {
			return err
		}
		if len(payload.Hints) == 0 {
			fmt.Println("No active hints.")
			return nil
		}
		for _, hint := range payload.Hints {
			fmt.Printf("[%s/%s] %s (%.2f)\n", urgencyLabel(hint.Urgency), hint.Type, hint.Message, hint.Confidence)
		}
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the live board's heuristic evaluation",
	RunE: func(cmd *cobra.Command, args []string) error {
		var eval metricsDTO
		if err := getJSON("/api/metrics", &eval); err != nil {
			return err
		}
		if eval.Degenerate {
			fmt.Println("Board state is degenerate.")
		}
		m := eval.Metrics
		fmt.Printf("Total score:  %.1f\n", eval.TotalScore)
		fmt.Printf("Heights:      total=%d max=%d\n", m.TotalHeight, m.MaxHeight)
		fmt.Printf("Holes:        %d (covered=%d)\n", m.Holes, m.CoveredCells)
		fmt.Printf("Roughness:    %.1f\n", m.SurfaceRoughness)
		fmt.Printf("Wells:        %v\n", m.WellDepths)
		fmt.Printf("Overhangs:    %d\n", m.Overhangs)
		fmt.Printf("Full lines:   %d\n", m.LinesCleared)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the analyzer state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := postJSON("/api/reset", map[string]any{}, nil); err != nil {
			return err
		}
		fmt.Println("Analyzer reset.")
		return nil
	},
}
