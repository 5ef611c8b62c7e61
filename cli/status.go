package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusShowBoard bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the analyzer's live game state",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status statusDTO
		if err := getJSON("/api/status", &status); err != nil {
			return err
		}
		s := status.Summary
		fmt.Printf("Phase:   %s\n", s.Phase)
		fmt.Printf("Score:   %d  level=%d  lines=%d\n", s.Score, s.Level, s.LinesCleared)
		fmt.Printf("Stack:   height=%d  danger_cells=%d\n", s.StackHeight, s.DangerZones)
		if s.CurrentPiece != "" {
			fmt.Printf("Piece:   %s", s.CurrentPiece)
			if len(s.NextPieces) > 0 {
				fmt.Printf("  next=%s", strings.Join(s.NextPieces, ","))
			}
			if s.HoldPiece != "" {
				fmt.Printf("  hold=%s", s.HoldPiece)
			}
			fmt.Println()
		}
		if statusShowBoard {
			fmt.Println()
			printBoard(status.Board)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusShowBoard, "board", false, "render the board grid")
}

func printBoard(grid [][]string) {
	for _, row := range grid {
		var b strings.Builder
		b.WriteByte('|')
		for _, cell := range row {
			if cell == "" {
				b.WriteByte('.')
			} else {
				b.WriteString(cell)
			}
		}
		b.WriteByte('|')
		fmt.Println(b.String())
	}
}
