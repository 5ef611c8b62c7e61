package main

import (
	"errors"
	"testing"
)

func mustBoard(t *testing.T, cells map[Position]PieceKind) Board {
	t.Helper()
	board, err := NewBoardFromCells(cells)
	if err != nil {
		t.Fatalf("unexpected board rejection: %v", err)
	}
	return board
}

// cellsWithRow fills the whole row y and returns the mapping for further edits.
func cellsWithRow(y int, kind PieceKind) map[Position]PieceKind {
	cells := make(map[Position]PieceKind)
	for x := 0; x < BoardWidth; x++ {
		cells[Position{X: x, Y: y}] = kind
	}
	return cells
}

func TestNewBoardFromCellsRejectsOutOfBounds(t *testing.T) {
	cases := []Position{
		{X: -1, Y: 5},
		{X: BoardWidth, Y: 5},
		{X: 3, Y: -1},
		{X: 3, Y: BoardHeight},
	}
	for _, pos := range cases {
		_, err := NewBoardFromCells(map[Position]PieceKind{pos: PieceI})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for cell (%d,%d), got %v", pos.X, pos.Y, err)
		}
	}
}

func TestNewBoardFromCellsRejectsUnknownKind(t *testing.T) {
	_, err := NewBoardFromCells(map[Position]PieceKind{
		{X: 0, Y: 19}: PieceI,
		{X: 1, Y: 19}: PieceKind("X"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}

func TestIsOccupiedOutOfBoundsReadsEmpty(t *testing.T) {
	board := mustBoard(t, map[Position]PieceKind{{X: 0, Y: 19}: PieceO})
	if board.IsOccupied(-1, 19) || board.IsOccupied(BoardWidth, 19) || board.IsOccupied(0, BoardHeight) {
		t.Fatalf("out-of-bounds reads must be empty")
	}
	if !board.IsOccupied(0, 19) {
		t.Fatalf("expected (0,19) occupied")
	}
}

func TestColumnHeights(t *testing.T) {
	board := mustBoard(t, map[Position]PieceKind{
		{X: 3, Y: 15}: PieceT,
		{X: 3, Y: 19}: PieceT,
		{X: 7, Y: 19}: PieceL,
	})
	if got := board.ColumnHeight(3); got != 5 {
		t.Fatalf("column 3 height = %d, want 5", got)
	}
	if got := board.ColumnHeight(7); got != 1 {
		t.Fatalf("column 7 height = %d, want 1", got)
	}
	if got := board.ColumnHeight(0); got != 0 {
		t.Fatalf("empty column height = %d, want 0", got)
	}
	heights := board.ColumnHeights()
	if heights[3] != 5 || heights[7] != 1 || heights[0] != 0 {
		t.Fatalf("ColumnHeights mismatch: %v", heights)
	}
}

func TestOccupiedPositionsRowMajor(t *testing.T) {
	board := mustBoard(t, map[Position]PieceKind{
		{X: 5, Y: 19}: PieceI,
		{X: 2, Y: 19}: PieceI,
		{X: 9, Y: 18}: PieceI,
	})
	got := board.OccupiedPositions()
	want := []Position{{X: 9, Y: 18}, {X: 2, Y: 19}, {X: 5, Y: 19}}
	if len(got) != len(want) {
		t.Fatalf("got %d positions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := mustBoard(t, map[Position]PieceKind{{X: 4, Y: 19}: PieceS})
	clone := original.Clone()
	clone.cells[Position{X: 5, Y: 19}] = PieceS
	if original.IsOccupied(5, 19) {
		t.Fatalf("mutating a clone leaked into the original")
	}
	if original.CellCount() != 1 || clone.CellCount() != 2 {
		t.Fatalf("cell counts: original=%d clone=%d", original.CellCount(), clone.CellCount())
	}
}

func TestWithPlacementDoesNotMutateInput(t *testing.T) {
	base := mustBoard(t, map[Position]PieceKind{{X: 0, Y: 19}: PieceJ})
	placement := Placement{Kind: PieceO, X: 4, Y: 18}
	merged := base.WithPlacement(placement)

	if base.CellCount() != 1 {
		t.Fatalf("input board mutated: %d cells", base.CellCount())
	}
	if merged.CellCount() != 5 {
		t.Fatalf("merged board has %d cells, want 5", merged.CellCount())
	}
	for _, cell := range placement.Cells() {
		kind, ok := merged.KindAt(cell.X, cell.Y)
		if !ok || kind != PieceO {
			t.Fatalf("merged cell (%d,%d) = %q occupied=%v", cell.X, cell.Y, string(kind), ok)
		}
	}
}
