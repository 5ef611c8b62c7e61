package main

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
)

const (
	BoardWidth  = 10
	BoardHeight = 20
)

// ErrInvalidInput marks malformed board or piece data rejected at the
// construction boundary. The previous valid state is always retained.
var ErrInvalidInput = errors.New("invalid input")

// Position is a grid cell. X grows rightward, Y grows downward: row 0 is the
// top of the well, row BoardHeight-1 the bottom.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.Y >= 0 && p.X < BoardWidth && p.Y < BoardHeight
}

// Board is the occupancy state of the fixed 10x20 grid. Only occupied cells
// are stored. A Board is read-only once constructed: simulation produces new
// boards instead of mutating.
type Board struct {
	cells map[Position]PieceKind
}

func NewBoard() Board {
	return Board{cells: make(map[Position]PieceKind)}
}

// NewBoardFromCells re-validates an external occupancy mapping and refuses to
// construct on the first out-of-bounds position or unknown piece kind. The
// recognition layer pre-validates, but a bad update must never be half-applied.
func NewBoardFromCells(cells map[Position]PieceKind) (Board, error) {
	board := Board{cells: make(map[Position]PieceKind, len(cells))}
	for pos, kind := range cells {
		if !pos.InBounds() {
			return Board{}, fmt.Errorf("%w: cell (%d,%d) outside %dx%d grid", ErrInvalidInput, pos.X, pos.Y, BoardWidth, BoardHeight)
		}
		if !kind.Valid() {
			return Board{}, fmt.Errorf("%w: unknown piece kind %q at (%d,%d)", ErrInvalidInput, string(kind), pos.X, pos.Y)
		}
		board.cells[pos] = kind
	}
	return board, nil
}

// IsOccupied reports whether a cell holds a piece. Out-of-bounds cells read as
// empty.
func (b Board) IsOccupied(x, y int) bool {
	_, ok := b.cells[Position{X: x, Y: y}]
	return ok
}

func (b Board) KindAt(x, y int) (PieceKind, bool) {
	kind, ok := b.cells[Position{X: x, Y: y}]
	return kind, ok
}

// OccupiedPositions returns every occupied cell in deterministic row-major
// order.
func (b Board) OccupiedPositions() []Position {
	positions := maps.Keys(b.cells)
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})
	return positions
}

func (b Board) CellCount() int {
	return len(b.cells)
}

// ColumnHeight is BoardHeight minus the row of the topmost occupied cell in
// the column, 0 for an empty column.
func (b Board) ColumnHeight(x int) int {
	for y := 0; y < BoardHeight; y++ {
		if b.IsOccupied(x, y) {
			return BoardHeight - y
		}
	}
	return 0
}

// ColumnHeights computes every column height in one pass. Metric passes use
// this instead of per-query ColumnHeight calls inside loops.
func (b Board) ColumnHeights() [BoardWidth]int {
	var heights [BoardWidth]int
	for pos := range b.cells {
		height := BoardHeight - pos.Y
		if height > heights[pos.X] {
			heights[pos.X] = height
		}
	}
	return heights
}

func (b Board) Clone() Board {
	clone := Board{cells: make(map[Position]PieceKind, len(b.cells))}
	for pos, kind := range b.cells {
		clone.cells[pos] = kind
	}
	return clone
}

// WithPlacement returns a new board with the placement's four cells merged in.
// The input board is never mutated. The caller must only pass placements the
// enumerator reported as legal; merging an illegal placement produces a board
// the evaluator downgrades to a degenerate result.
func (b Board) WithPlacement(p Placement) Board {
	merged := Board{cells: make(map[Position]PieceKind, len(b.cells)+4)}
	for pos, kind := range b.cells {
		merged.cells[pos] = kind
	}
	for _, off := range ShapeOf(p.Kind, p.Rotation) {
		merged.cells[Position{X: p.X + off.DX, Y: p.Y + off.DY}] = p.Kind
	}
	return merged
}

// boundsValid reports whether every stored cell lies on the grid. Constructed
// boards always satisfy this; a merge from an illegal placement does not.
func (b Board) boundsValid() bool {
	for pos := range b.cells {
		if !pos.InBounds() {
			return false
		}
	}
	return true
}
