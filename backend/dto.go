package main

import "fmt"

// emptyCellMarker is how the recognition layer reports unoccupied cells in
// grid payloads; a bare "" is accepted as the same thing.
const emptyCellMarker = "empty"

type StatusResponse struct {
	Summary     StateSummary     `json:"summary"`
	Config      Config           `json:"config"`
	Board       [][]string       `json:"board"`
	Suggestions []MoveSuggestion `json:"suggestions"`
	Hints       []CoachingHint   `json:"hints"`
}

type pieceDTO struct {
	Kind       string  `json:"kind"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Rotation   int     `json:"rotation"`
	Confidence float64 `json:"confidence"`
}

// observePayload is the wire form of a recognition snapshot: a full
// BoardHeight x BoardWidth grid of kind letters plus optional piece and
// counter readings.
type observePayload struct {
	Board        [][]string `json:"board"`
	CurrentPiece *pieceDTO  `json:"current_piece,omitempty"`
	NextPieces   []string   `json:"next_pieces,omitempty"`
	HoldPiece    string     `json:"hold_piece,omitempty"`
	Score        *int       `json:"score,omitempty"`
	Level        *int       `json:"level,omitempty"`
	LinesCleared *int       `json:"lines_cleared,omitempty"`
}

func (p observePayload) toUpdate() (SnapshotUpdate, error) {
	cells, err := gridToCells(p.Board)
	if err != nil {
		return SnapshotUpdate{}, err
	}
	update := SnapshotUpdate{
		Cells:        cells,
		HoldPiece:    PieceKind(p.HoldPiece),
		Score:        p.Score,
		Level:        p.Level,
		LinesCleared: p.LinesCleared,
	}
	if p.CurrentPiece != nil {
		update.CurrentPiece = &Piece{
			Kind:       PieceKind(p.CurrentPiece.Kind),
			Position:   Position{X: p.CurrentPiece.X, Y: p.CurrentPiece.Y},
			Rotation:   p.CurrentPiece.Rotation,
			Confidence: p.CurrentPiece.Confidence,
		}
	}
	for _, kind := range p.NextPieces {
		update.NextPieces = append(update.NextPieces, PieceKind(kind))
	}
	return update, nil
}

// gridToCells converts a row-major grid of kind letters into an occupancy
// mapping. Dimension mismatches are rejected; cell content validation is the
// Board constructor's job.
func gridToCells(grid [][]string) (map[Position]PieceKind, error) {
	if len(grid) != BoardHeight {
		return nil, fmt.Errorf("%w: board grid has %d rows, want %d", ErrInvalidInput, len(grid), BoardHeight)
	}
	cells := make(map[Position]PieceKind)
	for y, row := range grid {
		if len(row) != BoardWidth {
			return nil, fmt.Errorf("%w: board row %d has %d cells, want %d", ErrInvalidInput, y, len(row), BoardWidth)
		}
		for x, value := range row {
			if value == "" || value == emptyCellMarker {
				continue
			}
			cells[Position{X: x, Y: y}] = PieceKind(value)
		}
	}
	return cells, nil
}

func boardToGrid(board Board) [][]string {
	grid := make([][]string, BoardHeight)
	for y := 0; y < BoardHeight; y++ {
		row := make([]string, BoardWidth)
		for x := 0; x < BoardWidth; x++ {
			if kind, ok := board.KindAt(x, y); ok {
				row[x] = string(kind)
			} else {
				row[x] = ""
			}
		}
		grid[y] = row
	}
	return grid
}
