package main

import "fmt"

type PieceKind string

const (
	PieceI PieceKind = "I"
	PieceO PieceKind = "O"
	PieceT PieceKind = "T"
	PieceS PieceKind = "S"
	PieceZ PieceKind = "Z"
	PieceJ PieceKind = "J"
	PieceL PieceKind = "L"
)

var AllPieceKinds = [7]PieceKind{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

func (k PieceKind) Valid() bool {
	switch k {
	case PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL:
		return true
	}
	return false
}

// Piece is a recognized falling piece as reported by the recognition layer.
type Piece struct {
	Kind       PieceKind `json:"kind"`
	Position   Position  `json:"position"`
	Rotation   int       `json:"rotation"`
	Confidence float64   `json:"confidence"`
}

func (p Piece) Validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: unknown piece kind %q", ErrInvalidInput, string(p.Kind))
	}
	if !p.Position.InBounds() {
		return fmt.Errorf("%w: piece position (%d,%d) outside grid", ErrInvalidInput, p.Position.X, p.Position.Y)
	}
	if p.Rotation < 0 || p.Rotation > 3 {
		return fmt.Errorf("%w: piece rotation %d outside 0-3", ErrInvalidInput, p.Rotation)
	}
	if p.Confidence < 0.0 || p.Confidence > 1.0 {
		return fmt.Errorf("%w: piece confidence %f outside [0,1]", ErrInvalidInput, p.Confidence)
	}
	return nil
}

// Offset is a cell offset relative to a placement anchor.
type Offset struct {
	DX int
	DY int
}

// pieceShapes is the single source of truth for the 7x4 shape table, shared by
// the enumerator, the simulator and the overlay rendering. Every shape fits a
// 4x4 bounding box. The O piece is identical across all rotation indices; the
// symmetric pieces (I, S, Z) repeat their two distinct orientations.
var pieceShapes = map[PieceKind][4][4]Offset{
	PieceI: {
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
	},
	PieceO: {
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	PieceT: {
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{0, 0}, {1, 0}, {2, 0}, {1, 1}},
		{{0, 0}, {1, 0}, {1, 1}, {0, 2}},
	},
	PieceS: {
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	PieceZ: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	PieceJ: {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {0, 2}},
	},
	PieceL: {
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {1, 0}, {2, 0}, {0, 1}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
}

// ShapeOf returns the four cell offsets for a kind and rotation. Rotation
// cycles modulo 4. An unknown kind is a programmer error: the kind range is
// closed and callers are expected to validate recognition input first.
func ShapeOf(kind PieceKind, rotation int) [4]Offset {
	shapes, ok := pieceShapes[kind]
	if !ok {
		panic(fmt.Sprintf("unknown piece kind %q", string(kind)))
	}
	return shapes[((rotation%4)+4)%4]
}
