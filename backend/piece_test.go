package main

import (
	"errors"
	"testing"
)

func TestShapesFitBoundingBox(t *testing.T) {
	for _, kind := range AllPieceKinds {
		for rotation := 0; rotation < 4; rotation++ {
			shape := ShapeOf(kind, rotation)
			seen := map[Offset]bool{}
			for _, off := range shape {
				if off.DX < 0 || off.DX > 3 || off.DY < 0 || off.DY > 3 {
					t.Fatalf("%s rot %d offset %+v outside 4x4 box", kind, rotation, off)
				}
				if seen[off] {
					t.Fatalf("%s rot %d repeats offset %+v", kind, rotation, off)
				}
				seen[off] = true
			}
		}
	}
}

func TestOShapeIdenticalAcrossRotations(t *testing.T) {
	base := ShapeOf(PieceO, 0)
	for rotation := 1; rotation < 4; rotation++ {
		if ShapeOf(PieceO, rotation) != base {
			t.Fatalf("O shape differs at rotation %d", rotation)
		}
	}
}

func TestSymmetricShapesRepeat(t *testing.T) {
	for _, kind := range []PieceKind{PieceI, PieceS, PieceZ} {
		if ShapeOf(kind, 0) != ShapeOf(kind, 2) || ShapeOf(kind, 1) != ShapeOf(kind, 3) {
			t.Fatalf("%s should repeat its two distinct orientations", kind)
		}
	}
}

func TestShapeRotationWraps(t *testing.T) {
	for _, kind := range AllPieceKinds {
		if ShapeOf(kind, 4) != ShapeOf(kind, 0) {
			t.Fatalf("%s rotation 4 should equal rotation 0", kind)
		}
		if ShapeOf(kind, -1) != ShapeOf(kind, 3) {
			t.Fatalf("%s rotation -1 should equal rotation 3", kind)
		}
	}
}

func TestPieceValidate(t *testing.T) {
	valid := Piece{Kind: PieceT, Position: Position{X: 4, Y: 0}, Rotation: 2, Confidence: 0.9}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid piece rejected: %v", err)
	}

	cases := []Piece{
		{Kind: PieceKind("Q"), Position: Position{X: 4, Y: 0}, Confidence: 0.9},
		{Kind: PieceT, Position: Position{X: BoardWidth, Y: 0}, Confidence: 0.9},
		{Kind: PieceT, Position: Position{X: 4, Y: 0}, Rotation: 4, Confidence: 0.9},
		{Kind: PieceT, Position: Position{X: 4, Y: 0}, Rotation: -1, Confidence: 0.9},
		{Kind: PieceT, Position: Position{X: 4, Y: 0}, Confidence: 1.5},
		{Kind: PieceT, Position: Position{X: 4, Y: 0}, Confidence: -0.1},
	}
	for i, piece := range cases {
		if err := piece.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}
