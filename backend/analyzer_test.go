package main

import (
	"errors"
	"testing"
)

func TestObserveProducesSuggestions(t *testing.T) {
	analyzer := NewAnalyzer()
	err := analyzer.Observe(SnapshotUpdate{
		Cells:        map[Position]PieceKind{{X: 0, Y: 19}: PieceI},
		CurrentPiece: &Piece{Kind: PieceT, Position: Position{X: 5, Y: 0}, Confidence: 1.0},
	})
	if err != nil {
		t.Fatalf("observe rejected: %v", err)
	}
	if len(analyzer.Suggestions()) == 0 {
		t.Fatalf("expected suggestions after observing a piece")
	}
	if analyzer.Summary().Phase != PhasePlaying {
		t.Fatalf("phase = %s, want playing", analyzer.Summary().Phase)
	}
}

func TestObserveRejectionKeepsPreviousResults(t *testing.T) {
	analyzer := NewAnalyzer()
	if err := analyzer.Observe(SnapshotUpdate{
		CurrentPiece: &Piece{Kind: PieceL, Position: Position{X: 5, Y: 0}, Confidence: 1.0},
	}); err != nil {
		t.Fatalf("observe rejected: %v", err)
	}
	before := analyzer.Suggestions()

	err := analyzer.Observe(SnapshotUpdate{
		Cells: map[Position]PieceKind{{X: -1, Y: 0}: PieceI},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	after := analyzer.Suggestions()
	if len(after) != len(before) {
		t.Fatalf("rejected observation changed suggestions: %d -> %d", len(before), len(after))
	}
}

func TestOverlayPublisherReceivesBestPlacement(t *testing.T) {
	analyzer := NewAnalyzer()
	var published []overlayPayload
	analyzer.SetOverlayPublisher(
		func() bool { return true },
		func(payload overlayPayload) { published = append(published, payload) },
	)

	if err := analyzer.Observe(SnapshotUpdate{
		CurrentPiece: &Piece{Kind: PieceI, Position: Position{X: 5, Y: 0}, Confidence: 1.0},
	}); err != nil {
		t.Fatalf("observe rejected: %v", err)
	}
	if len(published) != 1 {
		t.Fatalf("publisher called %d times, want 1", len(published))
	}
	payload := published[0]
	if !payload.Active || len(payload.Cells) != 4 || payload.PieceKind != PieceI {
		t.Fatalf("overlay payload wrong: %+v", payload)
	}
}

func TestOverlayPublisherSkippedWhenDisabled(t *testing.T) {
	analyzer := NewAnalyzer()
	calls := 0
	analyzer.SetOverlayPublisher(
		func() bool { return false },
		func(overlayPayload) { calls++ },
	)
	if err := analyzer.Observe(SnapshotUpdate{
		CurrentPiece: &Piece{Kind: PieceI, Position: Position{X: 5, Y: 0}, Confidence: 1.0},
	}); err != nil {
		t.Fatalf("observe rejected: %v", err)
	}
	if calls != 0 {
		t.Fatalf("publisher ran while disabled")
	}
}

func TestAnalyzerReset(t *testing.T) {
	analyzer := NewAnalyzer()
	if err := analyzer.Observe(SnapshotUpdate{
		Cells:        map[Position]PieceKind{{X: 0, Y: 19}: PieceI},
		CurrentPiece: &Piece{Kind: PieceO, Position: Position{X: 5, Y: 0}, Confidence: 1.0},
	}); err != nil {
		t.Fatalf("observe rejected: %v", err)
	}
	analyzer.Reset()
	if len(analyzer.Suggestions()) != 0 || len(analyzer.Hints()) != 0 {
		t.Fatalf("reset left suggestions or hints behind")
	}
	if analyzer.Summary().Phase != PhaseIdle {
		t.Fatalf("phase after reset = %s", analyzer.Summary().Phase)
	}
}
