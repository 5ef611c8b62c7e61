package main

import (
	"errors"
	"testing"
)

func validUpdate(cells map[Position]PieceKind) SnapshotUpdate {
	return SnapshotUpdate{Cells: cells}
}

func TestUpdateSnapshotRejectsBadBoardKeepsPrevious(t *testing.T) {
	manager := NewStateManager()
	if err := manager.UpdateSnapshot(validUpdate(map[Position]PieceKind{{X: 0, Y: 19}: PieceI})); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}

	err := manager.UpdateSnapshot(validUpdate(map[Position]PieceKind{{X: BoardWidth, Y: 19}: PieceI}))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	snapshot := manager.Snapshot()
	if snapshot.Board.CellCount() != 1 || !snapshot.Board.IsOccupied(0, 19) {
		t.Fatalf("rejected update modified the snapshot")
	}
	if manager.Phase() != PhasePlaying {
		t.Fatalf("phase = %s, want playing", manager.Phase())
	}
}

func TestUpdateSnapshotValidation(t *testing.T) {
	score := -1
	level0 := 0
	level21 := 21
	lines := -3
	cases := []SnapshotUpdate{
		{NextPieces: []PieceKind{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ}},
		{NextPieces: []PieceKind{PieceKind("Q")}},
		{HoldPiece: PieceKind("Q")},
		{CurrentPiece: &Piece{Kind: PieceT, Position: Position{X: 4, Y: 0}, Confidence: 2.0}},
		{Score: &score},
		{Level: &level0},
		{Level: &level21},
		{LinesCleared: &lines},
	}
	for i, update := range cases {
		manager := NewStateManager()
		if err := manager.UpdateSnapshot(update); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
		if manager.Phase() != PhaseIdle {
			t.Fatalf("case %d: rejected update changed phase to %s", i, manager.Phase())
		}
	}
}

func TestCountersRetainedWhenOmitted(t *testing.T) {
	manager := NewStateManager()
	score := 100
	lines := 4
	if err := manager.UpdateSnapshot(SnapshotUpdate{Score: &score, LinesCleared: &lines}); err != nil {
		t.Fatalf("update rejected: %v", err)
	}
	if err := manager.UpdateSnapshot(SnapshotUpdate{}); err != nil {
		t.Fatalf("update rejected: %v", err)
	}
	snapshot := manager.Snapshot()
	if snapshot.Score != 100 || snapshot.LinesCleared != 4 {
		t.Fatalf("omitted counters were reset: score=%d lines=%d", snapshot.Score, snapshot.LinesCleared)
	}
}

func TestGameOverDetection(t *testing.T) {
	manager := NewStateManager()
	if err := manager.UpdateSnapshot(validUpdate(map[Position]PieceKind{{X: 5, Y: 1}: PieceI})); err != nil {
		t.Fatalf("update rejected: %v", err)
	}
	if manager.Phase() != PhaseGameOver {
		t.Fatalf("phase = %s, want game_over", manager.Phase())
	}
	transitions := manager.Transitions(0)
	found := false
	for _, tr := range transitions {
		if tr.To == PhaseGameOver {
			found = true
		}
	}
	if !found {
		t.Fatalf("no game_over transition recorded: %v", transitions)
	}
}

func TestLineClearAndPiecePlacedTransitions(t *testing.T) {
	manager := NewStateManager()
	score1, lines1 := 0, 0
	if err := manager.UpdateSnapshot(SnapshotUpdate{
		Cells: map[Position]PieceKind{{X: 0, Y: 19}: PieceI},
		Score: &score1, LinesCleared: &lines1,
	}); err != nil {
		t.Fatalf("first update rejected: %v", err)
	}

	score2, lines2 := 100, 2
	if err := manager.UpdateSnapshot(SnapshotUpdate{
		Cells: map[Position]PieceKind{{X: 0, Y: 19}: PieceI, {X: 1, Y: 19}: PieceI},
		Score: &score2, LinesCleared: &lines2,
	}); err != nil {
		t.Fatalf("second update rejected: %v", err)
	}

	var lineClear, piecePlaced bool
	for _, tr := range manager.Transitions(0) {
		if tr.To == PhaseLineClear && tr.LinesCleared == 2 && tr.ScoreChange == 100 {
			lineClear = true
		}
		if tr.PiecePlaced {
			piecePlaced = true
		}
	}
	if !lineClear {
		t.Fatalf("line clear transition missing: %v", manager.Transitions(0))
	}
	if !piecePlaced {
		t.Fatalf("piece placed transition missing: %v", manager.Transitions(0))
	}
}

func TestDangerZones(t *testing.T) {
	manager := NewStateManager()
	if err := manager.UpdateSnapshot(validUpdate(map[Position]PieceKind{
		{X: 2, Y: 2}: PieceI,
		{X: 3, Y: 3}: PieceI,
		{X: 4, Y: 4}: PieceI,
	})); err != nil {
		t.Fatalf("update rejected: %v", err)
	}
	zones := manager.DangerZones()
	if len(zones) != 2 {
		t.Fatalf("danger zones = %v, want the two cells in rows 2-3", zones)
	}
}

func TestResetClearsState(t *testing.T) {
	manager := NewStateManager()
	score := 500
	if err := manager.UpdateSnapshot(SnapshotUpdate{
		Cells: map[Position]PieceKind{{X: 0, Y: 19}: PieceI},
		Score: &score,
	}); err != nil {
		t.Fatalf("update rejected: %v", err)
	}
	manager.Reset()
	if manager.Phase() != PhaseIdle {
		t.Fatalf("phase after reset = %s", manager.Phase())
	}
	snapshot := manager.Snapshot()
	if snapshot.Board.CellCount() != 0 || snapshot.Score != 0 || snapshot.Level != 1 {
		t.Fatalf("reset left state behind: %+v", snapshot)
	}
}

func TestSummaryTruncatesNextPieces(t *testing.T) {
	manager := NewStateManager()
	if err := manager.UpdateSnapshot(SnapshotUpdate{
		NextPieces: []PieceKind{PieceI, PieceO, PieceT, PieceS, PieceZ},
	}); err != nil {
		t.Fatalf("update rejected: %v", err)
	}
	summary := manager.Summary()
	if len(summary.NextPieces) != 3 {
		t.Fatalf("summary next pieces = %v, want 3 entries", summary.NextPieces)
	}
}

func TestTransitionLogBounded(t *testing.T) {
	var log TransitionLog
	for i := 0; i < maxTransitionHistory+50; i++ {
		log.Push(Transition{TimestampMs: int64(i)})
	}
	if log.Size() != maxTransitionHistory {
		t.Fatalf("log size = %d, want %d", log.Size(), maxTransitionHistory)
	}
	recent := log.Recent(10)
	if len(recent) != 10 {
		t.Fatalf("recent returned %d entries", len(recent))
	}
	if recent[9].TimestampMs != int64(maxTransitionHistory+49) {
		t.Fatalf("recent is not the newest tail: %v", recent[9])
	}
	if recent[0].TimestampMs >= recent[9].TimestampMs {
		t.Fatalf("recent not ordered oldest first")
	}
}
