package main

import (
	"fmt"
	"time"
)

type GamePhase string

const (
	PhaseIdle      GamePhase = "idle"
	PhasePlaying   GamePhase = "playing"
	PhasePaused    GamePhase = "paused"
	PhaseGameOver  GamePhase = "game_over"
	PhaseLineClear GamePhase = "line_clear"
)

const (
	maxNextPieces  = 5
	dangerZoneRows = 4
)

// Snapshot is one validated observation of the game: the settled board plus
// the recognition layer's piece and counter readings.
type Snapshot struct {
	Board        Board
	CurrentPiece *Piece
	NextPieces   []PieceKind
	HoldPiece    PieceKind
	Score        int
	Level        int
	LinesCleared int
	TimestampMs  int64
}

// SnapshotUpdate is the inbound payload from the recognition collaborator.
// Nil counter pointers mean "keep the previous reading".
type SnapshotUpdate struct {
	Cells        map[Position]PieceKind
	CurrentPiece *Piece
	NextPieces   []PieceKind
	HoldPiece    PieceKind
	Score        *int
	Level        *int
	LinesCleared *int
}

// StateManager holds the live snapshot and derives phase, transitions and
// rolling counters from it. Not safe for concurrent use on its own; the
// Analyzer serializes access.
type StateManager struct {
	current      Snapshot
	phase        GamePhase
	transitions  TransitionLog
	movesCount   int64
	piecesPlaced int64
	lastUpdateMs int64
}

func NewStateManager() *StateManager {
	return &StateManager{
		current: Snapshot{
			Board:       NewBoard(),
			Level:       1,
			TimestampMs: time.Now().UnixMilli(),
		},
		phase: PhaseIdle,
	}
}

// UpdateSnapshot validates and applies a full board observation. A malformed
// update is rejected wholesale and the previous valid snapshot is retained.
func (m *StateManager) UpdateSnapshot(update SnapshotUpdate) error {
	board, err := NewBoardFromCells(update.Cells)
	if err != nil {
		return err
	}
	if update.CurrentPiece != nil {
		if err := update.CurrentPiece.Validate(); err != nil {
			return err
		}
	}
	if len(update.NextPieces) > maxNextPieces {
		return fmt.Errorf("%w: next piece queue has %d entries, limit %d", ErrInvalidInput, len(update.NextPieces), maxNextPieces)
	}
	for _, kind := range update.NextPieces {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown next piece kind %q", ErrInvalidInput, string(kind))
		}
	}
	if update.HoldPiece != "" && !update.HoldPiece.Valid() {
		return fmt.Errorf("%w: unknown hold piece kind %q", ErrInvalidInput, string(update.HoldPiece))
	}
	if update.Score != nil && *update.Score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrInvalidInput, *update.Score)
	}
	if update.Level != nil && (*update.Level < 1 || *update.Level > 20) {
		return fmt.Errorf("%w: level %d outside [1,20]", ErrInvalidInput, *update.Level)
	}
	if update.LinesCleared != nil && *update.LinesCleared < 0 {
		return fmt.Errorf("%w: negative lines cleared %d", ErrInvalidInput, *update.LinesCleared)
	}

	next := Snapshot{
		Board:        board,
		CurrentPiece: update.CurrentPiece,
		NextPieces:   append([]PieceKind(nil), update.NextPieces...),
		HoldPiece:    update.HoldPiece,
		Score:        m.current.Score,
		Level:        m.current.Level,
		LinesCleared: m.current.LinesCleared,
		TimestampMs:  time.Now().UnixMilli(),
	}
	if update.Score != nil {
		next.Score = *update.Score
	}
	if update.Level != nil {
		next.Level = *update.Level
	}
	if update.LinesCleared != nil {
		next.LinesCleared = *update.LinesCleared
	}

	m.recordTransitions(m.current, next)
	m.current = next
	m.movesCount++
	m.lastUpdateMs = next.TimestampMs
	return nil
}

func (m *StateManager) recordTransitions(old, next Snapshot) {
	linesDiff := next.LinesCleared - old.LinesCleared
	if linesDiff > 0 {
		m.transitions.Push(Transition{
			From:         m.phase,
			To:           PhaseLineClear,
			TimestampMs:  next.TimestampMs,
			LinesCleared: linesDiff,
			ScoreChange:  next.Score - old.Score,
		})
	}

	if next.Board.CellCount() > old.Board.CellCount() {
		m.piecesPlaced++
		m.transitions.Push(Transition{
			From:        m.phase,
			To:          m.phase,
			TimestampMs: next.TimestampMs,
			PiecePlaced: true,
		})
	}

	if isGameOver(next.Board) {
		m.transitions.Push(Transition{
			From:        m.phase,
			To:          PhaseGameOver,
			TimestampMs: next.TimestampMs,
		})
		m.phase = PhaseGameOver
	} else if m.phase == PhaseIdle {
		m.phase = PhasePlaying
	}
}

// isGameOver uses the original detector's shortcut: any settled cell in the
// top two rows ends the game.
func isGameOver(board Board) bool {
	for y := 0; y < 2; y++ {
		for x := 0; x < BoardWidth; x++ {
			if board.IsOccupied(x, y) {
				return true
			}
		}
	}
	return false
}

func (m *StateManager) Snapshot() Snapshot {
	snapshot := m.current
	snapshot.Board = m.current.Board.Clone()
	snapshot.NextPieces = append([]PieceKind(nil), m.current.NextPieces...)
	if m.current.CurrentPiece != nil {
		piece := *m.current.CurrentPiece
		snapshot.CurrentPiece = &piece
	}
	return snapshot
}

func (m *StateManager) Phase() GamePhase {
	return m.phase
}

func (m *StateManager) SetPhase(phase GamePhase) {
	if phase == m.phase {
		return
	}
	m.transitions.Push(Transition{
		From:        m.phase,
		To:          phase,
		TimestampMs: time.Now().UnixMilli(),
	})
	m.phase = phase
}

// StackHeight is the tallest column height on the live board.
func (m *StateManager) StackHeight() int {
	heights := m.current.Board.ColumnHeights()
	tallest := 0
	for _, h := range heights {
		if h > tallest {
			tallest = h
		}
	}
	return tallest
}

// DangerZones lists occupied cells in the top rows of the well.
func (m *StateManager) DangerZones() []Position {
	zones := []Position{}
	for y := 0; y < dangerZoneRows; y++ {
		for x := 0; x < BoardWidth; x++ {
			if m.current.Board.IsOccupied(x, y) {
				zones = append(zones, Position{X: x, Y: y})
			}
		}
	}
	return zones
}

func (m *StateManager) Transitions(limit int) []Transition {
	return m.transitions.Recent(limit)
}

func (m *StateManager) Reset() {
	previous := m.phase
	m.current = Snapshot{
		Board:       NewBoard(),
		Level:       1,
		TimestampMs: time.Now().UnixMilli(),
	}
	m.phase = PhaseIdle
	m.movesCount = 0
	m.piecesPlaced = 0
	m.lastUpdateMs = m.current.TimestampMs
	m.transitions.Push(Transition{
		From:        previous,
		To:          PhaseIdle,
		TimestampMs: m.current.TimestampMs,
	})
}

type StateSummary struct {
	Phase           GamePhase   `json:"phase"`
	Score           int         `json:"score"`
	Level           int         `json:"level"`
	LinesCleared    int         `json:"lines_cleared"`
	PiecesPlaced    int64       `json:"pieces_placed"`
	MovesCount      int64       `json:"moves_count"`
	StackHeight     int         `json:"stack_height"`
	DangerZones     int         `json:"danger_zones"`
	OccupiedCells   int         `json:"occupied_cells"`
	CurrentPiece    string      `json:"current_piece,omitempty"`
	NextPieces      []PieceKind `json:"next_pieces,omitempty"`
	HoldPiece       string      `json:"hold_piece,omitempty"`
	LastUpdateMs    int64       `json:"last_update_ms"`
	TransitionCount int         `json:"transition_count"`
}

func (m *StateManager) Summary() StateSummary {
	summary := StateSummary{
		Phase:           m.phase,
		Score:           m.current.Score,
		Level:           m.current.Level,
		LinesCleared:    m.current.LinesCleared,
		PiecesPlaced:    m.piecesPlaced,
		MovesCount:      m.movesCount,
		StackHeight:     m.StackHeight(),
		DangerZones:     len(m.DangerZones()),
		OccupiedCells:   m.current.Board.CellCount(),
		NextPieces:      append([]PieceKind(nil), m.current.NextPieces...),
		HoldPiece:       string(m.current.HoldPiece),
		LastUpdateMs:    m.lastUpdateMs,
		TransitionCount: m.transitions.Size(),
	}
	if len(summary.NextPieces) > 3 {
		summary.NextPieces = summary.NextPieces[:3]
	}
	if m.current.CurrentPiece != nil {
		summary.CurrentPiece = string(m.current.CurrentPiece.Kind)
	}
	return summary
}
