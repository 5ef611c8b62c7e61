package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type MoveType string

const (
	MoveDrop   MoveType = "drop"
	MoveSlide  MoveType = "slide"
	MoveRotate MoveType = "rotate"
	MoveTSpin  MoveType = "tspin"
)

// naturalDropColumn is the anchor column a piece is considered to fall into
// without lateral movement. The move classifier compares against it.
const naturalDropColumn = 5

// Placement is a candidate resting position: anchor cell plus rotation.
// Ephemeral, never persisted.
type Placement struct {
	Kind     PieceKind `json:"kind"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Rotation int       `json:"rotation"`
}

// Cells returns the four absolute cells the placement occupies.
func (p Placement) Cells() [4]Position {
	var cells [4]Position
	for i, off := range ShapeOf(p.Kind, p.Rotation) {
		cells[i] = Position{X: p.X + off.DX, Y: p.Y + off.DY}
	}
	return cells
}

type MoveSuggestion struct {
	PieceKind   PieceKind  `json:"piece_kind"`
	Position    Position   `json:"position"`
	Rotation    int        `json:"rotation"`
	Cells       []Position `json:"cells"`
	MoveType    MoveType   `json:"move_type"`
	Score       float64    `json:"score"`
	Confidence  float64    `json:"confidence"`
	Reasoning   string     `json:"reasoning"`
	TimestampMs int64      `json:"timestamp_ms"`
}

// EnumerateMoves lists every placement of the piece kind that is in bounds
// and collision-free on the given board. It is a brute-force generate-and-test
// over all 4 nominal rotation indices and the full grid: symmetric pieces
// yield duplicate shapes and therefore duplicate placements, and legality is a
// final-state check only, with no notion of reachability during descent. An
// unrecognized kind yields no moves rather than an error.
func EnumerateMoves(kind PieceKind, board Board) []Placement {
	if !kind.Valid() {
		return nil
	}
	placements := []Placement{}
	for rotation := 0; rotation < 4; rotation++ {
		shape := ShapeOf(kind, rotation)
		for y := 0; y < BoardHeight; y++ {
			for x := 0; x < BoardWidth; x++ {
				if canPlace(shape, x, y, board) {
					placements = append(placements, Placement{Kind: kind, X: x, Y: y, Rotation: rotation})
				}
			}
		}
	}
	return placements
}

func canPlace(shape [4]Offset, x, y int, board Board) bool {
	for _, off := range shape {
		cell := Position{X: x + off.DX, Y: y + off.DY}
		if !cell.InBounds() {
			return false
		}
		if board.IsOccupied(cell.X, cell.Y) {
			return false
		}
	}
	return true
}

// PredictionEngine ranks placements for the current piece. Stateless across
// calls except for rolling observability counters; safe for concurrent use
// against distinct boards.
type PredictionEngine struct {
	evaluator *HeuristicEvaluator

	mu               sync.Mutex
	predictionsMade  int64
	lastPredictionMs int64
}

func NewPredictionEngine(evaluator *HeuristicEvaluator) *PredictionEngine {
	return &PredictionEngine{evaluator: evaluator}
}

// PredictMoves enumerates, simulates and evaluates every legal placement for
// the current piece, then filters by confidence, ranks descending by score
// and truncates to the configured maximum. A nil piece is a valid steady
// state and yields an empty list. Output is deterministic for identical
// inputs: the sort is stable over enumeration order.
func (e *PredictionEngine) PredictMoves(board Board, piece *Piece, config Config) []MoveSuggestion {
	if piece == nil {
		return []MoveSuggestion{}
	}

	e.mu.Lock()
	e.predictionsMade++
	e.lastPredictionMs = time.Now().UnixMilli()
	e.mu.Unlock()

	placements := EnumerateMoves(piece.Kind, board)
	if len(placements) == 0 {
		return []MoveSuggestion{}
	}

	suggestions := make([]MoveSuggestion, 0, len(placements))
	for _, placement := range placements {
		suggestion := e.evaluatePlacement(placement, board, config)
		if suggestion.Confidence >= config.ConfidenceThreshold {
			suggestions = append(suggestions, suggestion)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > config.MaxSuggestions {
		suggestions = suggestions[:config.MaxSuggestions]
	}
	return suggestions
}

func (e *PredictionEngine) evaluatePlacement(placement Placement, board Board, config Config) MoveSuggestion {
	simulated := board.WithPlacement(placement)
	evaluation := e.evaluator.Evaluate(simulated, config.Heuristics)
	moveType := classifyMove(placement)
	cells := placement.Cells()
	return MoveSuggestion{
		PieceKind:   placement.Kind,
		Position:    Position{X: placement.X, Y: placement.Y},
		Rotation:    placement.Rotation,
		Cells:       cells[:],
		MoveType:    moveType,
		Score:       evaluation.TotalScore,
		Confidence:  suggestionConfidence(evaluation.TotalScore, moveType),
		Reasoning:   buildReasoning(evaluation, moveType),
		TimestampMs: time.Now().UnixMilli(),
	}
}

// classifyMove is positional only: any rotated T counts as a spin setup, with
// no corner or kick geometry check against the board. A coarse approximation
// kept for stable, explainable output.
func classifyMove(placement Placement) MoveType {
	rotation := ((placement.Rotation % 4) + 4) % 4
	if placement.Kind == PieceT && rotation != 0 {
		return MoveTSpin
	}
	if rotation != 0 {
		return MoveRotate
	}
	if placement.X != naturalDropColumn {
		return MoveSlide
	}
	return MoveDrop
}

// suggestionConfidence maps score magnitude and move type onto [0,1].
func suggestionConfidence(score float64, moveType MoveType) float64 {
	confidence := 0.5
	if score > 50 {
		confidence += 0.3
	} else if score > 20 {
		confidence += 0.1
	}
	switch moveType {
	case MoveTSpin:
		confidence += 0.2
	case MoveDrop:
		confidence += 0.1
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}

func buildReasoning(evaluation BoardEvaluation, moveType MoveType) string {
	reasons := []string{}
	if evaluation.Metrics.LinesCleared > 0 {
		reasons = append(reasons, fmt.Sprintf("Clears %d lines", evaluation.Metrics.LinesCleared))
	}
	if evaluation.Metrics.Holes == 0 {
		reasons = append(reasons, "Avoids creating holes")
	}
	if evaluation.Metrics.SurfaceRoughness <= 2.0 {
		reasons = append(reasons, "Creates flat surface")
	}
	switch moveType {
	case MoveTSpin:
		reasons = append(reasons, "T-spin opportunity")
	case MoveSlide:
		reasons = append(reasons, "Slide for better position")
	case MoveDrop:
		reasons = append(reasons, "Direct drop")
	}
	if len(reasons) == 0 {
		return "Standard placement"
	}
	return strings.Join(reasons, "; ")
}

type PredictionStatistics struct {
	PredictionsMade     int64   `json:"predictions_made"`
	LastPredictionMs    int64   `json:"last_prediction_ms"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	MaxSuggestions      int     `json:"max_suggestions"`
}

func (e *PredictionEngine) Statistics(config Config) PredictionStatistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return PredictionStatistics{
		PredictionsMade:     e.predictionsMade,
		LastPredictionMs:    e.lastPredictionMs,
		ConfidenceThreshold: config.ConfidenceThreshold,
		MaxSuggestions:      config.MaxSuggestions,
	}
}

func (e *PredictionEngine) restoreCounters(predictions, lastMs int64) {
	e.mu.Lock()
	e.predictionsMade = predictions
	e.lastPredictionMs = lastMs
	e.mu.Unlock()
}
