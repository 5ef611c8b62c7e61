package main

import (
	"log"
	"sync"
	"time"
)

// degenerateScore is the sentinel for evaluations that cannot produce a
// meaningful result. It ranks below every reachable score so one bad
// candidate never blocks ranking of the rest.
const degenerateScore = -1000.0

// BoardMetrics is a read-only snapshot of the evaluation inputs for one
// board, always recomputed from the occupancy mapping.
type BoardMetrics struct {
	TotalHeight      int     `json:"total_height"`
	MaxHeight        int     `json:"max_height"`
	Holes            int     `json:"holes"`
	CoveredCells     int     `json:"covered_cells"`
	LinesCleared     int     `json:"lines_cleared"`
	SurfaceRoughness float64 `json:"surface_roughness"`
	WellDepths       []int   `json:"well_depths"`
	Overhangs        int     `json:"overhangs"`
}

type BoardEvaluation struct {
	TotalScore float64      `json:"total_score"`
	Metrics    BoardMetrics `json:"metrics"`
	Degenerate bool         `json:"degenerate,omitempty"`
}

// HeuristicEvaluator scores boards. It is stateless across calls except for
// rolling observability counters.
type HeuristicEvaluator struct {
	mu                   sync.Mutex
	evaluationsPerformed int64
	lastEvaluationMs     int64
}

func NewHeuristicEvaluator() *HeuristicEvaluator {
	return &HeuristicEvaluator{}
}

// Evaluate computes the metrics and weighted total score for a board.
// Higher scores are better. It never fails: a malformed board yields the
// maximally penalized sentinel instead of an error.
func (e *HeuristicEvaluator) Evaluate(board Board, weights HeuristicConfig) BoardEvaluation {
	e.mu.Lock()
	e.evaluationsPerformed++
	e.lastEvaluationMs = time.Now().UnixMilli()
	e.mu.Unlock()

	if !board.boundsValid() {
		log.Printf("[evaluator] degenerate board reached evaluation, returning sentinel")
		return DegenerateEvaluation()
	}

	metrics := ComputeBoardMetrics(board)
	return BoardEvaluation{
		TotalScore: scoreMetrics(metrics, weights),
		Metrics:    metrics,
	}
}

// DegenerateEvaluation is the fail-safe result: worst-case metrics and a very
// negative score.
func DegenerateEvaluation() BoardEvaluation {
	return BoardEvaluation{
		TotalScore: degenerateScore,
		Metrics: BoardMetrics{
			TotalHeight:      BoardWidth * BoardHeight,
			MaxHeight:        BoardHeight,
			Holes:            BoardWidth * BoardHeight,
			SurfaceRoughness: float64(BoardWidth * BoardHeight),
			WellDepths:       []int{},
		},
		Degenerate: true,
	}
}

func ComputeBoardMetrics(board Board) BoardMetrics {
	heights := board.ColumnHeights()

	totalHeight := 0
	maxHeight := 0
	for _, h := range heights {
		totalHeight += h
		if h > maxHeight {
			maxHeight = h
		}
	}

	holes, covered := countHolesAndCovered(board, heights)

	return BoardMetrics{
		TotalHeight:      totalHeight,
		MaxHeight:        maxHeight,
		Holes:            holes,
		CoveredCells:     covered,
		LinesCleared:     countCompletedLines(board),
		SurfaceRoughness: surfaceRoughness(heights),
		WellDepths:       findWells(heights),
		Overhangs:        countOverhangs(board, heights),
	}
}

func scoreMetrics(m BoardMetrics, w HeuristicConfig) float64 {
	wellSum := 0
	for _, depth := range m.WellDepths {
		wellSum += depth
	}
	return float64(m.LinesCleared)*w.LineClearBonus +
		w.HeightWeight*(w.HeightBaseline-float64(m.TotalHeight)) +
		w.HolesWeight*(w.HolesBaseline-float64(m.Holes)) +
		w.RoughnessWeight*(w.RoughnessBaseline-m.SurfaceRoughness) +
		w.WellsWeight*(w.WellsBaseline-float64(wellSum)) +
		w.OverhangsWeight*(w.OverhangsBaseline-float64(m.Overhangs))
}

// countHolesAndCovered walks each column below its topmost occupied cell:
// empty cells there are holes, occupied ones are covered cells.
func countHolesAndCovered(board Board, heights [BoardWidth]int) (int, int) {
	holes := 0
	covered := 0
	for x := 0; x < BoardWidth; x++ {
		if heights[x] == 0 {
			continue
		}
		topRow := BoardHeight - heights[x]
		for y := topRow + 1; y < BoardHeight; y++ {
			if board.IsOccupied(x, y) {
				covered++
			} else {
				holes++
			}
		}
	}
	return holes, covered
}

// countCompletedLines counts rows occupied in every column. Ranking runs this
// on the simulated post-placement board, so it rewards placements that would
// clear lines.
func countCompletedLines(board Board) int {
	lines := 0
	for y := 0; y < BoardHeight; y++ {
		full := true
		for x := 0; x < BoardWidth; x++ {
			if !board.IsOccupied(x, y) {
				full = false
				break
			}
		}
		if full {
			lines++
		}
	}
	return lines
}

func surfaceRoughness(heights [BoardWidth]int) float64 {
	roughness := 0.0
	for i := 0; i < BoardWidth-1; i++ {
		delta := heights[i] - heights[i+1]
		if delta < 0 {
			delta = -delta
		}
		roughness += float64(delta)
	}
	return roughness
}

// findWells returns one positive depth per column whose neighbors both exceed
// it. Off-board neighbors count as full-height walls, so edge columns can be
// wells.
func findWells(heights [BoardWidth]int) []int {
	wells := []int{}
	for i := 0; i < BoardWidth; i++ {
		left := BoardHeight
		if i > 0 {
			left = heights[i-1]
		}
		right := BoardHeight
		if i < BoardWidth-1 {
			right = heights[i+1]
		}
		depth := min(left, right) - heights[i]
		if depth > 0 {
			wells = append(wells, depth)
		}
	}
	return wells
}

// countOverhangs counts occupied cells sitting directly above an empty cell.
func countOverhangs(board Board, heights [BoardWidth]int) int {
	overhangs := 0
	for x := 0; x < BoardWidth; x++ {
		if heights[x] == 0 {
			continue
		}
		topRow := BoardHeight - heights[x]
		for y := topRow; y < BoardHeight-1; y++ {
			if board.IsOccupied(x, y) && !board.IsOccupied(x, y+1) {
				overhangs++
			}
		}
	}
	return overhangs
}

type EvaluationStatistics struct {
	EvaluationsPerformed int64           `json:"evaluations_performed"`
	LastEvaluationMs     int64           `json:"last_evaluation_ms"`
	Weights              HeuristicConfig `json:"heuristic_weights"`
}

func (e *HeuristicEvaluator) Statistics(weights HeuristicConfig) EvaluationStatistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EvaluationStatistics{
		EvaluationsPerformed: e.evaluationsPerformed,
		LastEvaluationMs:     e.lastEvaluationMs,
		Weights:              weights,
	}
}

func (e *HeuristicEvaluator) ResetStatistics() {
	e.mu.Lock()
	e.evaluationsPerformed = 0
	e.lastEvaluationMs = 0
	e.mu.Unlock()
}

func (e *HeuristicEvaluator) restoreCounters(evaluations, lastMs int64) {
	e.mu.Lock()
	e.evaluationsPerformed = evaluations
	e.lastEvaluationMs = lastMs
	e.mu.Unlock()
}
