package main

import (
	"sync"
	"time"
)

// Analyzer is the mutex facade over the state manager and the engines. Each
// observation runs one full cycle: ingest snapshot, rank placements, refresh
// coaching hints, publish overlay.
type Analyzer struct {
	mu          sync.Mutex
	state       *StateManager
	evaluator   *HeuristicEvaluator
	engine      *PredictionEngine
	coach       *CoachingModule
	suggestions []MoveSuggestion
	hints       []CoachingHint

	overlayEnabled   func() bool
	overlayPublisher func(overlayPayload)
}

func NewAnalyzer() *Analyzer {
	evaluator := NewHeuristicEvaluator()
	return &Analyzer{
		state:     NewStateManager(),
		evaluator: evaluator,
		engine:    NewPredictionEngine(evaluator),
		coach:     NewCoachingModule(),
	}
}

func (a *Analyzer) SetOverlayPublisher(enabled func() bool, publisher func(overlayPayload)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.overlayEnabled = enabled
	a.overlayPublisher = publisher
}

// Observe ingests one board observation and recomputes suggestions and
// hints. A rejected update retains the previous state and the previous
// suggestion list.
func (a *Analyzer) Observe(update SnapshotUpdate) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.state.UpdateSnapshot(update); err != nil {
		return err
	}

	config := GetConfig()
	snapshot := a.state.Snapshot()
	a.suggestions = a.engine.PredictMoves(snapshot.Board, snapshot.CurrentPiece, config)
	a.hints = a.coach.GenerateHints(snapshot, a.suggestions, config.Coaching)
	a.publishOverlayLocked()
	return nil
}

func (a *Analyzer) publishOverlayLocked() {
	if a.overlayPublisher == nil || a.overlayEnabled == nil || !a.overlayEnabled() {
		return
	}
	payload := overlayPayload{
		Active:      len(a.suggestions) > 0,
		GeneratedAt: time.Now().UnixMilli(),
	}
	if len(a.suggestions) > 0 {
		best := a.suggestions[0]
		payload.Cells = append([]Position(nil), best.Cells...)
		payload.PieceKind = best.PieceKind
		payload.Rotation = best.Rotation
		payload.Score = best.Score
		payload.Confidence = best.Confidence
	}
	a.overlayPublisher(payload)
}

func (a *Analyzer) Suggestions() []MoveSuggestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]MoveSuggestion(nil), a.suggestions...)
}

func (a *Analyzer) Hints() []CoachingHint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]CoachingHint(nil), a.hints...)
}

func (a *Analyzer) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Snapshot()
}

func (a *Analyzer) Summary() StateSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Summary()
}

// Metrics evaluates the live board with the current weights.
func (a *Analyzer) Metrics() BoardEvaluation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evaluator.Evaluate(a.state.Snapshot().Board, GetConfig().Heuristics)
}

func (a *Analyzer) Assessment() StrategyAssessment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AssessStrategy(a.state.Snapshot().Board)
}

func (a *Analyzer) Transitions(limit int) []Transition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Transitions(limit)
}

func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Reset()
	a.suggestions = nil
	a.hints = nil
	a.coach.ClearHints()
}

type AnalyzerStatistics struct {
	Prediction PredictionStatistics `json:"prediction"`
	Evaluation EvaluationStatistics `json:"evaluation"`
	Coaching   CoachingStatistics   `json:"coaching"`
}

func (a *Analyzer) Statistics() AnalyzerStatistics {
	config := GetConfig()
	return AnalyzerStatistics{
		Prediction: a.engine.Statistics(config),
		Evaluation: a.evaluator.Statistics(config.Heuristics),
		Coaching:   a.coach.Statistics(),
	}
}
