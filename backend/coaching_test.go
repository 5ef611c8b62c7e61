package main

import (
	"strings"
	"testing"
	"time"
)

// tallColumnCells builds a single column of the given height at x.
func tallColumnCells(x, height int) map[Position]PieceKind {
	cells := make(map[Position]PieceKind)
	for y := BoardHeight - height; y < BoardHeight; y++ {
		cells[Position{X: x, Y: y}] = PieceJ
	}
	return cells
}

func TestStackDangerHint(t *testing.T) {
	board := mustBoard(t, tallColumnCells(0, 12))
	snapshot := Snapshot{Board: board}
	coach := NewCoachingModule()
	hints := coach.GenerateHints(snapshot, nil, DefaultConfig().Coaching)

	var danger *CoachingHint
	for i := range hints {
		if hints[i].Type == HintDangerWarning && strings.Contains(hints[i].Message, "Stack getting high") {
			danger = &hints[i]
		}
	}
	if danger == nil {
		t.Fatalf("expected stack danger hint, got %v", hints)
	}
	if danger.Urgency != UrgencyMedium {
		t.Fatalf("12-row stack urgency = %d, want medium", danger.Urgency)
	}
}

func TestStackDangerEscalatesToHigh(t *testing.T) {
	board := mustBoard(t, tallColumnCells(0, 14))
	coach := NewCoachingModule()
	hints := coach.GenerateHints(Snapshot{Board: board}, nil, DefaultConfig().Coaching)
	for _, hint := range hints {
		if strings.Contains(hint.Message, "Stack getting high") {
			if hint.Urgency != UrgencyHigh {
				t.Fatalf("14-row stack urgency = %d, want high", hint.Urgency)
			}
			return
		}
	}
	t.Fatalf("stack danger hint missing: %v", hints)
}

func TestCoachingDisabledYieldsNothing(t *testing.T) {
	config := DefaultConfig().Coaching
	config.Enabled = false
	coach := NewCoachingModule()
	board := mustBoard(t, tallColumnCells(0, 14))
	if hints := coach.GenerateHints(Snapshot{Board: board}, nil, config); len(hints) != 0 {
		t.Fatalf("disabled coaching produced %d hints", len(hints))
	}
}

func TestMoveSuggestionHintThreshold(t *testing.T) {
	nowMs := time.Now().UnixMilli()

	confident := []MoveSuggestion{{Confidence: 0.9, Reasoning: "Clears 2 lines"}}
	hints := moveSuggestionHints(confident, nowMs, 10000)
	if len(hints) != 1 || !strings.Contains(hints[0].Message, "Clears 2 lines") {
		t.Fatalf("expected one consider hint, got %v", hints)
	}

	tentative := []MoveSuggestion{{Confidence: 0.7, Reasoning: "Standard placement"}}
	if hints := moveSuggestionHints(tentative, nowMs, 10000); len(hints) != 0 {
		t.Fatalf("low-confidence suggestion produced hints: %v", hints)
	}
}

func TestHintExpiry(t *testing.T) {
	coach := NewCoachingModule()
	nowMs := time.Now().UnixMilli()
	coach.active = []CoachingHint{
		{Message: "stale", ExpiresAtMs: nowMs - 1},
		{Message: "fresh", ExpiresAtMs: nowMs + 60000},
	}
	hints := coach.ActiveHints()
	if len(hints) != 1 || hints[0].Message != "fresh" {
		t.Fatalf("expiry kept the wrong hints: %v", hints)
	}
}

func TestHintLimitPrefersUrgency(t *testing.T) {
	coach := NewCoachingModule()
	coach.active = []CoachingHint{
		{Message: "low-old", Urgency: UrgencyLow, TimestampMs: 1},
		{Message: "critical", Urgency: UrgencyCritical, TimestampMs: 2},
		{Message: "low-new", Urgency: UrgencyLow, TimestampMs: 3},
		{Message: "high", Urgency: UrgencyHigh, TimestampMs: 4},
	}
	coach.limitLocked(2)
	if len(coach.active) != 2 {
		t.Fatalf("limit kept %d hints", len(coach.active))
	}
	if coach.active[0].Message != "critical" || coach.active[1].Message != "high" {
		t.Fatalf("limit kept wrong hints: %v", coach.active)
	}
}

func TestConfidenceThresholdFiltersHints(t *testing.T) {
	config := DefaultConfig().Coaching
	config.ConfidenceThreshold = 0.95
	config.EnableStrategyTips = false
	// 12-row stack: danger confidence 0.8, below the raised threshold.
	board := mustBoard(t, tallColumnCells(0, 12))
	coach := NewCoachingModule()
	if hints := coach.GenerateHints(Snapshot{Board: board}, nil, config); len(hints) != 0 {
		t.Fatalf("threshold 0.95 let hints through: %v", hints)
	}
}

func TestAssessStrategyEmptyBoard(t *testing.T) {
	assessment := AssessStrategy(NewBoard())
	if assessment.OverallRating != 100 {
		t.Fatalf("empty board rating = %v, want 100", assessment.OverallRating)
	}
	if len(assessment.Weaknesses) != 0 || len(assessment.Recommendations) != 0 {
		t.Fatalf("empty board flagged weaknesses: %+v", assessment)
	}
	if len(assessment.Strengths) != 3 {
		t.Fatalf("empty board strengths = %v", assessment.Strengths)
	}
}

func TestAssessStrategyRatingFormula(t *testing.T) {
	// One column of height 5: no holes, max height 5, roughness 5.
	board := mustBoard(t, tallColumnCells(0, 5))
	assessment := AssessStrategy(board)
	if assessment.OverallRating != 100-5*2-5*3 {
		t.Fatalf("rating = %v, want 75", assessment.OverallRating)
	}
	if assessment.StackHeight != 5 || assessment.Holes != 0 {
		t.Fatalf("assessment metrics wrong: %+v", assessment)
	}
}
