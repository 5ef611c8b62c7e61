package main

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type HintType string

const (
	HintMoveSuggestion HintType = "move_suggestion"
	HintDangerWarning  HintType = "danger_warning"
	HintStrategyTip    HintType = "strategy_tip"
)

type Urgency int

const (
	UrgencyLow Urgency = iota + 1
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
)

type CoachingHint struct {
	Type        HintType `json:"type"`
	Urgency     Urgency  `json:"urgency"`
	Message     string   `json:"message"`
	Confidence  float64  `json:"confidence"`
	TimestampMs int64    `json:"timestamp_ms"`
	ExpiresAtMs int64    `json:"expires_at_ms"`
}

// StrategyAssessment grades the current stack on a 0-100 scale with the
// metric shortfalls that drove the grade.
type StrategyAssessment struct {
	OverallRating    float64  `json:"overall_rating"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Recommendations  []string `json:"recommendations"`
	Holes            int      `json:"holes"`
	StackHeight      int      `json:"stack_height"`
	SurfaceRoughness float64  `json:"surface_roughness"`
}

// CoachingModule layers human-readable hints on top of the ranked
// suggestions and live board metrics.
type CoachingModule struct {
	mu             sync.Mutex
	active         []CoachingHint
	hintsGenerated int64
	lastHintMs     int64
}

func NewCoachingModule() *CoachingModule {
	return &CoachingModule{}
}

// GenerateHints refreshes the active hint set from the current snapshot and
// ranked suggestions. Hints below the coaching confidence threshold are
// dropped; the surviving set is bounded by urgency then recency.
func (c *CoachingModule) GenerateHints(snapshot Snapshot, suggestions []MoveSuggestion, config CoachingConfig) []CoachingHint {
	if !config.Enabled {
		return []CoachingHint{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	nowMs := time.Now().UnixMilli()
	c.hintsGenerated++
	c.lastHintMs = nowMs
	c.expireLocked(nowMs)

	fresh := []CoachingHint{}
	if config.EnableDangerWarnings {
		fresh = append(fresh, dangerWarnings(snapshot, nowMs, config.HintLifetimeMs)...)
	}
	if config.EnableMoveSuggestions {
		fresh = append(fresh, moveSuggestionHints(suggestions, nowMs, config.HintLifetimeMs)...)
	}
	if config.EnableStrategyTips {
		fresh = append(fresh, strategyTips(snapshot.Board, nowMs, config.HintLifetimeMs)...)
	}

	for _, hint := range fresh {
		if hint.Confidence >= config.ConfidenceThreshold {
			c.active = append(c.active, hint)
		}
	}
	c.limitLocked(config.MaxHints)

	return append([]CoachingHint(nil), c.active...)
}

func dangerWarnings(snapshot Snapshot, nowMs, lifetimeMs int64) []CoachingHint {
	hints := []CoachingHint{}

	stackDanger := assessStackDanger(snapshot.Board)
	if stackDanger > 0.7 {
		urgency := UrgencyMedium
		if stackDanger > 0.9 {
			urgency = UrgencyHigh
		}
		hints = append(hints, CoachingHint{
			Type:        HintDangerWarning,
			Urgency:     urgency,
			Message:     "Stack getting high! Consider clearing lines soon.",
			Confidence:  stackDanger,
			TimestampMs: nowMs,
			ExpiresAtMs: nowMs + lifetimeMs,
		})
	}

	holeRisk := assessHoleRisk(snapshot)
	if holeRisk > 0.6 {
		hints = append(hints, CoachingHint{
			Type:        HintDangerWarning,
			Urgency:     UrgencyMedium,
			Message:     "Be careful not to create holes!",
			Confidence:  holeRisk,
			TimestampMs: nowMs,
			ExpiresAtMs: nowMs + lifetimeMs,
		})
	}

	wellRisk := assessWellRisk(snapshot.Board)
	if wellRisk > 0.8 {
		hints = append(hints, CoachingHint{
			Type:        HintDangerWarning,
			Urgency:     UrgencyMedium,
			Message:     "Deep well forming! Avoid I-piece traps.",
			Confidence:  wellRisk,
			TimestampMs: nowMs,
			ExpiresAtMs: nowMs + lifetimeMs,
		})
	}

	return hints
}

func moveSuggestionHints(suggestions []MoveSuggestion, nowMs, lifetimeMs int64) []CoachingHint {
	if len(suggestions) == 0 {
		return nil
	}
	best := suggestions[0]
	if best.Confidence <= 0.7 {
		return nil
	}
	return []CoachingHint{{
		Type:        HintMoveSuggestion,
		Urgency:     UrgencyLow,
		Message:     fmt.Sprintf("Consider: %s", best.Reasoning),
		Confidence:  best.Confidence,
		TimestampMs: nowMs,
		ExpiresAtMs: nowMs + lifetimeMs,
	}}
}

func strategyTips(board Board, nowMs, lifetimeMs int64) []CoachingHint {
	assessment := AssessStrategy(board)
	hints := []CoachingHint{}
	weaknesses := assessment.Weaknesses
	if len(weaknesses) > 2 {
		weaknesses = weaknesses[:2]
	}
	for _, weakness := range weaknesses {
		hints = append(hints, CoachingHint{
			Type:        HintStrategyTip,
			Urgency:     UrgencyLow,
			Message:     fmt.Sprintf("Strategy tip: %s", weakness),
			Confidence:  0.7,
			TimestampMs: nowMs,
			ExpiresAtMs: nowMs + lifetimeMs,
		})
	}
	return hints
}

// assessStackDanger normalizes the tallest column against 15 rows.
func assessStackDanger(board Board) float64 {
	tallest := 0
	for _, h := range board.ColumnHeights() {
		if h > tallest {
			tallest = h
		}
	}
	danger := float64(tallest) / 15.0
	if danger > 1.0 {
		return 1.0
	}
	return danger
}

// assessHoleRisk scales with the holes already present; no risk without a
// falling piece to misplace.
func assessHoleRisk(snapshot Snapshot) float64 {
	if snapshot.CurrentPiece == nil {
		return 0.0
	}
	metrics := ComputeBoardMetrics(snapshot.Board)
	risk := float64(metrics.Holes) / 10.0
	if risk > 1.0 {
		return 1.0
	}
	return risk
}

// assessWellRisk normalizes the deepest well against 5 rows.
func assessWellRisk(board Board) float64 {
	deepest := 0
	for _, depth := range ComputeBoardMetrics(board).WellDepths {
		if depth > deepest {
			deepest = depth
		}
	}
	risk := float64(deepest) / 5.0
	if risk > 1.0 {
		return 1.0
	}
	return risk
}

// AssessStrategy grades the stack: 100 minus 5 per hole, 2 per row of stack
// height and 3 per unit of roughness, clamped to [0,100].
func AssessStrategy(board Board) StrategyAssessment {
	metrics := ComputeBoardMetrics(board)

	rating := 100.0
	rating -= float64(metrics.Holes) * 5
	rating -= float64(metrics.MaxHeight) * 2
	rating -= metrics.SurfaceRoughness * 3
	if rating < 0 {
		rating = 0
	}
	if rating > 100 {
		rating = 100
	}

	strengths := []string{}
	weaknesses := []string{}
	recommendations := []string{}

	if metrics.Holes < 2 {
		strengths = append(strengths, "Good hole management")
	} else {
		weaknesses = append(weaknesses, fmt.Sprintf("Too many holes (%d)", metrics.Holes))
		recommendations = append(recommendations, "Focus on avoiding hole creation")
	}
	if metrics.MaxHeight < 10 {
		strengths = append(strengths, "Good stack control")
	} else {
		weaknesses = append(weaknesses, "Stack getting too high")
		recommendations = append(recommendations, "Prioritize line clears")
	}
	if metrics.SurfaceRoughness < 3 {
		strengths = append(strengths, "Smooth surface")
	} else {
		weaknesses = append(weaknesses, "Rough surface creating problems")
		recommendations = append(recommendations, "Aim for more even placement")
	}

	return StrategyAssessment{
		OverallRating:    rating,
		Strengths:        strengths,
		Weaknesses:       weaknesses,
		Recommendations:  recommendations,
		Holes:            metrics.Holes,
		StackHeight:      metrics.MaxHeight,
		SurfaceRoughness: metrics.SurfaceRoughness,
	}
}

func (c *CoachingModule) expireLocked(nowMs int64) {
	kept := c.active[:0]
	for _, hint := range c.active {
		if hint.ExpiresAtMs > nowMs {
			kept = append(kept, hint)
		}
	}
	c.active = kept
}

func (c *CoachingModule) limitLocked(maxHints int) {
	if len(c.active) <= maxHints {
		return
	}
	sort.SliceStable(c.active, func(i, j int) bool {
		if c.active[i].Urgency != c.active[j].Urgency {
			return c.active[i].Urgency > c.active[j].Urgency
		}
		return c.active[i].TimestampMs > c.active[j].TimestampMs
	})
	c.active = c.active[:maxHints]
}

func (c *CoachingModule) ActiveHints() []CoachingHint {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked(time.Now().UnixMilli())
	return append([]CoachingHint(nil), c.active...)
}

func (c *CoachingModule) ClearHints() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

type CoachingStatistics struct {
	HintsGenerated int64 `json:"hints_generated"`
	LastHintMs     int64 `json:"last_hint_ms"`
	ActiveHints    int   `json:"active_hints"`
}

func (c *CoachingModule) Statistics() CoachingStatistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CoachingStatistics{
		HintsGenerated: c.hintsGenerated,
		LastHintMs:     c.lastHintMs,
		ActiveHints:    len(c.active),
	}
}

func (c *CoachingModule) restoreCounters(hints, lastMs int64) {
	c.mu.Lock()
	c.hintsGenerated = hints
	c.lastHintMs = lastMs
	c.mu.Unlock()
}
