package main

const maxTransitionHistory = 1000

// Transition records one observed change of game phase or board content.
type Transition struct {
	From         GamePhase `json:"from"`
	To           GamePhase `json:"to"`
	TimestampMs  int64     `json:"timestamp_ms"`
	LinesCleared int       `json:"lines_cleared,omitempty"`
	ScoreChange  int       `json:"score_change,omitempty"`
	PiecePlaced  bool      `json:"piece_placed,omitempty"`
}

// TransitionLog is a bounded append-only history of transitions.
type TransitionLog struct {
	entries []Transition
}

func (l *TransitionLog) Clear() {
	l.entries = nil
}

func (l *TransitionLog) Push(entry Transition) {
	l.entries = append(l.entries, entry)
	if len(l.entries) > maxTransitionHistory {
		l.entries = append([]Transition(nil), l.entries[len(l.entries)-maxTransitionHistory:]...)
	}
}

func (l TransitionLog) Size() int {
	return len(l.entries)
}

func (l TransitionLog) All() []Transition {
	return append([]Transition(nil), l.entries...)
}

// Recent returns up to limit most recent transitions, oldest first.
func (l TransitionLog) Recent(limit int) []Transition {
	if limit <= 0 || limit >= len(l.entries) {
		return l.All()
	}
	return append([]Transition(nil), l.entries[len(l.entries)-limit:]...)
}
