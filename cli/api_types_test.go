package main

import (
	"encoding/json"
	"testing"
)

func TestHintDTODecodesNumericUrgency(t *testing.T) {
	// The backend serializes urgency as a number (1-4), not a name.
	raw := `{"hints":[{"type":"danger_warning","urgency":3,"message":"Stack getting high! Consider clearing lines soon.","confidence":0.75,"timestamp_ms":1,"expires_at_ms":2}]}`
	var payload struct {
		Hints []hintDTO `json:"hints"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("decode hints payload: %v", err)
	}
	if len(payload.Hints) != 1 {
		t.Fatalf("expected 1 hint, got %d", len(payload.Hints))
	}
	hint := payload.Hints[0]
	if hint.Urgency != 3 {
		t.Fatalf("expected urgency 3, got %d", hint.Urgency)
	}
	if urgencyLabel(hint.Urgency) != "high" {
		t.Fatalf("expected label high, got %q", urgencyLabel(hint.Urgency))
	}
}

func TestUrgencyLabels(t *testing.T) {
	labels := map[int]string{1: "low", 2: "medium", 3: "high", 4: "critical", 9: "urgency-9"}
	for urgency, want := range labels {
		if got := urgencyLabel(urgency); got != want {
			t.Fatalf("urgency %d: expected %q, got %q", urgency, want, got)
		}
	}
}

func TestStatusDTODecodesBackendShape(t *testing.T) {
	raw := `{
		"summary":{"phase":"playing","score":120,"level":3,"lines_cleared":4,"stack_height":6,"danger_zones":0,"current_piece":"T","next_pieces":["I","O"],"hold_piece":""},
		"board":[["empty"]],
		"suggestions":[{"piece_kind":"T","position":{"x":4,"y":18},"rotation":2,"cells":[{"x":3,"y":19},{"x":4,"y":19},{"x":5,"y":19},{"x":4,"y":18}],"move_type":"tspin","score":64.5,"confidence":0.8,"reasoning":"Direct drop"}],
		"hints":[{"type":"move_suggestion","urgency":2,"message":"Consider: Direct drop","confidence":0.85}]
	}`
	var status statusDTO
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Summary.Phase != "playing" {
		t.Fatalf("expected phase playing, got %q", status.Summary.Phase)
	}
	if len(status.Suggestions) != 1 || status.Suggestions[0].MoveType != "tspin" {
		t.Fatalf("unexpected suggestions: %+v", status.Suggestions)
	}
	if len(status.Hints) != 1 || status.Hints[0].Urgency != 2 {
		t.Fatalf("unexpected hints: %+v", status.Hints)
	}
}
