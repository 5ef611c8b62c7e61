package main

import "fmt"

// Wire mirrors of the backend's JSON responses, trimmed to what the
// commands print.

type summaryDTO struct {
	Phase        string   `json:"phase"`
	Score        int      `json:"score"`
	Level        int      `json:"level"`
	LinesCleared int      `json:"lines_cleared"`
	StackHeight  int      `json:"stack_height"`
	DangerZones  int      `json:"danger_zones"`
	CurrentPiece string   `json:"current_piece"`
	NextPieces   []string `json:"next_pieces"`
	HoldPiece    string   `json:"hold_piece"`
}

type positionDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type suggestionDTO struct {
	PieceKind  string        `json:"piece_kind"`
	Position   positionDTO   `json:"position"`
	Rotation   int           `json:"rotation"`
	Cells      []positionDTO `json:"cells"`
	MoveType   string        `json:"move_type"`
	Score      float64       `json:"score"`
	Confidence float64       `json:"confidence"`
	Reasoning  string        `json:"reasoning"`
}

type hintDTO struct {
	Type       string  `json:"type"`
	Urgency    int     `json:"urgency"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

func urgencyLabel(urgency int) string {
	switch urgency {
	case 1:
		return "low"
	case 2:
		return "medium"
	case 3:
		return "high"
	case 4:
		return "critical"
	}
	return fmt.Sprintf("urgency-%d", urgency)
}

type metricsDTO struct {
	TotalScore float64 `json:"total_score"`
	Degenerate bool    `json:"degenerate"`
	Metrics    struct {
		TotalHeight      int   `json:"total_height"`
		MaxHeight        int   `json:"max_height"`
		Holes            int   `json:"holes"`
		CoveredCells     int   `json:"covered_cells"`
		LinesCleared     int   `json:"lines_cleared"`
		SurfaceRoughness float64 `json:"surface_roughness"`
		WellDepths       []int `json:"well_depths"`
		Overhangs        int   `json:"overhangs"`
	} `json:"metrics"`
}

type statusDTO struct {
	Summary     summaryDTO      `json:"summary"`
	Board       [][]string      `json:"board"`
	Suggestions []suggestionDTO `json:"suggestions"`
	Hints       []hintDTO       `json:"hints"`
}
