package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

const (
	boardRows = 20
	boardCols = 10
	spawnCol  = 5
)

var pieceKinds = []string{"I", "O", "T", "S", "Z", "J", "L"}

type trainer struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
	apiAddr string
	rng     *rand.Rand

	episodesPerCandidate int
	piecesPerEpisode     int
	mutationStrength     float64
	seedBase             int64

	statusMu  sync.RWMutex
	status    trainerStatus
	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobDone   chan struct{}
}

type trainerStatus struct {
	Running    bool   `json:"running"`
	Phase      string `json:"phase"`
	Message    string `json:"message"`
	StartedAt  string `json:"started_at"`
	UpdatedAt  string `json:"updated_at"`
	Generation int    `json:"generation"`
	Episodes   int    `json:"episodes"`
	Accepted   int    `json:"accepted"`

	BestObjective      float64         `json:"best_objective"`
	CandidateObjective float64         `json:"candidate_objective"`
	ChampionWeights    heuristicConfig `json:"champion_weights"`
	ChallengerWeights  heuristicConfig `json:"challenger_weights"`
}

// heuristicConfig mirrors the backend's evaluator weight block on the wire.
type heuristicConfig struct {
	LineClearBonus    float64 `json:"line_clear_bonus"`
	HeightWeight      float64 `json:"height_weight"`
	HolesWeight       float64 `json:"holes_weight"`
	RoughnessWeight   float64 `json:"roughness_weight"`
	WellsWeight       float64 `json:"wells_weight"`
	OverhangsWeight   float64 `json:"overhangs_weight"`
	HeightBaseline    float64 `json:"height_baseline"`
	HolesBaseline     float64 `json:"holes_baseline"`
	RoughnessBaseline float64 `json:"roughness_baseline"`
	WellsBaseline     float64 `json:"wells_baseline"`
	OverhangsBaseline float64 `json:"overhangs_baseline"`
}

type cellDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type suggestionDTO struct {
	PieceKind  string    `json:"piece_kind"`
	Cells      []cellDTO `json:"cells"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
}

type statusResponse struct {
	Summary struct {
		Phase string `json:"phase"`
	} `json:"summary"`
	Suggestions []suggestionDTO `json:"suggestions"`
}

func main() {
	logger, closeLog, err := buildLogger("/logs/WeightTrainer.log")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLog()

	baseURL := getenv("BACKEND_URL", "http://backend:8080")
	apiAddr := getenv("TRAINER_API_ADDR", ":8090")
	autostart := getenv("TRAINER_AUTOSTART", "")
	episodesPerCandidate := getenvInt("TRAINER_EPISODES_PER_CANDIDATE", 4)
	piecesPerEpisode := getenvInt("TRAINER_PIECES_PER_EPISODE", 200)
	mutationStrength := getenvFloat("TRAINER_MUTATION_STRENGTH", 0.08)
	if mutationStrength <= 0 {
		mutationStrength = 0.08
	}
	seedBase := int64(getenvInt("TRAINER_SEED", 41))

	t := &trainer{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:              baseURL,
		logger:               logger,
		apiAddr:              apiAddr,
		rng:                  rand.New(rand.NewSource(time.Now().UnixNano())),
		episodesPerCandidate: episodesPerCandidate,
		piecesPerEpisode:     piecesPerEpisode,
		mutationStrength:     mutationStrength,
		seedBase:             seedBase,
		status: trainerStatus{
			Running:   false,
			Phase:     "idle",
			Message:   "service ready",
			StartedAt: time.Now().UTC().Format(time.RFC3339),
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}

	t.logf("Weight trainer service started. backend=%s episodes_per_candidate=%d pieces_per_episode=%d", t.baseURL, episodesPerCandidate, piecesPerEpisode)
	t.startStatusAPI()

	if autostart == "1" || autostart == "true" || autostart == "yes" {
		if err := t.startTraining(); err != nil {
			t.logf("Autostart failed: %v", err)
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	<-sigCtx.Done()
	_ = t.stopTraining("shutdown")
	t.logf("Trainer service stopping")
}

func (t *trainer) startStatusAPI() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trainer/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": t.getStatus().Running})
	})
	mux.HandleFunc("/api/trainer/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	mux.HandleFunc("/api/trainer/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := t.startTraining(); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	mux.HandleFunc("/api/trainer/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := t.stopTraining("requested via api"); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	server := &http.Server{Addr: t.apiAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logf("trainer api server error: %v", err)
		}
	}()
}

func (t *trainer) getStatus() trainerStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

func (t *trainer) updateStatus(mutator func(*trainerStatus)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	mutator(&t.status)
	t.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (t *trainer) startTraining() error {
	t.jobMu.Lock()
	defer t.jobMu.Unlock()
	if t.jobCancel != nil {
		return fmt.Errorf("training already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.jobCancel = cancel
	t.jobDone = done
	t.updateStatus(func(s *trainerStatus) {
		s.Running = true
		s.Phase = "starting"
		s.Message = "training starting"
		s.Generation = 0
		s.Episodes = 0
		s.Accepted = 0
	})
	go func() {
		defer close(done)
		if err := t.waitBackendReady(ctx); err != nil {
			t.updateStatus(func(s *trainerStatus) {
				s.Phase = "error"
				s.Message = err.Error()
			})
		} else {
			if err := t.runWeightTraining(ctx); err != nil && err != context.Canceled {
				t.updateStatus(func(s *trainerStatus) {
					s.Phase = "error"
					s.Message = err.Error()
				})
			}
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Running = false
			if s.Phase != "error" {
				s.Phase = "idle"
				s.Message = "service ready"
			}
		})
		t.jobMu.Lock()
		t.jobCancel = nil
		t.jobDone = nil
		t.jobMu.Unlock()
	}()
	return nil
}

func (t *trainer) stopTraining(reason string) error {
	t.jobMu.Lock()
	cancel := t.jobCancel
	done := t.jobDone
	t.jobMu.Unlock()
	if cancel == nil {
		return fmt.Errorf("no running training job")
	}
	t.logf("Stopping training: %s", reason)
	cancel()
	if done != nil {
		<-done
	}
	t.updateStatus(func(s *trainerStatus) {
		s.Running = false
		s.Phase = "idle"
		s.Message = "service ready"
	})
	return nil
}

// runWeightTraining hill-climbs the evaluator weights: each generation plays
// the same seeded episode suite for the champion and one mutated challenger,
// and keeps whichever survives longer and clears more lines.
func (t *trainer) runWeightTraining(ctx context.Context) error {
	champion, err := t.getBaseWeights()
	if err != nil {
		return err
	}
	championScore, err := t.evaluateWeights(ctx, champion, 0)
	if err != nil {
		return err
	}
	_ = t.persistWeightPair(champion, champion)
	t.updateStatus(func(s *trainerStatus) {
		s.Phase = "running"
		s.Message = "weight training running"
		s.BestObjective = championScore
		s.ChampionWeights = champion
		s.ChallengerWeights = champion
	})
	t.logf("Baseline objective %.1f", championScore)

	generation := 1
	accepted := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		challenger := t.mutateWeights(champion)
		challengerScore, err := t.evaluateWeights(ctx, challenger, int64(generation))
		if err != nil {
			return err
		}
		if challengerScore > championScore {
			champion = challenger
			championScore = challengerScore
			accepted++
			if err := t.applyWeights(champion); err != nil {
				return err
			}
			_ = t.persistWeightPair(champion, challenger)
			t.logf("Gen %d challenger promoted objective=%.1f", generation, challengerScore)
		} else {
			// Restore the champion weights the challenger episodes overwrote.
			if err := t.applyWeights(champion); err != nil {
				return err
			}
			t.logf("Gen %d challenger rejected objective=%.1f best=%.1f", generation, challengerScore, championScore)
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Generation = generation
			s.Accepted = accepted
			s.BestObjective = championScore
			s.CandidateObjective = challengerScore
			s.ChampionWeights = champion
			s.ChallengerWeights = challenger
		})
		generation++
	}
}

// evaluateWeights applies the candidate to the backend and plays a fixed
// seeded episode suite against it, always taking the top suggestion.
func (t *trainer) evaluateWeights(ctx context.Context, weights heuristicConfig, salt int64) (float64, error) {
	if err := t.applyWeights(weights); err != nil {
		return 0, err
	}
	total := 0.0
	for i := 0; i < t.episodesPerCandidate; i++ {
		objective, err := t.playEpisode(ctx, t.seedBase+salt*997+int64(i))
		if err != nil {
			return 0, err
		}
		total += objective
		t.updateStatus(func(s *trainerStatus) {
			s.Episodes++
		})
	}
	return total / float64(t.episodesPerCandidate), nil
}

// playEpisode simulates one game client-side: feed observations, place each
// piece where the backend's top suggestion says, clear rows locally. The
// objective rewards lines cleared over bare survival.
func (t *trainer) playEpisode(ctx context.Context, seed int64) (float64, error) {
	if err := t.postJSON("/api/reset", map[string]any{}, nil); err != nil {
		return 0, err
	}
	grid := emptyGrid()
	bag := newPieceBag(seed)
	pieces := 0
	lines := 0
	for pieces < t.piecesPerEpisode {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		kind := bag.next()
		status, err := t.observe(grid, kind)
		if err != nil {
			return 0, err
		}
		if len(status.Suggestions) == 0 {
			break
		}
		best := status.Suggestions[0]
		for _, cell := range best.Cells {
			if cell.Y < 0 || cell.Y >= boardRows || cell.X < 0 || cell.X >= boardCols {
				return 0, fmt.Errorf("suggestion cell out of bounds: %+v", cell)
			}
			grid[cell.Y][cell.X] = best.PieceKind
		}
		lines += clearFullRows(grid)
		pieces++
		if topRowsOccupied(grid) {
			break
		}
	}
	return float64(lines)*10 + float64(pieces), nil
}

func (t *trainer) observe(grid [][]string, kind string) (statusResponse, error) {
	payload := map[string]any{
		"board": grid,
		"current_piece": map[string]any{
			"kind":       kind,
			"x":          spawnCol,
			"y":          0,
			"rotation":   0,
			"confidence": 1.0,
		},
	}
	var status statusResponse
	if err := t.postJSON("/api/observe", payload, &status); err != nil {
		return statusResponse{}, err
	}
	return status, nil
}

func emptyGrid() [][]string {
	grid := make([][]string, boardRows)
	for y := range grid {
		grid[y] = make([]string, boardCols)
	}
	return grid
}

func clearFullRows(grid [][]string) int {
	cleared := 0
	for y := boardRows - 1; y >= 0; y-- {
		full := true
		for x := 0; x < boardCols; x++ {
			if grid[y][x] == "" {
				full = false
				break
			}
		}
		if !full {
			continue
		}
		cleared++
		copy(grid[1:y+1], grid[0:y])
		grid[0] = make([]string, boardCols)
		y++
	}
	return cleared
}

func topRowsOccupied(grid [][]string) bool {
	for y := 0; y < 2; y++ {
		for x := 0; x < boardCols; x++ {
			if grid[y][x] != "" {
				return true
			}
		}
	}
	return false
}

// pieceBag deals pieces seven at a time in shuffled bags, the standard
// randomizer, so episode difficulty stays comparable across candidates.
type pieceBag struct {
	rng   *rand.Rand
	queue []string
}

func newPieceBag(seed int64) *pieceBag {
	return &pieceBag{rng: rand.New(rand.NewSource(seed))}
}

func (b *pieceBag) next() string {
	if len(b.queue) == 0 {
		bag := append([]string(nil), pieceKinds...)
		b.rng.Shuffle(len(bag), func(i, j int) {
			bag[i], bag[j] = bag[j], bag[i]
		})
		b.queue = bag
	}
	kind := b.queue[0]
	b.queue = b.queue[1:]
	return kind
}

func (t *trainer) getBaseWeights() (heuristicConfig, error) {
	var config struct {
		Heuristics heuristicConfig `json:"heuristics"`
	}
	if err := t.getJSON("/api/config", &config); err == nil {
		return config.Heuristics, nil
	}
	if fromLogs, err := t.readWeightFile("champion_weights.json"); err == nil {
		return fromLogs, nil
	}
	return heuristicConfig{}, fmt.Errorf("backend config unavailable")
}

// applyWeights round-trips the full config so unrelated fields keep their
// current values; only the heuristics block is replaced.
func (t *trainer) applyWeights(weights heuristicConfig) error {
	var config map[string]any
	if err := t.getJSON("/api/config", &config); err != nil {
		return err
	}
	config["heuristics"] = weights
	return t.postJSON("/api/config", config, nil)
}

func (t *trainer) mutateWeights(base heuristicConfig) heuristicConfig {
	out := base
	mutate := func(v float64) float64 {
		factor := 1 + (t.rng.Float64()*2-1)*t.mutationStrength
		next := v * factor
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return v
		}
		return next
	}
	out.LineClearBonus = mutate(out.LineClearBonus)
	out.HeightWeight = mutate(out.HeightWeight)
	out.HolesWeight = mutate(out.HolesWeight)
	out.RoughnessWeight = mutate(out.RoughnessWeight)
	out.WellsWeight = mutate(out.WellsWeight)
	out.OverhangsWeight = mutate(out.OverhangsWeight)
	return out
}

func (t *trainer) persistWeightPair(champion, challenger heuristicConfig) error {
	if err := t.writeWeightFile("champion_weights.json", champion); err != nil {
		return err
	}
	return t.writeWeightFile("challenger_weights.json", challenger)
}

func (t *trainer) writeWeightFile(name string, weights heuristicConfig) error {
	if err := os.MkdirAll("/logs", 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	path := filepath.Join("/logs", name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (t *trainer) readWeightFile(name string) (heuristicConfig, error) {
	raw, err := os.ReadFile(filepath.Join("/logs", name))
	if err != nil {
		return heuristicConfig{}, err
	}
	var cfg heuristicConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return heuristicConfig{}, err
	}
	return cfg, nil
}

func (t *trainer) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := t.ping(); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, 1*time.Second) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("timeout after 60s")
}

func (t *trainer) ping() error {
	req, err := http.NewRequest(http.MethodGet, t.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping status %d", resp.StatusCode)
	}
	return nil
}

func (t *trainer) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *trainer) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *trainer) logf(format string, args ...any) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	t.logger.Printf("[%s] %s", ts, fmt.Sprintf(format, args...))
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func buildLogger(path string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(io.MultiWriter(os.Stdout, f), "", 0)
	return logger, func() { _ = f.Close() }, nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed float64
	if _, err := fmt.Sscanf(value, "%f", &parsed); err != nil {
		return fallback
	}
	return parsed
}
