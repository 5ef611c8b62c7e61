package main

import (
	"encoding/gob"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const statsPersistPath = "analyzer_logs/analyzer_stats.gob"

// statsDump is the on-disk snapshot: tuned weights plus rolling counters, so
// trainer-calibrated weights and observability totals survive a restart.
type statsDump struct {
	Heuristics           HeuristicConfig
	EvaluationsPerformed int64
	LastEvaluationMs     int64
	PredictionsMade      int64
	LastPredictionMs     int64
	HintsGenerated       int64
	LastHintMs           int64
	SavedAtMs            int64
}

func loadPersistedStats(analyzer *Analyzer) {
	if !GetConfig().PersistStats {
		return
	}
	dump, err := readStatsDump(statsPersistPath)
	if err != nil {
		log.Printf("[backend:stats] load error: %v", err)
		return
	}
	if dump == nil {
		return
	}

	config := GetConfig()
	config.Heuristics = dump.Heuristics
	if err := configStore.Update(config); err != nil {
		log.Printf("[backend:stats] persisted weights rejected: %v", err)
	}
	analyzer.evaluator.restoreCounters(dump.EvaluationsPerformed, dump.LastEvaluationMs)
	analyzer.engine.restoreCounters(dump.PredictionsMade, dump.LastPredictionMs)
	analyzer.coach.restoreCounters(dump.HintsGenerated, dump.LastHintMs)
}

func persistStats(analyzer *Analyzer) {
	if !GetConfig().PersistStats {
		return
	}
	if err := os.MkdirAll(filepath.Dir(statsPersistPath), 0o755); err != nil {
		log.Printf("[backend:stats] ensure dir: %v", err)
		return
	}
	if err := writeStatsDump(statsPersistPath, buildStatsDump(analyzer)); err != nil {
		log.Printf("[backend:stats] persist: %v", err)
	}
}

func buildStatsDump(analyzer *Analyzer) statsDump {
	stats := analyzer.Statistics()
	return statsDump{
		Heuristics:           GetConfig().Heuristics,
		EvaluationsPerformed: stats.Evaluation.EvaluationsPerformed,
		LastEvaluationMs:     stats.Evaluation.LastEvaluationMs,
		PredictionsMade:      stats.Prediction.PredictionsMade,
		LastPredictionMs:     stats.Prediction.LastPredictionMs,
		HintsGenerated:       stats.Coaching.HintsGenerated,
		LastHintMs:           stats.Coaching.LastHintMs,
		SavedAtMs:            time.Now().UnixMilli(),
	}
}

func writeStatsDump(path string, dump statsDump) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewEncoder(file).Encode(&dump)
}

// readStatsDump returns nil on a missing file; a truncated dump is removed
// and ignored rather than wedging startup.
func readStatsDump(path string) (*statsDump, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dump statsDump
	err = gob.NewDecoder(file).Decode(&dump)
	file.Close()
	if err != nil {
		if isEOFError(err) {
			os.Remove(path)
			return nil, nil
		}
		return nil, err
	}
	return &dump, nil
}

func isEOFError(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
