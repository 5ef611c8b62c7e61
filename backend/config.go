package main

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrConfigOutOfRange marks configuration updates outside the documented
// ranges. Updates are rejected wholesale: no field is applied.
var ErrConfigOutOfRange = errors.New("configuration out of range")

type Config struct {
	MaxSuggestions      int             `json:"max_suggestions"`
	ConfidenceThreshold float64         `json:"confidence_threshold"`
	PersistStats        bool            `json:"persist_stats"`
	Heuristics          HeuristicConfig `json:"heuristics"`
	Coaching            CoachingConfig  `json:"coaching"`
}

// HeuristicConfig carries the evaluator weights and baselines. The total
// score sums, per metric, weight * (baseline - metric); line clears add
// LineClearBonus per completed row. Higher is better.
type HeuristicConfig struct {
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

type CoachingConfig struct {
	Enabled               bool    `json:"enabled"`
	MaxHints              int     `json:"max_hints"`
	HintLifetimeMs        int64   `json:"hint_lifetime_ms"`
	ConfidenceThreshold   float64 `json:"confidence_threshold"`
	EnableMoveSuggestions bool    `json:"enable_move_suggestions"`
	EnableDangerWarnings  bool    `json:"enable_danger_warnings"`
	EnableStrategyTips    bool    `json:"enable_strategy_tips"`
}

func DefaultConfig() Config {
	return Config{
		MaxSuggestions:      5,
		ConfidenceThreshold: 0.3,
		PersistStats:        true,
		Heuristics: HeuristicConfig{
			LineClearBonus:    10.0,
			HeightWeight:      1.0,
			HolesWeight:       2.0,
			RoughnessWeight:   1.5,
			WellsWeight:       0.5,
			OverhangsWeight:   1.0,
			HeightBaseline:    float64(BoardHeight),
			HolesBaseline:     10.0,
			RoughnessBaseline: 10.0,
			WellsBaseline:     5.0,
			OverhangsBaseline: 5.0,
		},
		Coaching: CoachingConfig{
			Enabled:               true,
			MaxHints:              5,
			HintLifetimeMs:        10000,
			ConfidenceThreshold:   0.6,
			EnableMoveSuggestions: true,
			EnableDangerWarnings:  true,
			EnableStrategyTips:    true,
		},
	}
}

func (c Config) Validate() error {
	if c.MaxSuggestions < 1 || c.MaxSuggestions > 10 {
		return fmt.Errorf("%w: max_suggestions %d outside [1,10]", ErrConfigOutOfRange, c.MaxSuggestions)
	}
	if c.ConfidenceThreshold < 0.0 || c.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("%w: confidence_threshold %f outside [0.0,1.0]", ErrConfigOutOfRange, c.ConfidenceThreshold)
	}
	if err := c.Heuristics.Validate(); err != nil {
		return err
	}
	return c.Coaching.Validate()
}

func (h HeuristicConfig) Validate() error {
	values := map[string]float64{
		"line_clear_bonus":   h.LineClearBonus,
		"height_weight":      h.HeightWeight,
		"holes_weight":       h.HolesWeight,
		"roughness_weight":   h.RoughnessWeight,
		"wells_weight":       h.WellsWeight,
		"overhangs_weight":   h.OverhangsWeight,
		"height_baseline":    h.HeightBaseline,
		"holes_baseline":     h.HolesBaseline,
		"roughness_baseline": h.RoughnessBaseline,
		"wells_baseline":     h.WellsBaseline,
		"overhangs_baseline": h.OverhangsBaseline,
	}
	for name, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: heuristic %s is not finite", ErrConfigOutOfRange, name)
		}
	}
	return nil
}

func (c CoachingConfig) Validate() error {
	if c.MaxHints < 1 {
		return fmt.Errorf("%w: coaching max_hints %d below 1", ErrConfigOutOfRange, c.MaxHints)
	}
	if c.HintLifetimeMs < 1000 {
		return fmt.Errorf("%w: coaching hint_lifetime_ms %d below 1000", ErrConfigOutOfRange, c.HintLifetimeMs)
	}
	if c.ConfidenceThreshold < 0.0 || c.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("%w: coaching confidence_threshold %f outside [0.0,1.0]", ErrConfigOutOfRange, c.ConfidenceThreshold)
	}
	return nil
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// Update replaces the stored configuration after validation. A rejected
// update leaves the previous configuration untouched.
func (c *ConfigStore) Update(newConfig Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
	return nil
}
