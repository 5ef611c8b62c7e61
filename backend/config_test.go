package main

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestUpdateRejectsOutOfRange(t *testing.T) {
	prev := GetConfig()
	defer configStore.Update(prev)

	mutations := []func(*Config){
		func(c *Config) { c.MaxSuggestions = 0 },
		func(c *Config) { c.MaxSuggestions = 11 },
		func(c *Config) { c.ConfidenceThreshold = 1.5 },
		func(c *Config) { c.ConfidenceThreshold = -0.1 },
		func(c *Config) { c.Heuristics.HolesWeight = math.NaN() },
		func(c *Config) { c.Heuristics.HeightBaseline = math.Inf(1) },
		func(c *Config) { c.Coaching.MaxHints = 0 },
		func(c *Config) { c.Coaching.HintLifetimeMs = 500 },
		func(c *Config) { c.Coaching.ConfidenceThreshold = 2.0 },
	}
	for i, mutate := range mutations {
		bad := DefaultConfig()
		mutate(&bad)
		if err := configStore.Update(bad); !errors.Is(err, ErrConfigOutOfRange) {
			t.Fatalf("mutation %d: expected ErrConfigOutOfRange, got %v", i, err)
		}
		if GetConfig() != prev {
			t.Fatalf("mutation %d: rejected update changed the stored config", i)
		}
	}
}

func TestUpdateAppliesValidConfig(t *testing.T) {
	prev := GetConfig()
	defer configStore.Update(prev)

	next := DefaultConfig()
	next.MaxSuggestions = 3
	next.ConfidenceThreshold = 0.5
	next.Heuristics.HolesWeight = 4.0
	if err := configStore.Update(next); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}
	got := GetConfig()
	if got.MaxSuggestions != 3 || got.ConfidenceThreshold != 0.5 || got.Heuristics.HolesWeight != 4.0 {
		t.Fatalf("update not applied: %+v", got)
	}
}
