package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_TTL", "")
	t.Setenv("ORACLE_MIN_CONFIDENCE", "")
	cfg := Load()

	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v, want 1h", cfg.Session.TTL)
	}
	if cfg.Ai.OracleMinConfidence != 0.6 {
		t.Errorf("OracleMinConfidence = %v, want 0.6", cfg.Ai.OracleMinConfidence)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("TURN_TIMEOUT", "2s")
	t.Setenv("ORACLE_ENABLED", "true")
	t.Setenv("MAX_SESSIONS_PER_USER", "2")
	t.Setenv("DEFAULT_BUDGET", "75.5")
	cfg := Load()

	if cfg.Session.TTL != 90*time.Second {
		t.Errorf("Session.TTL = %v, want 90s", cfg.Session.TTL)
	}
	if cfg.Session.TurnTimeout != 2*time.Second {
		t.Errorf("TurnTimeout = %v, want 2s", cfg.Session.TurnTimeout)
	}
	if !cfg.Ai.OracleEnabled {
		t.Error("OracleEnabled = false, want true")
	}
	if cfg.Session.MaxSessionsPerUser != 2 {
		t.Errorf("MaxSessionsPerUser = %d, want 2", cfg.Session.MaxSessionsPerUser)
	}
	if cfg.Assistant.DefaultBudget != 75.5 {
		t.Errorf("DefaultBudget = %v, want 75.5", cfg.Assistant.DefaultBudget)
	}
}
