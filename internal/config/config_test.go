package config

import (
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JUDGE_POLL_INTERVAL_MS", "")
	t.Setenv("LOCK_BACKEND", "")

	c := Load()
	if c.JudgePollInterval != time.Second || c.JudgeMaxPollAttempts != 10 {
		t.Errorf("unexpected judge polling %v x %d", c.JudgePollInterval, c.JudgeMaxPollAttempts)
	}
	if c.JudgeCPUTimeLimit != 5 || c.JudgeMemoryLimitKB != 128000 {
		t.Errorf("unexpected judge limits %v %d", c.JudgeCPUTimeLimit, c.JudgeMemoryLimitKB)
	}
	// set but empty is taken literally
	if c.LockBackend != "" {
		t.Errorf("unexpected lock backend %q", c.LockBackend)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JUDGE_MAX_POLL_ATTEMPTS", "4")
	t.Setenv("ROOM_LOCK_TTL_SECONDS", "not a number")
	t.Setenv("LOCK_BACKEND", "Redis")
	t.Setenv("ALLOWED_ORIGINS", "https://arena.dev, ,http://localhost:3000")
	t.Setenv("API_URL", "0.0.0.0")
	t.Setenv("PORT", "9000")

	c := Load()
	if c.JudgeMaxPollAttempts != 4 {
		t.Errorf("expected 4 poll attempts, got %d", c.JudgeMaxPollAttempts)
	}
	if c.RoomLockTTL != 10*time.Second {
		t.Errorf("invalid number must fall back, got %v", c.RoomLockTTL)
	}
	if c.LockBackend != LockBackendRedis {
		t.Errorf("unexpected lock backend %q", c.LockBackend)
	}
	if !slices.Equal(c.AllowedOrigins, []string{"https://arena.dev", "http://localhost:3000"}) {
		t.Errorf("unexpected origins %v", c.AllowedOrigins)
	}
	if c.Address() != "0.0.0.0:9000" {
		t.Errorf("unexpected address %q", c.Address())
	}
}

func TestValidate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic without DB_URL")
		}
	}()
	(&Config{JWTSecret: []byte("x"), LockBackend: LockBackendLocal}).Validate()
}
