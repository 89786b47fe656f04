package config

import (
	"testing"
	"time"
)

func TestGetEnvListParsesAndNormalizes(t *testing.T) {
	t.Setenv("SYMBOLS", "btcusdt, ethusdt ,,SOLUSDT")
	got := getEnvList("SYMBOLS", defaultSymbols)
	want := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	if len(got) != len(want) {
		t.Fatalf("expected %d symbols, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestGetEnvListFallback(t *testing.T) {
	t.Setenv("SYMBOLS", "")
	got := getEnvList("SYMBOLS", defaultSymbols)
	if len(got) != len(defaultSymbols) {
		t.Errorf("expected default symbols, got %v", got)
	}
}

func TestGetEnvDurationRejectsNonPositive(t *testing.T) {
	t.Setenv("SCAN_INTERVAL", "-30s")
	if d := getEnvDuration("SCAN_INTERVAL", time.Minute); d != time.Minute {
		t.Errorf("expected fallback for negative duration, got %v", d)
	}
	t.Setenv("SCAN_INTERVAL", "45s")
	if d := getEnvDuration("SCAN_INTERVAL", time.Minute); d != 45*time.Second {
		t.Errorf("expected 45s, got %v", d)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("ALERT_MIN_SCORE", "85")
	if n := getEnvInt("ALERT_MIN_SCORE", 70); n != 85 {
		t.Errorf("expected 85, got %d", n)
	}
	t.Setenv("ALERT_MIN_SCORE", "not-a-number")
	if n := getEnvInt("ALERT_MIN_SCORE", 70); n != 70 {
		t.Errorf("expected fallback 70, got %d", n)
	}
}
