package engine

import (
	"math"
	"testing"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

func TestDetectSweepsBearish(t *testing.T) {
	// 20 flat bars with highs at 100.5, then a bar that wicks to 101 and
	// closes back below the pivot: exactly one SHORT sweep.
	candles := flatBars(20, 100)
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 101, Low: 99.8, Close: 100.2,
		Volume: 1000, Confirmed: true,
	})

	sweeps := DetectSweeps(candles, DefaultSweepLookback, DefaultSweepThreshold)
	if len(sweeps) != 1 {
		t.Fatalf("expected 1 sweep, got %d", len(sweeps))
	}
	s := sweeps[0]
	if s.Direction != domain.Short {
		t.Errorf("expected SHORT sweep, got %s", s.Direction)
	}
	if s.Level != 100.5 {
		t.Errorf("expected pivot level 100.5, got %f", s.Level)
	}
	want := (101 - 100.5) / 100.5
	if math.Abs(s.Strength-want) > 1e-12 {
		t.Errorf("expected strength %f, got %f", want, s.Strength)
	}
}

func TestDetectSweepsBullish(t *testing.T) {
	candles := flatBars(20, 100)
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 100.3, Low: 99, Close: 99.8,
		Volume: 1000, Confirmed: true,
	})

	sweeps := DetectSweeps(candles, DefaultSweepLookback, DefaultSweepThreshold)
	if len(sweeps) != 1 {
		t.Fatalf("expected 1 sweep, got %d", len(sweeps))
	}
	if sweeps[0].Direction != domain.Long {
		t.Errorf("expected LONG sweep, got %s", sweeps[0].Direction)
	}
	if sweeps[0].Level != 99.5 {
		t.Errorf("expected pivot level 99.5, got %f", sweeps[0].Level)
	}
}

func TestDetectSweepsBothSides(t *testing.T) {
	// A single bar can wick both sides of the range.
	candles := flatBars(20, 100)
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 101, Low: 99, Close: 100,
		Volume: 1000, Confirmed: true,
	})

	sweeps := DetectSweeps(candles, DefaultSweepLookback, DefaultSweepThreshold)
	if len(sweeps) != 2 {
		t.Fatalf("expected 2 sweeps, got %d", len(sweeps))
	}
}

func TestDetectSweepsCloseBeyondPivotIsNotASweep(t *testing.T) {
	// Breakout, not a sweep: the close holds above the pivot high.
	candles := flatBars(20, 100)
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 101.5, Low: 99.9, Close: 101.2,
		Volume: 1000, Confirmed: true,
	})

	if sweeps := DetectSweeps(candles, DefaultSweepLookback, DefaultSweepThreshold); len(sweeps) != 0 {
		t.Errorf("expected no sweeps for a held breakout, got %d", len(sweeps))
	}
}

func TestDetectSweepsBelowThreshold(t *testing.T) {
	// Wick only 0.05% beyond the pivot, under the 0.1% threshold.
	candles := flatBars(20, 100)
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 100.55, Low: 99.9, Close: 100.1,
		Volume: 1000, Confirmed: true,
	})

	if sweeps := DetectSweeps(candles, DefaultSweepLookback, DefaultSweepThreshold); len(sweeps) != 0 {
		t.Errorf("expected no sweeps below threshold, got %d", len(sweeps))
	}
}

func TestDetectSweepsTooFewBars(t *testing.T) {
	candles := flatBars(4, 100)
	if sweeps := DetectSweeps(candles, DefaultSweepLookback, DefaultSweepThreshold); len(sweeps) != 0 {
		t.Errorf("expected no sweeps with fewer than 5 bars")
	}
}
