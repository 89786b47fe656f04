package engine

import (
	"testing"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

func TestDetectDisplacementFindsImpulse(t *testing.T) {
	candles := flatBars(20, 100)
	// Flat bars have range 1.0, so ATR stays near 1. Append a bar with a
	// 2.0 body, well over 0.85x ATR.
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 102.2, Low: 99.9, Close: 102,
		Volume: 1000, Confirmed: true,
	})

	disp := DetectDisplacement(candles, domain.Long, 0, 0.85)
	if disp == nil {
		t.Fatal("expected a displacement")
	}
	if disp.Direction != domain.Long {
		t.Errorf("expected LONG displacement, got %s", disp.Direction)
	}
	if disp.At != candles[len(candles)-1].Ts {
		t.Errorf("expected displacement at the impulse bar")
	}
	if disp.AtrRatio < 0.85 {
		t.Errorf("expected atrRatio >= 0.85, got %f", disp.AtrRatio)
	}
}

func TestDetectDisplacementDirectionMismatch(t *testing.T) {
	candles := flatBars(20, 100)
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 102.2, Low: 99.9, Close: 102,
		Volume: 1000, Confirmed: true,
	})

	if disp := DetectDisplacement(candles, domain.Short, 0, 0.85); disp != nil {
		t.Error("expected no SHORT displacement from a bullish impulse")
	}
}

func TestDetectDisplacementAnchoredAfterTs(t *testing.T) {
	candles := flatBars(10, 100)
	impulse := domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 102.2, Low: 99.9, Close: 102,
		Volume: 1000, Confirmed: true,
	}
	candles = append(candles, impulse)
	candles = append(candles, flatBarsFrom(impulse.Ts+60_000, 8, 102)...)

	// Anchoring after the impulse must exclude it.
	disp := DetectDisplacement(candles, domain.Long, impulse.Ts+1, 0.85)
	if disp != nil {
		t.Errorf("expected no displacement after anchor, got one at %d", disp.At)
	}

	// Anchoring at the impulse keeps it.
	disp = DetectDisplacement(candles, domain.Long, impulse.Ts, 0.85)
	if disp == nil || disp.At != impulse.Ts {
		t.Error("expected the impulse bar when anchored at its timestamp")
	}
}

func TestDetectDisplacementZeroATR(t *testing.T) {
	// Fewer than 15 bars means ATR is 0, which makes every bar untestable.
	candles := flatBars(10, 100)
	candles = append(candles, domain.Candle{
		Ts: candles[len(candles)-1].Ts + 60_000,
		Open: 100, High: 105, Low: 99.9, Close: 104.8,
		Volume: 1000, Confirmed: true,
	})

	if disp := DetectDisplacement(candles, domain.Long, 0, 0.85); disp != nil {
		t.Error("expected no displacement with zero ATR")
	}
}

func TestDetectDisplacementEmptyAndShortSeries(t *testing.T) {
	if disp := DetectDisplacement(nil, domain.Long, 0, 0.85); disp != nil {
		t.Error("expected nil for empty series")
	}
	candles := flatBars(1, 100)
	if disp := DetectDisplacement(candles, domain.Long, 0, 0.85); disp != nil {
		t.Error("expected nil for single-bar series")
	}
}

// flatBarsFrom builds n flat candles starting at the given ts.
func flatBarsFrom(ts int64, n int, close float64) []domain.Candle {
	candles := make([]domain.Candle, n)
	for i := range candles {
		candles[i] = domain.Candle{
			Ts:   ts + int64(i)*60_000,
			Open: close - 0.2, High: close + 0.5, Low: close - 0.5, Close: close,
			Volume: 1000, Confirmed: true,
		}
	}
	return candles
}
