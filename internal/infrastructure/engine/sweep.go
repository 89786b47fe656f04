package engine

import "github.com/coronasco/cryptoscalpingfvg/internal/domain"

const (
	// DefaultSweepLookback is the window the pivot extremes are taken over.
	DefaultSweepLookback = 30
	// DefaultSweepThreshold is the minimum fractional excursion beyond the
	// pivot (0.1%) for a wick to count as a liquidity grab.
	DefaultSweepThreshold = 0.001
)

// DetectSweeps looks for liquidity grabs on the final bar of the window: a
// wick beyond the prior pivot high/low that closes back inside range. Both
// directions can fire on the same bar. Fewer than 5 bars yields no sweeps.
func DetectSweeps(candles []domain.Candle, lookback int, threshold float64) []domain.Sweep {
	var result []domain.Sweep
	if len(candles) < 5 {
		return result
	}

	window := candles
	if len(window) > lookback {
		window = window[len(window)-lookback:]
	}
	last := window[len(window)-1]
	prior := window[:len(window)-1]

	pivotHigh := prior[0].High
	pivotLow := prior[0].Low
	for _, c := range prior[1:] {
		if c.High > pivotHigh {
			pivotHigh = c.High
		}
		if c.Low < pivotLow {
			pivotLow = c.Low
		}
	}

	if last.High > pivotHigh*(1+threshold) && last.Close < pivotHigh {
		result = append(result, domain.Sweep{
			Level:     pivotHigh,
			Direction: domain.Short,
			At:        last.Ts,
			Strength:  (last.High - pivotHigh) / pivotHigh,
		})
	}

	if last.Low < pivotLow*(1-threshold) && last.Close > pivotLow {
		result = append(result, domain.Sweep{
			Level:     pivotLow,
			Direction: domain.Long,
			At:        last.Ts,
			Strength:  (pivotLow - last.Low) / pivotLow,
		})
	}

	return result
}
