package engine

import (
	"math"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

// displacementScanBars bounds how far back the impulse search goes.
const displacementScanBars = 20

// DetectDisplacement finds the most recent impulsive bar in the requested
// direction: body size at least atrMultiplier times the 14-period ATR of the
// full series. When fromTs is non-zero only bars at or after it are
// considered, which anchors the search at a sweep. Bars are scanned newest to
// oldest so the freshest qualifying impulse wins. A zero ATR makes every bar
// untestable and yields nil.
func DetectDisplacement(candles []domain.Candle, direction domain.Direction, fromTs int64, atrMultiplier float64) *domain.Displacement {
	if len(candles) == 0 {
		return nil
	}

	atr := averageTrueRange(candles)

	filtered := candles
	if fromTs > 0 {
		filtered = nil
		for _, c := range candles {
			if c.Ts >= fromTs {
				filtered = append(filtered, c)
			}
		}
	}
	if len(filtered) < 2 {
		return nil
	}

	window := filtered
	if len(window) > displacementScanBars {
		window = window[len(window)-displacementScanBars:]
	}

	for i := len(window) - 1; i >= 0; i-- {
		c := window[i]

		dir := domain.Short
		if c.Close > c.Open {
			dir = domain.Long
		}
		if dir != direction {
			continue
		}
		if atr == 0 {
			continue
		}

		body := math.Abs(c.Close - c.Open)
		ratio := body / atr
		if ratio >= atrMultiplier {
			return &domain.Displacement{
				At:        c.Ts,
				Body:      body,
				AtrRatio:  ratio,
				Direction: direction,
			}
		}
	}

	return nil
}
