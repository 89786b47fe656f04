package engine

import (
	"math"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

const atrPeriod = 14

// averageTrueRange returns the average of the last atrPeriod true ranges,
// or 0 when the series is too short to produce that many.
func averageTrueRange(candles []domain.Candle) float64 {
	if len(candles) < atrPeriod+1 {
		return 0
	}

	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		cur := candles[i]
		prev := candles[i-1]

		tr := cur.High - cur.Low
		if hc := math.Abs(cur.High - prev.Close); hc > tr {
			tr = hc
		}
		if lc := math.Abs(cur.Low - prev.Close); lc > tr {
			tr = lc
		}
		trs = append(trs, tr)
	}

	slice := trs[len(trs)-atrPeriod:]
	sum := 0.0
	for _, tr := range slice {
		sum += tr
	}
	return sum / float64(len(slice))
}
