package engine

import "github.com/coronasco/cryptoscalpingfvg/internal/domain"

// biasMinCloses is the minimum series length before a directional call is
// made. Below it the slow EMA has no meaningful separation from price.
const biasMinCloses = 30

// ComputeBias classifies the higher-timeframe regime from EMA(50)/EMA(200)
// of closes. LONG when the fast EMA is above the slow one and price is above
// the fast EMA, SHORT mirrored, NEUTRAL otherwise or on insufficient data.
func ComputeBias(candles []domain.Candle) domain.Direction {
	if len(candles) < biasMinCloses {
		return domain.Neutral
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	ema50 := emaSeries(closes, 50)
	ema200 := emaSeries(closes, 200)

	last := closes[len(closes)-1]
	e50 := ema50[len(ema50)-1]
	e200 := ema200[len(ema200)-1]

	if e50 > e200 && last > e50 {
		return domain.Long
	}
	if e50 < e200 && last < e50 {
		return domain.Short
	}
	return domain.Neutral
}
