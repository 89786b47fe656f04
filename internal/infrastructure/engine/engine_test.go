package engine

import (
	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

// barSeries builds candles from [open, high, low, close] rows, one minute
// apart starting at ts 1_700_000_000_000.
func barSeries(rows ...[4]float64) []domain.Candle {
	candles := make([]domain.Candle, len(rows))
	for i, r := range rows {
		candles[i] = domain.Candle{
			Ts:        1_700_000_000_000 + int64(i)*60_000,
			Open:      r[0],
			High:      r[1],
			Low:       r[2],
			Close:     r[3],
			Volume:    1000,
			Confirmed: true,
		}
	}
	return candles
}

// flatBars builds n identical candles around the given close.
func flatBars(n int, close float64) []domain.Candle {
	rows := make([][4]float64, n)
	for i := range rows {
		rows[i] = [4]float64{close - 0.2, close + 0.5, close - 0.5, close}
	}
	return barSeries(rows...)
}
