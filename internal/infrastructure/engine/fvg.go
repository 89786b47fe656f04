package engine

import "github.com/coronasco/cryptoscalpingfvg/internal/domain"

// minGapFraction filters out imbalances below 0.05% of price; anything
// smaller is spread noise, not a tradeable void.
const minGapFraction = 0.0005

// DetectFVG finds three-bar price imbalances in formation order. A bullish
// gap exists when the first bar's high sits below the third bar's low, a
// bearish gap when the first bar's low sits above the third bar's high. The
// middle bar is part of the window but irrelevant to the test.
//
// FilledPercent is computed in a single post-pass against the close of the
// final candle in the whole series: gaps whose range that close never
// entered stay at 0.
func DetectFVG(candles []domain.Candle) []domain.FVG {
	var result []domain.FVG
	if len(candles) < 3 {
		return result
	}

	for i := 2; i < len(candles); i++ {
		c1 := candles[i-2]
		c3 := candles[i]
		minGap := c3.Close * minGapFraction

		if c1.High < c3.Low {
			low, high := c1.High, c3.Low
			if high-low < minGap {
				continue
			}
			result = append(result, domain.FVG{
				Low:       low,
				High:      high,
				Direction: domain.Long,
				CreatedAt: c3.Ts,
				Size:      high - low,
			})
		}

		if c1.Low > c3.High {
			low, high := c3.High, c1.Low
			if high-low < minGap {
				continue
			}
			result = append(result, domain.FVG{
				Low:       low,
				High:      high,
				Direction: domain.Short,
				CreatedAt: c3.Ts,
				Size:      high - low,
			})
		}
	}

	lastClose := candles[len(candles)-1].Close
	for i := range result {
		gap := &result[i]
		if lastClose < gap.Low || lastClose > gap.High {
			continue
		}
		distance := gap.High - gap.Low
		if gap.Direction == domain.Long {
			gap.FilledPercent = (lastClose - gap.Low) / distance * 100
		} else {
			gap.FilledPercent = (gap.High - lastClose) / distance * 100
		}
	}

	return result
}
