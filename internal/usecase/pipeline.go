package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/engine"
)

const (
	displacementMultiplier = 0.85
	expiryMinutes          = 180
	riskFloor              = 0.0001
)

// BuildParams is one pipeline invocation for one symbol: three candle series
// tagged by role plus an explicit clock so age-based scoring and expiry are
// deterministic under test.
type BuildParams struct {
	Symbol    string
	Timeframe string
	Working   []domain.Candle // fine timeframe the gaps and sweeps come from
	Bias      []domain.Candle // macro timeframe for regime and TP2
	Trigger   []domain.Candle // high-resolution series for last price and buffer
	Now       time.Time
}

// BuildSetups runs the full detection pipeline for one symbol and returns
// setups sorted by score descending. It is a pure function of its inputs:
// no I/O, no shared state, safe to call concurrently across symbols.
func BuildSetups(p BuildParams) []domain.Setup {
	if len(p.Working) == 0 {
		return nil
	}

	bias := engine.ComputeBias(p.Bias)
	fvgs := engine.DetectFVG(p.Working)
	sweeps := engine.DetectSweeps(p.Working, engine.DefaultSweepLookback, engine.DefaultSweepThreshold)

	lastPrice := p.Working[len(p.Working)-1].Close
	if len(p.Trigger) > 0 {
		lastPrice = p.Trigger[len(p.Trigger)-1].Close
	}
	workingClose := lastConfirmedClose(p.Working)
	buffer := bufferFromRanges(p.Trigger)

	var setups []domain.Setup
	for _, fvg := range recentGaps(fvgs, 6) {
		direction := fvg.Direction
		if bias != domain.Neutral && bias != direction {
			continue
		}

		sweep := matchSweep(sweeps, direction)
		var fromTs int64
		if sweep != nil {
			fromTs = sweep.At
		}
		displacement := engine.DetectDisplacement(p.Working, direction, fromTs, displacementMultiplier)

		entryPrice := fvg.Low + fvg.Size*0.5
		stopLoss := fvg.Low - buffer
		if direction == domain.Short {
			stopLoss = fvg.High + buffer
		}

		tp1 := swingExtreme(p.Working, 40, direction)
		if tp1 == 0 {
			tp1 = fallbackTarget(entryPrice, direction, 0.01)
		}
		tp2 := swingExtreme(p.Bias, 120, direction)
		if tp2 == 0 {
			tp2 = fallbackTarget(entryPrice, direction, 0.03)
		}

		rrToTp1 := math.Abs(tp1-entryPrice) / math.Max(riskFloor, math.Abs(entryPrice-stopLoss))
		ageMinutes := float64(p.Now.UnixMilli()-fvg.CreatedAt) / 60000

		dispStrength := 0.0
		if displacement != nil {
			dispStrength = displacement.AtrRatio
		}
		score := ScoreSetup(ScoreParams{
			Bias:                 bias,
			FVG:                  fvg,
			Sweep:                sweep,
			RR:                   rrToTp1,
			AgeMinutes:           ageMinutes,
			DisplacementStrength: dispStrength,
		})

		status := deriveStatus(statusInput{
			Direction:    direction,
			LastPrice:    lastPrice,
			WorkingClose: workingClose,
			Entry:        entryPrice,
			SL:           stopLoss,
			TP1:          tp1,
			TP2:          tp2,
			FvgLow:       fvg.Low,
			FvgHigh:      fvg.High,
			CreatedAt:    fvg.CreatedAt,
			Now:          p.Now,
		})

		invalidation := fmt.Sprintf("Invalid if %s close below FVG low.", p.Timeframe)
		if direction == domain.Short {
			invalidation = fmt.Sprintf("Invalid if %s close above FVG high.", p.Timeframe)
		}

		var sweepLevel *float64
		if sweep != nil {
			level := sweep.Level
			sweepLevel = &level
		}

		tp2Val := tp2
		setups = append(setups, domain.Setup{
			ID:               DeterministicID(p.Symbol, fvg.CreatedAt, fvg.Low, fvg.High),
			Symbol:           p.Symbol,
			Timeframe:        p.Timeframe,
			Direction:        direction,
			Status:           status,
			Score:            score,
			CreatedAt:        fvg.CreatedAt,
			UpdatedAt:        p.Now.UnixMilli(),
			FvgLow:           fvg.Low,
			FvgHigh:          fvg.High,
			SweepLevel:       sweepLevel,
			EntryPrice:       entryPrice,
			StopLoss:         stopLoss,
			TP1:              tp1,
			TP2:              &tp2Val,
			RRToTP1:          rrToTp1,
			InvalidationText: invalidation,
			Meta: map[string]interface{}{
				"bias":         bias,
				"displacement": dispStrength,
				"ageMinutes":   ageMinutes,
				"filledPct":    fvg.FilledPercent,
			},
		})
	}

	sort.Slice(setups, func(i, j int) bool {
		return setups[i].Score > setups[j].Score
	})
	return setups
}

// DeterministicID derives the setup's identity from the gap that produced
// it. Same symbol, formation time and gap bounds always hash to the same
// UUID, which is what makes upsert-by-id idempotent.
func DeterministicID(symbol string, createdAt int64, fvgLow, fvgHigh float64) string {
	key := fmt.Sprintf("%s-%d-%.5f-%.5f", symbol, createdAt, fvgLow, fvgHigh)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

type statusInput struct {
	Direction    domain.Direction
	LastPrice    float64
	WorkingClose float64
	Entry        float64
	SL           float64
	TP1          float64
	TP2          float64
	FvgLow       float64
	FvgHigh      float64
	CreatedAt    int64
	Now          time.Time
}

// deriveStatus re-derives the lifecycle state from current price alone, so
// there is no transition history to persist. The stop-loss check runs before
// everything else, then a confirmed working-timeframe close through the gap
// boundary marks the idea invalidated, then targets from farthest to
// nearest, then fill/trigger, then expiry.
func deriveStatus(in statusInput) domain.SetupStatus {
	if in.Direction == domain.Long {
		switch {
		case in.LastPrice <= in.SL:
			return domain.StatusSL
		case in.WorkingClose > 0 && in.WorkingClose < in.FvgLow:
			return domain.StatusInvalidated
		case in.TP2 > 0 && in.LastPrice >= in.TP2:
			return domain.StatusTP2
		case in.LastPrice >= in.TP1:
			return domain.StatusTP1
		case in.LastPrice >= in.Entry:
			return domain.StatusFilled
		case in.LastPrice >= in.FvgLow && in.LastPrice <= in.FvgHigh:
			return domain.StatusTriggered
		}
	} else {
		switch {
		case in.LastPrice >= in.SL:
			return domain.StatusSL
		case in.WorkingClose > 0 && in.WorkingClose > in.FvgHigh:
			return domain.StatusInvalidated
		case in.TP2 > 0 && in.LastPrice <= in.TP2:
			return domain.StatusTP2
		case in.LastPrice <= in.TP1:
			return domain.StatusTP1
		case in.LastPrice <= in.Entry:
			return domain.StatusFilled
		case in.LastPrice <= in.FvgHigh && in.LastPrice >= in.FvgLow:
			return domain.StatusTriggered
		}
	}

	ageMinutes := float64(in.Now.UnixMilli()-in.CreatedAt) / 60000
	if ageMinutes > expiryMinutes {
		return domain.StatusExpired
	}
	return domain.StatusWaiting
}

// recentGaps returns up to n of the newest gaps, newest first.
func recentGaps(fvgs []domain.FVG, n int) []domain.FVG {
	start := len(fvgs) - n
	if start < 0 {
		start = 0
	}
	recent := fvgs[start:]

	out := make([]domain.FVG, len(recent))
	for i, fvg := range recent {
		out[len(recent)-1-i] = fvg
	}
	return out
}

func matchSweep(sweeps []domain.Sweep, direction domain.Direction) *domain.Sweep {
	for i := range sweeps {
		if sweeps[i].Direction == direction {
			return &sweeps[i]
		}
	}
	return nil
}

// swingExtreme returns the max high (LONG) or min low (SHORT) over the last
// n candles, or 0 when the series is empty.
func swingExtreme(candles []domain.Candle, n int, direction domain.Direction) float64 {
	if len(candles) == 0 {
		return 0
	}
	window := candles
	if len(window) > n {
		window = window[len(window)-n:]
	}

	if direction == domain.Long {
		high := window[0].High
		for _, c := range window[1:] {
			if c.High > high {
				high = c.High
			}
		}
		return high
	}
	low := window[0].Low
	for _, c := range window[1:] {
		if c.Low < low {
			low = c.Low
		}
	}
	return low
}

func fallbackTarget(entry float64, direction domain.Direction, pct float64) float64 {
	if direction == domain.Long {
		return entry * (1 + pct)
	}
	return entry * (1 - pct)
}

// bufferFromRanges sizes the stop-loss buffer from recent trigger-timeframe
// volatility: 0.3 times the average bar range over the last 15 bars, with a
// flat 0.1 default when fewer than 5 bars are available.
func bufferFromRanges(candles []domain.Candle) float64 {
	if len(candles) < 5 {
		return 0.1
	}
	window := candles
	if len(window) > 15 {
		window = window[len(window)-15:]
	}

	sum := 0.0
	for _, c := range window {
		sum += c.High - c.Low
	}
	return sum / float64(len(window)) * 0.3
}

// lastConfirmedClose returns the close of the newest confirmed candle,
// falling back to the final candle when none are flagged confirmed.
func lastConfirmedClose(candles []domain.Candle) float64 {
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Confirmed {
			return candles[i].Close
		}
	}
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}
