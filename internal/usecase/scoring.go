package usecase

import (
	"math"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

// ScoreParams carries everything the quality score depends on. AgeMinutes is
// measured from the gap's formation time, not from compute time, and the
// caller supplies it so scoring stays clock-free.
type ScoreParams struct {
	Bias                 domain.Direction
	FVG                  domain.FVG
	Sweep                *domain.Sweep
	RR                   float64
	AgeMinutes           float64
	DisplacementStrength float64 // 0 means absent, scored as 1
}

// ScoreSetup combines bias alignment, sweep strength, displacement strength,
// reward:risk and freshness into a single quality score.
//
// Weights (each capped independently):
//   - bias alignment: 25 aligned, 12 neutral, 0 opposed
//   - sweep: min(20, strength*120), flat 8 when no sweep was found
//   - displacement: min(15, strength*15)
//   - reward:risk: clamp(rr*8, 0, 25)
//   - freshness: max(0, 15 - age*0.8), gone by ~18.75 minutes
//
// The sum is rounded and clamped to [20, 100]: the floor keeps every emitted
// setup from ranking as worthless, the ceiling bounds comparisons.
func ScoreSetup(p ScoreParams) int {
	biasScore := 0.0
	switch {
	case p.Bias == p.FVG.Direction:
		biasScore = 25
	case p.Bias == domain.Neutral:
		biasScore = 12
	}

	sweepScore := 8.0
	if p.Sweep != nil {
		sweepScore = math.Min(20, p.Sweep.Strength*120)
	}

	dispStrength := p.DisplacementStrength
	if dispStrength == 0 {
		dispStrength = 1
	}
	dispScore := math.Min(15, dispStrength*15)

	rrScore := math.Max(0, math.Min(25, p.RR*8))
	freshness := math.Max(0, 15-p.AgeMinutes*0.8)

	total := math.Round(biasScore + sweepScore + dispScore + rrScore + freshness)
	return int(math.Max(20, math.Min(100, total)))
}
