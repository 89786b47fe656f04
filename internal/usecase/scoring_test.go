package usecase

import (
	"testing"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

func longGap() domain.FVG {
	return domain.FVG{Low: 100, High: 101, Direction: domain.Long, Size: 1}
}

func TestScoreSetupBounds(t *testing.T) {
	// Worst case: opposed bias, no sweep, no rr, stale gap.
	low := ScoreSetup(ScoreParams{
		Bias:       domain.Short,
		FVG:        longGap(),
		RR:         0,
		AgeMinutes: 1000,
	})
	if low < 20 || low > 100 {
		t.Errorf("score %d out of [20,100]", low)
	}
	if low != 23 {
		// 0 bias + 8 no-sweep + 15 displacement(default 1) + 0 rr + 0 freshness
		t.Errorf("expected floor-adjacent score 23, got %d", low)
	}

	// Best case: everything maxed.
	high := ScoreSetup(ScoreParams{
		Bias:                 domain.Long,
		FVG:                  longGap(),
		Sweep:                &domain.Sweep{Strength: 1},
		RR:                   10,
		AgeMinutes:           0,
		DisplacementStrength: 5,
	})
	if high != 100 {
		t.Errorf("expected capped score 100, got %d", high)
	}
}

func TestScoreSetupBiasAlignment(t *testing.T) {
	base := ScoreParams{FVG: longGap(), RR: 1, AgeMinutes: 100, DisplacementStrength: 1}

	aligned := base
	aligned.Bias = domain.Long
	neutral := base
	neutral.Bias = domain.Neutral
	opposed := base
	opposed.Bias = domain.Short

	a, n, o := ScoreSetup(aligned), ScoreSetup(neutral), ScoreSetup(opposed)
	if a-n != 13 {
		t.Errorf("expected aligned-neutral delta 13, got %d", a-n)
	}
	if n-o != 12 {
		t.Errorf("expected neutral-opposed delta 12, got %d", n-o)
	}
}

func TestScoreSetupSweepCap(t *testing.T) {
	p := ScoreParams{Bias: domain.Neutral, FVG: longGap(), AgeMinutes: 100, DisplacementStrength: 1}

	weak := p
	weak.Sweep = &domain.Sweep{Strength: 0.05} // 0.05*120 = 6, below the no-sweep 8
	strong := p
	strong.Sweep = &domain.Sweep{Strength: 0.5} // capped at 20

	if got := ScoreSetup(strong) - ScoreSetup(p); got != 12 {
		t.Errorf("expected strong sweep to add 12 over no sweep, got %d", got)
	}
	if got := ScoreSetup(weak) - ScoreSetup(p); got != -2 {
		t.Errorf("expected weak sweep to score below the flat 8, got delta %d", got)
	}
}

func TestScoreSetupFreshnessDecay(t *testing.T) {
	p := ScoreParams{Bias: domain.Neutral, FVG: longGap(), DisplacementStrength: 1}

	fresh := p
	fresh.AgeMinutes = 0
	stale := p
	stale.AgeMinutes = 19 // past the ~18.75 minute decay

	if got := ScoreSetup(fresh) - ScoreSetup(stale); got != 15 {
		t.Errorf("expected 15 points of freshness to decay away, got %d", got)
	}
	older := p
	older.AgeMinutes = 500
	if ScoreSetup(older) != ScoreSetup(stale) {
		t.Error("expected freshness to bottom out at 0, not go negative")
	}
}

func TestScoreSetupRRWeight(t *testing.T) {
	p := ScoreParams{Bias: domain.Neutral, FVG: longGap(), AgeMinutes: 100, DisplacementStrength: 1}

	rr2 := p
	rr2.RR = 2 // 16 points
	rr10 := p
	rr10.RR = 10 // capped at 25

	if got := ScoreSetup(rr2) - ScoreSetup(p); got != 16 {
		t.Errorf("expected rr=2 to add 16, got %d", got)
	}
	if got := ScoreSetup(rr10) - ScoreSetup(p); got != 25 {
		t.Errorf("expected rr cap of 25, got %d", got)
	}
}
