package domain

// Direction is the directional regime of a bias or setup.
// NEUTRAL is a valid bias but never a valid setup direction.
type Direction string

const (
	Long    Direction = "LONG"
	Short   Direction = "SHORT"
	Neutral Direction = "NEUTRAL"
)

// SetupStatus is the lifecycle state of a setup, re-derived from the latest
// price on every run.
type SetupStatus string

const (
	StatusWaiting     SetupStatus = "WAITING"
	StatusTriggered   SetupStatus = "TRIGGERED"
	StatusFilled      SetupStatus = "FILLED"
	StatusTP1         SetupStatus = "TP1"
	StatusTP2         SetupStatus = "TP2"
	StatusSL          SetupStatus = "SL"
	StatusExpired     SetupStatus = "EXPIRED"
	StatusInvalidated SetupStatus = "INVALIDATED"
)

// Candle is one OHLCV sample. Ts is unix milliseconds, unique and strictly
// increasing within a series.
type Candle struct {
	Ts        int64   `json:"ts"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Confirmed bool    `json:"confirmed"`
}

// FVG is an unfilled three-bar price imbalance (fair value gap).
type FVG struct {
	Low           float64   `json:"low"`
	High          float64   `json:"high"`
	Direction     Direction `json:"direction"`
	CreatedAt     int64     `json:"createdAt"`
	Size          float64   `json:"size"`
	FilledPercent float64   `json:"filledPercent"`
}

// Sweep is a stop-run beyond a recent pivot that closed back inside range.
// Strength is the fractional excursion beyond the pivot.
type Sweep struct {
	Level     float64   `json:"level"`
	Direction Direction `json:"direction"`
	At        int64     `json:"at"`
	Strength  float64   `json:"strength"`
}

// Displacement is a single impulsive bar confirming directional conviction.
type Displacement struct {
	At        int64     `json:"at"`
	Body      float64   `json:"body"`
	AtrRatio  float64   `json:"atrRatio"`
	Direction Direction `json:"direction"`
}

// Setup is an assembled, scored trade candidate. ID is a pure function of
// (symbol, createdAt, fvgLow, fvgHigh), so recomputing from the same inputs
// reproduces the same ID and storage can upsert idempotently. CreatedAt is
// the gap's formation time and never changes; status, score, levels and
// UpdatedAt are refreshed on every recompute.
type Setup struct {
	ID               string                 `json:"id"`
	Symbol           string                 `json:"symbol"`
	Timeframe        string                 `json:"timeframe"`
	Direction        Direction              `json:"direction"`
	Status           SetupStatus            `json:"status"`
	Score            int                    `json:"score"`
	CreatedAt        int64                  `json:"createdAt"`
	UpdatedAt        int64                  `json:"updatedAt"`
	FvgLow           float64                `json:"fvgLow"`
	FvgHigh          float64                `json:"fvgHigh"`
	SweepLevel       *float64               `json:"sweepLevel,omitempty"`
	EntryPrice       float64                `json:"entryPrice"`
	StopLoss         float64                `json:"stopLoss"`
	TP1              float64                `json:"tp1"`
	TP2              *float64               `json:"tp2,omitempty"`
	TP3              *float64               `json:"tp3,omitempty"`
	RRToTP1          float64                `json:"rrToTp1"`
	InvalidationText string                 `json:"invalidationText"`
	Meta             map[string]interface{} `json:"meta,omitempty"`
}

// Pair is a tradeable instrument the screener watches.
type Pair struct {
	Symbol        string `json:"symbol"`
	DisplaySymbol string `json:"displaySymbol"`
	Enabled       bool   `json:"enabled"`
}

// PairSummary is a pair together with its best current setup, for list views.
type PairSummary struct {
	Symbol        string      `json:"symbol"`
	DisplaySymbol string      `json:"displaySymbol"`
	Timeframe     string      `json:"timeframe"`
	Direction     Direction   `json:"direction"`
	Status        SetupStatus `json:"status"`
	Score         int         `json:"score"`
	Entry         *float64    `json:"entry,omitempty"`
	SL            *float64    `json:"sl,omitempty"`
	TP1           *float64    `json:"tp1,omitempty"`
	TP2           *float64    `json:"tp2,omitempty"`
	AgeMinutes    int         `json:"ageMinutes"`
}

// SetupEvent is a snapshot of a status transition, recorded so consumers that
// need history have it even though the pipeline itself is memoryless.
type SetupEvent struct {
	SetupID    string      `json:"setupId"`
	Symbol     string      `json:"symbol"`
	FromStatus SetupStatus `json:"fromStatus"`
	ToStatus   SetupStatus `json:"toStatus"`
	Price      float64     `json:"price"`
	At         int64       `json:"at"`
}
