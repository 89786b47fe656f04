package bybit

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

const DefaultBaseURL = "https://api.bybit.com"

// Interval values accepted by the kline endpoints (minutes).
const (
	Interval1m  = "1"
	Interval15m = "15"
	Interval1h  = "60"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List [][]string `json:"list"`
	} `json:"result"`
}

// GetKlines fetches candles for a linear perpetual symbol. Bybit returns
// rows newest-first and includes the current, still-forming bar; a candle is
// marked confirmed only once its interval has fully elapsed. The result is
// sanitized to the series contract the pipeline assumes: ascending unique
// timestamps, finite values only.
func (c *Client) GetKlines(symbol, interval string, limit int) ([]domain.Candle, error) {
	url := fmt.Sprintf("%s/v5/market/kline?category=linear&symbol=%s&interval=%s&limit=%d",
		c.baseURL, symbol, interval, limit)

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bybit API error: %d", resp.StatusCode)
	}

	var parsed klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.RetCode != 0 {
		return nil, fmt.Errorf("bybit API error %d: %s", parsed.RetCode, parsed.RetMsg)
	}

	nowMs := time.Now().UnixMilli()
	step := intervalMillis(interval)

	candles := make([]domain.Candle, 0, len(parsed.Result.List))
	for _, row := range parsed.Result.List {
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(row[1], 64)
		high, err2 := strconv.ParseFloat(row[2], 64)
		low, err3 := strconv.ParseFloat(row[3], 64)
		close, err4 := strconv.ParseFloat(row[4], 64)
		volume, err5 := strconv.ParseFloat(row[5], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		candles = append(candles, domain.Candle{
			Ts: ts, Open: open, High: high, Low: low, Close: close,
			Volume: volume, Confirmed: step == 0 || ts+step <= nowMs,
		})
	}

	return SanitizeCandles(candles), nil
}

// intervalMillis converts a minute-denominated interval code to milliseconds.
// Unknown codes yield 0, which marks every row confirmed.
func intervalMillis(interval string) int64 {
	minutes, err := strconv.ParseInt(interval, 10, 64)
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes * 60_000
}

// SanitizeCandles enforces the series contract at the boundary: candles
// sorted by ascending timestamp, duplicate timestamps dropped (first wins),
// non-finite values rejected. The pipeline itself never re-validates.
func SanitizeCandles(candles []domain.Candle) []domain.Candle {
	clean := make([]domain.Candle, 0, len(candles))
	for _, c := range candles {
		if !finite(c.Open) || !finite(c.High) || !finite(c.Low) || !finite(c.Close) || !finite(c.Volume) {
			continue
		}
		clean = append(clean, c)
	}

	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Ts < clean[j].Ts })

	out := clean[:0]
	var lastTs int64 = -1
	for _, c := range clean {
		if c.Ts == lastTs {
			continue
		}
		out = append(out, c)
		lastTs = c.Ts
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
