package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/bybit"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/fcm"
	"github.com/coronasco/cryptoscalpingfvg/internal/repository"
)

const (
	workingLimit = 200
	biasLimit    = 200
	triggerLimit = 500

	klineCacheTTL = 20 * time.Second
)

// KlineFetcher is what the screener needs from the exchange client.
type KlineFetcher interface {
	GetKlines(symbol, interval string, limit int) ([]domain.Candle, error)
}

type ScreenerUsecase struct {
	setupRepo domain.SetupRepository
	eventRepo domain.EventRepository
	pairRepo  domain.PairRepository
	cache     domain.CacheStore
	fetcher   KlineFetcher
	fcmClient *fcm.Client
	tokenRepo *repository.TokenRepository

	scanInterval  time.Duration
	alertMinScore int

	mu            sync.RWMutex
	lastStatus    map[string]statusRecord // setup ID -> snapshot from the previous cycle
	notifiedCoins map[string]time.Time
}

type statusRecord struct {
	Symbol string
	Status domain.SetupStatus
}

func NewScreenerUsecase(
	setupRepo domain.SetupRepository,
	eventRepo domain.EventRepository,
	pairRepo domain.PairRepository,
	cache domain.CacheStore,
	fetcher KlineFetcher,
	tokenRepo *repository.TokenRepository,
	fcmClient *fcm.Client,
	scanInterval time.Duration,
	alertMinScore int,
) *ScreenerUsecase {
	if scanInterval <= 0 {
		scanInterval = time.Minute
	}
	return &ScreenerUsecase{
		setupRepo:     setupRepo,
		eventRepo:     eventRepo,
		pairRepo:      pairRepo,
		cache:         cache,
		fetcher:       fetcher,
		tokenRepo:     tokenRepo,
		fcmClient:     fcmClient,
		scanInterval:  scanInterval,
		alertMinScore: alertMinScore,
		lastStatus:    make(map[string]statusRecord),
		notifiedCoins: make(map[string]time.Time),
	}
}

// Run starts the screening loop and blocks until ctx is cancelled.
func (uc *ScreenerUsecase) Run(ctx context.Context) {
	ticker := time.NewTicker(uc.scanInterval)
	defer ticker.Stop()

	uc.process(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.process(ctx)
		}
	}
}

func (uc *ScreenerUsecase) process(ctx context.Context) {
	start := time.Now()

	pairs, err := uc.pairRepo.GetEnabledPairs(ctx)
	if err != nil {
		log.Printf("Error loading pairs: %v", err)
		return
	}
	if len(pairs) == 0 {
		log.Println("No enabled pairs, skipping cycle")
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, 8)

	var allSetups []domain.Setup
	lastPrices := make(map[string]float64)

	for _, pair := range pairs {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			setups, lastPrice, err := uc.screenSymbol(ctx, symbol, start)
			if err != nil {
				log.Printf("Error screening %s: %v", symbol, err)
				return
			}

			mu.Lock()
			allSetups = append(allSetups, setups...)
			lastPrices[symbol] = lastPrice
			mu.Unlock()
		}(pair.Symbol)
	}

	wg.Wait()

	events := uc.collectTransitions(allSetups, lastPrices, start)

	if err := uc.setupRepo.UpsertSetups(ctx, allSetups); err != nil {
		log.Printf("Error saving setups: %v", err)
	}
	if len(events) > 0 {
		if err := uc.eventRepo.RecordEvents(ctx, events); err != nil {
			log.Printf("Error recording events: %v", err)
		}
	}

	uc.sendAlerts(ctx, allSetups, events)

	log.Printf("Cycle completed in %v. %d pairs, %d setups, %d transitions.",
		time.Since(start), len(pairs), len(allSetups), len(events))
}

// screenSymbol fetches the three series for one symbol and assembles setups.
// The three REST calls run in parallel since they are independent.
func (uc *ScreenerUsecase) screenSymbol(ctx context.Context, symbol string, now time.Time) ([]domain.Setup, float64, error) {
	type fetchResult struct {
		candles []domain.Candle
		err     error
	}

	requests := []struct {
		interval string
		limit    int
	}{
		{bybit.Interval15m, workingLimit},
		{bybit.Interval1h, biasLimit},
		{bybit.Interval1m, triggerLimit},
	}

	results := make([]fetchResult, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, interval string, limit int) {
			defer wg.Done()
			candles, err := uc.fetchKlines(ctx, symbol, interval, limit)
			results[i] = fetchResult{candles: candles, err: err}
		}(i, req.interval, req.limit)
	}
	wg.Wait()

	for i, res := range results {
		if res.err != nil {
			return nil, 0, fmt.Errorf("klines %s/%s: %w", symbol, requests[i].interval, res.err)
		}
	}

	working, bias, trigger := results[0].candles, results[1].candles, results[2].candles

	setups := BuildSetups(BuildParams{
		Symbol:    symbol,
		Timeframe: "15m",
		Working:   working,
		Bias:      bias,
		Trigger:   trigger,
		Now:       now,
	})

	lastPrice := 0.0
	if len(trigger) > 0 {
		lastPrice = trigger[len(trigger)-1].Close
	} else if len(working) > 0 {
		lastPrice = working[len(working)-1].Close
	}

	return setups, lastPrice, nil
}

// fetchKlines serves klines from the cache when a concurrent or very recent
// cycle already pulled the same series, otherwise hits the REST API.
func (uc *ScreenerUsecase) fetchKlines(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	key := fmt.Sprintf("klines:%s:%s:%d", symbol, interval, limit)

	if uc.cache != nil {
		var cached []domain.Candle
		if ok, err := uc.cache.Get(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	candles, err := uc.fetcher.GetKlines(symbol, interval, limit)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, candles, klineCacheTTL); err != nil {
			log.Printf("Error caching klines for %s: %v", key, err)
		}
	}
	return candles, nil
}

// ConsumeStream invalidates cached kline series as live candles close, so the
// cycle following a confirmed bar refetches instead of serving stale data.
func (uc *ScreenerUsecase) ConsumeStream(ctx context.Context, events <-chan bybit.KlineEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Candle.Confirmed || uc.cache == nil {
				continue
			}
			key := fmt.Sprintf("klines:%s:%s:%d", ev.Symbol, ev.Interval, limitForInterval(ev.Interval))
			if err := uc.cache.Delete(ctx, key); err != nil {
				log.Printf("Error invalidating %s: %v", key, err)
			}
		}
	}
}

func limitForInterval(interval string) int {
	switch interval {
	case bybit.Interval15m:
		return workingLimit
	case bybit.Interval1h:
		return biasLimit
	default:
		return triggerLimit
	}
}

// collectTransitions diffs this cycle's statuses against the previous one and
// refreshes the in-memory snapshot. A setup seen for the first time produces
// an event only if it is already past WAITING.
func (uc *ScreenerUsecase) collectTransitions(setups []domain.Setup, lastPrices map[string]float64, now time.Time) []domain.SetupEvent {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var events []domain.SetupEvent
	seen := make(map[string]struct{}, len(setups))

	for _, s := range setups {
		seen[s.ID] = struct{}{}
		prev := domain.StatusWaiting
		if rec, ok := uc.lastStatus[s.ID]; ok {
			prev = rec.Status
		}
		if s.Status != prev {
			events = append(events, domain.SetupEvent{
				SetupID:    s.ID,
				Symbol:     s.Symbol,
				FromStatus: prev,
				ToStatus:   s.Status,
				Price:      lastPrices[s.Symbol],
				At:         now.UnixMilli(),
			})
		}
		uc.lastStatus[s.ID] = statusRecord{Symbol: s.Symbol, Status: s.Status}
	}

	// Drop state only for setups whose symbol actually produced results this
	// cycle. A symbol whose fetch failed keeps its snapshot, so the next
	// successful cycle diffs against it instead of replaying every
	// transition as first-seen.
	for id, rec := range uc.lastStatus {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := lastPrices[rec.Symbol]; ok {
			delete(uc.lastStatus, id)
		}
	}

	return events
}
