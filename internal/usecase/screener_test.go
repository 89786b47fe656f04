package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/bybit"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/cache"
	"github.com/coronasco/cryptoscalpingfvg/internal/repository"
)

type stubFetcher struct {
	mu     sync.Mutex
	series map[string][]domain.Candle // keyed by interval
	errs   map[string]error           // keyed by symbol
	calls  int
}

func (f *stubFetcher) GetKlines(symbol, interval string, limit int) ([]domain.Candle, error) {
	f.mu.Lock()
	f.calls++
	err := f.errs[symbol]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.series[interval], nil
}

func (f *stubFetcher) setErr(symbol string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	if err == nil {
		delete(f.errs, symbol)
	} else {
		f.errs[symbol] = err
	}
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestScreener(fetcher KlineFetcher, pairs ...string) (*ScreenerUsecase, *repository.InMemorySetupRepository, *repository.InMemoryEventRepository) {
	setupRepo := repository.NewInMemorySetupRepository()
	eventRepo := repository.NewInMemoryEventRepository()
	pairRepo := repository.NewInMemoryPairRepository()

	seed := make([]domain.Pair, len(pairs))
	for i, sym := range pairs {
		seed[i] = domain.Pair{Symbol: sym, DisplaySymbol: repository.DisplaySymbol(sym), Enabled: true}
	}
	_ = pairRepo.SeedPairs(context.Background(), seed)

	uc := NewScreenerUsecase(setupRepo, eventRepo, pairRepo, cache.NewMemoryStore(),
		fetcher, repository.NewTokenRepository(nil), nil, time.Minute, 70)
	return uc, setupRepo, eventRepo
}

func TestScreenerProcessPersistsSetups(t *testing.T) {
	fetcher := &stubFetcher{series: map[string][]domain.Candle{
		bybit.Interval15m: workingWithBullishGap(),
		bybit.Interval1h:  risingMacro(80),
		bybit.Interval1m:  flatTestBars(20, 103),
	}}
	uc, setupRepo, _ := newTestScreener(fetcher, "BTCUSDT")

	uc.process(context.Background())

	stored, err := setupRepo.GetSetups(context.Background(), "BTCUSDT", 10)
	if err != nil {
		t.Fatalf("GetSetups: %v", err)
	}
	if len(stored) == 0 {
		t.Fatal("expected setups persisted after a cycle")
	}
	if stored[0].Symbol != "BTCUSDT" {
		t.Errorf("expected symbol BTCUSDT, got %s", stored[0].Symbol)
	}
}

func TestScreenerRecordsTransitionOnFirstNonWaitingStatus(t *testing.T) {
	fetcher := &stubFetcher{series: map[string][]domain.Candle{
		bybit.Interval15m: workingWithBullishGap(),
		bybit.Interval1h:  risingMacro(80),
		bybit.Interval1m:  flatTestBars(20, 103),
	}}
	uc, setupRepo, eventRepo := newTestScreener(fetcher, "BTCUSDT")

	uc.process(context.Background())

	stored, _ := setupRepo.GetSetups(context.Background(), "BTCUSDT", 10)
	if len(stored) == 0 {
		t.Fatal("expected setups persisted")
	}
	if stored[0].Status == domain.StatusWaiting {
		t.Skip("fixture did not advance past WAITING")
	}

	events := eventRepo.Events()
	if len(events) == 0 {
		t.Fatal("expected a transition event for a setup past WAITING")
	}
	if events[0].FromStatus != domain.StatusWaiting {
		t.Errorf("first observation should transition from WAITING, got %s", events[0].FromStatus)
	}

	// A second identical cycle must not repeat the event.
	before := len(eventRepo.Events())
	uc.process(context.Background())
	if got := len(eventRepo.Events()); got != before {
		t.Errorf("unchanged status re-emitted events: %d -> %d", before, got)
	}
}

func TestScreenerSymbolFailureIsIsolated(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string][]domain.Candle{
			bybit.Interval15m: workingWithBullishGap(),
			bybit.Interval1h:  risingMacro(80),
			bybit.Interval1m:  flatTestBars(20, 103),
		},
		errs: map[string]error{"ETHUSDT": errors.New("rate limited")},
	}
	uc, setupRepo, _ := newTestScreener(fetcher, "BTCUSDT", "ETHUSDT")

	uc.process(context.Background())

	stored, _ := setupRepo.GetSetups(context.Background(), "BTCUSDT", 10)
	if len(stored) == 0 {
		t.Fatal("healthy symbol should still produce setups when another fails")
	}
	ethStored, _ := setupRepo.GetSetups(context.Background(), "ETHUSDT", 10)
	if len(ethStored) != 0 {
		t.Errorf("failed symbol should produce nothing, got %d", len(ethStored))
	}
}

func TestScreenerFetchFailureDoesNotReplayTransitions(t *testing.T) {
	fetcher := &stubFetcher{series: map[string][]domain.Candle{
		bybit.Interval15m: workingWithBullishGap(),
		bybit.Interval1h:  risingMacro(80),
		bybit.Interval1m:  flatTestBars(20, 103),
	}}
	// No cache here: a cached series would mask the fetch failure.
	setupRepo := repository.NewInMemorySetupRepository()
	eventRepo := repository.NewInMemoryEventRepository()
	pairRepo := repository.NewInMemoryPairRepository()
	_ = pairRepo.SeedPairs(context.Background(), []domain.Pair{
		{Symbol: "BTCUSDT", DisplaySymbol: "BTC", Enabled: true},
		{Symbol: "ETHUSDT", DisplaySymbol: "ETH", Enabled: true},
	})
	uc := NewScreenerUsecase(setupRepo, eventRepo, pairRepo, nil,
		fetcher, repository.NewTokenRepository(nil), nil, time.Minute, 70)
	ctx := context.Background()

	uc.process(ctx)
	baseline := len(eventRepo.Events())
	if baseline == 0 {
		t.Fatal("expected transition events on the first cycle")
	}

	// One symbol fails transiently, then recovers with identical data. The
	// recovered cycle must diff against the pre-failure snapshot, not treat
	// the symbol's setups as first-seen.
	fetcher.setErr("ETHUSDT", errors.New("rate limited"))
	uc.process(ctx)
	if got := len(eventRepo.Events()); got != baseline {
		t.Fatalf("failing cycle emitted events: %d -> %d", baseline, got)
	}

	fetcher.setErr("ETHUSDT", nil)
	uc.process(ctx)
	if got := len(eventRepo.Events()); got != baseline {
		t.Errorf("recovered symbol replayed transitions: %d -> %d", baseline, got)
	}
}

func TestScreenerKlineCacheShortCircuitsFetch(t *testing.T) {
	fetcher := &stubFetcher{series: map[string][]domain.Candle{
		bybit.Interval15m: workingWithBullishGap(),
		bybit.Interval1h:  risingMacro(80),
		bybit.Interval1m:  flatTestBars(20, 103),
	}}
	uc, _, _ := newTestScreener(fetcher, "BTCUSDT")

	ctx := context.Background()
	if _, err := uc.fetchKlines(ctx, "BTCUSDT", bybit.Interval15m, workingLimit); err != nil {
		t.Fatalf("fetchKlines: %v", err)
	}
	calls := fetcher.callCount()
	if _, err := uc.fetchKlines(ctx, "BTCUSDT", bybit.Interval15m, workingLimit); err != nil {
		t.Fatalf("fetchKlines (cached): %v", err)
	}
	if got := fetcher.callCount(); got != calls {
		t.Errorf("second fetch should come from cache, calls went %d -> %d", calls, got)
	}
}
