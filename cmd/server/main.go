package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coronasco/cryptoscalpingfvg/internal/config"
	httpdelivery "github.com/coronasco/cryptoscalpingfvg/internal/delivery/http"
	"github.com/coronasco/cryptoscalpingfvg/internal/delivery/websocket"
	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/bybit"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/cache"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/db"
	"github.com/coronasco/cryptoscalpingfvg/internal/infrastructure/fcm"
	"github.com/coronasco/cryptoscalpingfvg/internal/repository"
	"github.com/coronasco/cryptoscalpingfvg/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		setupRepo domain.SetupRepository
		eventRepo domain.EventRepository
		pairRepo  domain.PairRepository
		pool      *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		p, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfigFromEnv())
		if err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		if err := db.Migrate(ctx, p); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		pool = p
		defer pool.Close()
		setupRepo = repository.NewPostgresSetupRepository(pool)
		eventRepo = repository.NewPostgresEventRepository(pool)
		pairRepo = repository.NewPostgresPairRepository(pool)
		log.Println("Using Postgres storage")
	} else {
		setupRepo = repository.NewInMemorySetupRepository()
		eventRepo = repository.NewInMemoryEventRepository()
		pairRepo = repository.NewInMemoryPairRepository()
		log.Println("DATABASE_URL not set, using in-memory storage")
	}

	// Seed the watchlist from config.
	pairs := make([]domain.Pair, len(cfg.Symbols))
	for i, sym := range cfg.Symbols {
		pairs[i] = domain.Pair{
			Symbol:        sym,
			DisplaySymbol: repository.DisplaySymbol(sym),
			Enabled:       true,
		}
	}
	if err := pairRepo.SeedPairs(ctx, pairs); err != nil {
		log.Fatalf("Seeding pairs failed: %v", err)
	}

	// Cache: Redis when configured and reachable, in-memory otherwise.
	var cacheStore domain.CacheStore
	if cfg.RedisAddr != "" {
		rs := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			log.Printf("Redis unreachable (%v), using in-memory cache", err)
			cacheStore = cache.NewMemoryStore()
		} else {
			cacheStore = rs
			log.Println("Using Redis cache")
		}
	} else {
		cacheStore = cache.NewMemoryStore()
	}

	fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("FCM init failed, push alerts disabled: %v", err)
		fcmClient = nil
	}

	tokenRepo := repository.NewTokenRepository(pool)
	client := bybit.NewClient(cfg.BybitBaseURL)

	uc := usecase.NewScreenerUsecase(setupRepo, eventRepo, pairRepo, cacheStore,
		client, tokenRepo, fcmClient, cfg.ScanInterval, cfg.AlertMinScore)
	go uc.Run(ctx)

	if cfg.StreamEnabled {
		stream := bybit.NewStream(cfg.BybitWSURL)
		for _, sym := range cfg.Symbols {
			stream.Subscribe(sym, bybit.Interval1m)
			stream.Subscribe(sym, bybit.Interval15m)
		}
		go stream.Run(ctx)
		go uc.ConsumeStream(ctx, stream.Events())
	}

	wsHandler := websocket.NewHandler(setupRepo)
	setupHandler := httpdelivery.NewSetupHandler(setupRepo)
	pairHandler := httpdelivery.NewPairHandler(pairRepo, setupRepo)
	tokenHandler := httpdelivery.NewTokenHandler(tokenRepo)
	healthHandler := httpdelivery.NewHealthHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.Handle)
	mux.HandleFunc("/api/setups", setupHandler.HandleGetSetups)
	mux.HandleFunc("/api/pairs", pairHandler.HandleGetPairs)
	mux.HandleFunc("/api/tokens/register", tokenHandler.HandleRegisterToken)
	mux.HandleFunc("/api/tokens/unregister", tokenHandler.HandleUnregisterToken)
	mux.HandleFunc("/api/tokens/count", tokenHandler.HandleGetTokenCount)
	mux.HandleFunc("/health", healthHandler.HandleHealth)

	server := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server listening on :%s", cfg.HTTPPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
