package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vperp/vperp/params"
	"github.com/vperp/vperp/pkg/api"
	"github.com/vperp/vperp/pkg/keeper"
	"github.com/vperp/vperp/pkg/oracle"
	"github.com/vperp/vperp/pkg/storage"
	"github.com/vperp/vperp/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	// Setup logging (write to both console and file)
	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	// ---- Snapshot store ----
	store, err := storage.NewSnapshotStore(cfg.DataDir)
	if err != nil {
		sugar.Fatalw("store_init_failed", "data_dir", cfg.DataDir, "err", err)
	}
	defer store.Close()

	// ---- Market registry ----
	markets, err := params.LoadMarkets(cfg.MarketsFile)
	if err != nil {
		sugar.Fatalw("markets_load_failed", "file", cfg.MarketsFile, "err", err)
	}
	for _, m := range markets {
		// Only seed markets the store hasn't seen; restarts keep curve state.
		if _, ok, err := store.GetMarket(m.MarketIndex); err != nil {
			sugar.Fatalw("market_read_failed", "market", m.Symbol, "err", err)
		} else if ok {
			continue
		}
		if err := store.PutMarket(m); err != nil {
			sugar.Fatalw("market_seed_failed", "market", m.Symbol, "err", err)
		}
		sugar.Infow("market_seeded", "market", m.Symbol, "index", m.MarketIndex)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Oracle feed ----
	cache := oracle.NewCache()
	feed := oracle.NewFeed(cfg.Oracle.URL, cache, store, sugar)
	feed.ReconnectDelay = cfg.Oracle.ReconnectDelay
	go feed.Run(ctx)

	// ---- API server ----
	clock := util.RealClock{}
	apiServer := api.NewServer(store, cache, clock, sugar)
	go func() {
		if err := apiServer.Start(cfg.HTTP.Addr); err != nil && ctx.Err() == nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	// ---- Keeper scan loop ----
	k := keeper.New(store, cache, clock, sugar)

	sugar.Infow("keeper_starting",
		"markets", len(markets),
		"oracle_url", cfg.Oracle.URL,
		"scan_interval_ms", cfg.Keeper.ScanInterval.Milliseconds(),
		"http_addr", cfg.HTTP.Addr)

	k.Run(ctx, cfg.Keeper.ScanInterval, func(candidates []keeper.FillCandidate) {
		apiServer.BroadcastFillCandidates(candidates, cache.Slot())
	})
}
