package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coinclass/internal/config"
	"coinclass/internal/db"
	"coinclass/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := game.NewService(pool, logger)
	if cfg.StartupSeed {
		if err := svc.SeedDefaults(ctx); err != nil {
			logger.Error("seed defaults failed", "err", err)
			os.Exit(1)
		}
		if err := svc.SeedLessons(ctx); err != nil {
			logger.Error("seed lessons failed", "err", err)
			os.Exit(1)
		}
	}

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("COINCLASS_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := svc.RunMarketRefresh(ctx, cfg.MarketBatchSize, cfg.MarketVolatility); err != nil {
			logger.Error("market refresh failed", "err", err)
			os.Exit(1)
		}
		settled, err := svc.AccrueAll(ctx)
		if err != nil {
			logger.Error("accrual sweep failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed", "accounts_accrued", settled)
		return
	}

	marketTicker := time.NewTicker(cfg.MarketTickEvery)
	defer marketTicker.Stop()
	accrueTicker := time.NewTicker(cfg.AccrueEvery)
	defer accrueTicker.Stop()

	logger.Info("worker started",
		"market_every", cfg.MarketTickEvery.String(),
		"accrue_every", cfg.AccrueEvery.String(),
		"volatility", cfg.MarketVolatility)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-marketTicker.C:
			if err := svc.RunMarketRefresh(ctx, cfg.MarketBatchSize, cfg.MarketVolatility); err != nil {
				logger.Error("market refresh failed", "err", err)
				continue
			}
			logger.Info("market refresh complete", "batch_size", cfg.MarketBatchSize)
		case <-accrueTicker.C:
			settled, err := svc.AccrueAll(ctx)
			if err != nil {
				logger.Error("accrual sweep failed", "err", err)
				continue
			}
			if settled > 0 {
				logger.Info("accrual sweep complete", "accounts", settled)
			}
		}
	}
}
