package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optionflow/config"
	"optionflow/internal/collector"
	"optionflow/internal/dashboard"
	"optionflow/internal/memorystore"
	"optionflow/internal/metrics"
	"optionflow/logger"
	"optionflow/pkg/quotes"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// viper config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("optionflow failed", zap.Error(err))
	}
	log.Info("optionflow stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	metrics.Init()

	baseURL := cfg.Feed.ResolveBaseURL(cfg.Log.Environment)
	restClient := quotes.NewRESTClient(baseURL, cfg.Feed.Timeout)
	log.Info("feed configured",
		zap.String("base_url", restClient.BaseURL()),
		zap.String("symbol", cfg.Feed.Symbol))

	history := memorystore.NewHistory(cfg.History.MaxAge)
	poller := collector.NewPoller(cfg.Poller, cfg.Feed.Symbol, restClient, history, log)
	service := collector.NewService(history, poller, cfg.Feed.Symbol, cfg.View)
	server := dashboard.NewServer(cfg.Dashboard.Address, service, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(ctx) })
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error {
		reportHistory(ctx, history, log)
		return nil
	})

	return g.Wait()
}

// reportHistory logs retained history periodically and keeps pruning it while
// the poller is paused.
func reportHistory(ctx context.Context, history *memorystore.History, log *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			history.Prune(now)
			log.Info("history retained",
				zap.Int("batches", history.Len()),
				zap.Int("trades", history.CountTrades()))
		}
	}
}
