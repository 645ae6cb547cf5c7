package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ob-engine/internal/config"
	"ob-engine/internal/downstream"
	"ob-engine/internal/downstream/wsserver"
	"ob-engine/internal/metrics"
	"ob-engine/internal/orderbook"
	"ob-engine/internal/processors"
	inqueues "ob-engine/internal/queues/in"
	outqueues "ob-engine/internal/queues/out"
	"ob-engine/internal/subscriptions"
	"ob-engine/internal/upstream"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

type ContextGroup struct {
	g   *errgroup.Group
	ctx context.Context
}

func NewContextGroup(ctx context.Context, g *errgroup.Group) *ContextGroup {
	return &ContextGroup{
		g:   g,
		ctx: ctx,
	}
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load config", "Error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "Error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	cg := NewContextGroup(ctx, g)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	// initialize order book store
	storeHandler := initOrderBookStore()

	// queues between upstream, processors and downstream
	inQ := inqueues.NewQManager(cfg.QueueSize)
	outQ := outqueues.NewQueue(cfg.QueueSize)

	// initialize downstream subscriptions
	subs := subscriptions.NewManager(outQ, m.Subscribers)

	g.Go(func() error {
		return subs.StartPushHandler(cg.ctx)
	})

	// start upstream client and per pair processors
	procs := processors.NewManager(inQ, outQ, storeHandler, m)

	client, err := initUpstreamClient(cfg, procs, inQ, m)
	if err != nil {
		slog.Error("Failed to create upstream client", "Error", err)
		os.Exit(1)
	}

	if err := client.InitClient(cg.ctx, cg.g); err != nil {
		slog.Error("Failed to start upstream client", "Error", err)
		os.Exit(1)
	}

	// start downstream server
	server := startDownstreamServer(cfg, storeHandler, subs, reg)

	g.Go(func() error {
		return server.StartServer()
	})

	g.Go(func() error {
		return gracefulShutdown(cg, cfg.ShutdownTimeout(), client, server)
	})

	slog.Info("OrderBook Engine started", "addr", cfg.Addr, "source", cfg.Source, "pairs", cfg.Pairs)

	if err := g.Wait(); err != nil {
		slog.Error("Error on OrderBook Engine", "Error", err)
	}

	slog.Info("Exiting OrderBook Engine")
}

func initLogger(cfg *config.Config) {
	level, _ := cfg.SlogLevel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// initialize order book store.
func initOrderBookStore() *orderbook.StoreHandler {
	obStore := orderbook.NewStore()

	return orderbook.NewStoreHandler(obStore)
}

// build the upstream client with the configured source.
func initUpstreamClient(cfg *config.Config, procs *processors.Manager, inQ *inqueues.InQManager, m *metrics.Metrics) (*upstream.Client, error) {
	client := upstream.NewClient(procs, inQ)
	client.SetCurrencyPairs(cfg.Pairs)

	switch cfg.Source {
	case config.SourceReplay:
		f, err := os.Open(cfg.ReplayFile)
		if err != nil {
			return nil, fmt.Errorf("open replay file: %w", err)
		}

		client.SetSource(upstream.NewReplaySource(f, client, m))
	default:
		src, err := upstream.NewRedisSource(upstream.RedisConfig{
			URL:           cfg.RedisURL,
			Password:      cfg.RedisPassword,
			StreamKey:     cfg.StreamKey,
			ConsumerGroup: cfg.ConsumerGroup,
			ConsumerName:  cfg.ConsumerName,
		}, client, m)
		if err != nil {
			return nil, err
		}

		client.SetSource(src)
	}

	return client, nil
}

// start websocket server with error group.
func startDownstreamServer(cfg *config.Config, ob *orderbook.StoreHandler, subs *subscriptions.Manager, gatherer prometheus.Gatherer) *downstream.Handler {
	processor := wsserver.NewProcessor(ob, subs)
	server := wsserver.NewWSServer(cfg.Addr, processor, gatherer)

	return downstream.NewHandler(server)
}

// handle graceful shutdown.
func gracefulShutdown(cg *ContextGroup, timeout time.Duration, client *upstream.Client, dsHandler *downstream.Handler) error {
	slog.Info("Graceful Shutdown is monitoring")

	<-cg.ctx.Done()

	slog.Info("Shutdown Signal Received")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.CloseClient(); err != nil {
		slog.Error("Error on closing upstream source", "Error", err)
	}

	slog.Info("Upstream Source Closed")

	if err := dsHandler.ShutDown(ctx); err != nil {
		slog.Error("Forced Shutdown: ", "Error", err)

		return err
	}

	slog.Info("Websocket Server Closed")

	slog.Info("Server Exited Gracefully")

	return nil
}
