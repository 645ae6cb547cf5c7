// Command replay rebuilds order books offline from a file of book events,
// one JSON event per line, and prints a summary of every book.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ob-engine/internal/config"
	"ob-engine/internal/dtos"
	"ob-engine/internal/metrics"
	"ob-engine/internal/orderbook"
	"ob-engine/internal/processors"
	"ob-engine/internal/upstream"

	"github.com/prometheus/client_golang/prometheus"
)

// discard stands in for the downstream queue.
type discard struct{}

func (discard) AddToOutQ(context.Context, *dtos.BookEvent) error { return nil }

// replayer applies events synchronously, in file order.
type replayer struct {
	store   *orderbook.OBStore
	metrics *metrics.Metrics
	procs   map[string]*processors.Processor
}

func (r *replayer) AddToQueue(ctx context.Context, event *dtos.BookEvent) error {
	proc, ok := r.procs[event.Symbol]
	if !ok {
		r.store.InitOrderBook(event.Symbol)
		proc = processors.NewProcessor(event.Symbol, r.store, discard{}, nil, r.metrics)
		r.procs[event.Symbol] = proc
	}

	return proc.Process(ctx, event)
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load config", "Error", err)
		os.Exit(1)
	}

	path := cfg.ReplayFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: replay <events.jsonl> (or set OB_REPLAY_FILE)")
		os.Exit(2)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	f, err := os.Open(path)
	if err != nil {
		slog.Error("Failed to open replay file", "path", path, "Error", err)
		os.Exit(1)
	}

	r := &replayer{
		store:   orderbook.NewStore(),
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
		procs:   make(map[string]*processors.Processor),
	}

	src := upstream.NewReplaySource(f, r, r.metrics)
	defer src.Close()

	if err := src.Run(context.Background()); err != nil {
		slog.Error("Replay failed", "Error", err)
		os.Exit(1)
	}

	for _, pair := range r.store.Pairs() {
		summary, err := r.store.Summary(pair)
		if err != nil {
			slog.Error("Error on book summary", "pair", pair, "Error", err)

			continue
		}

		fmt.Print(summary)
	}
}
