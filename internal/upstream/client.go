package upstream

import (
	"context"
	"errors"

	"ob-engine/internal/dtos"

	"golang.org/x/sync/errgroup"
)

type ProcessorStarter interface {
	StartProcessor(ctx context.Context, g *errgroup.Group, currency string)
}

// Client wires a Source to the per-pair processors. Processors for the
// configured pairs start with the client; any other pair gets one when its
// first event arrives.
type Client struct {
	source Source
	procs  ProcessorStarter
	queue  QueueAdder
	pairs  []string

	ctx context.Context
	g   *errgroup.Group
}

func NewClient(procs ProcessorStarter, queue QueueAdder) *Client {
	return &Client{
		procs: procs,
		queue: queue,
	}
}

func (c *Client) SetSource(src Source) {
	c.source = src
}

func (c *Client) SetCurrencyPairs(pairs []string) {
	c.pairs = pairs
}

// InitClient starts the processors and the source on g.
func (c *Client) InitClient(ctx context.Context, g *errgroup.Group) error {
	if c.source == nil {
		return errors.New("upstream client without source")
	}

	c.ctx = ctx
	c.g = g

	for _, pair := range c.pairs {
		c.procs.StartProcessor(ctx, g, pair)
	}

	g.Go(func() error {
		return c.source.Run(ctx)
	})

	return nil
}

// AddToQueue is handed to the source as its QueueAdder.
func (c *Client) AddToQueue(ctx context.Context, event *dtos.BookEvent) error {
	c.procs.StartProcessor(c.ctx, c.g, event.Symbol)

	return c.queue.AddToQueue(ctx, event)
}

func (c *Client) CloseClient() error {
	if c.source == nil {
		return nil
	}

	return c.source.Close()
}
