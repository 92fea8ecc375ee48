package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TosdrCollector/internal/ports"
)

const defaultProgressEvery = 5

// CollectorDeps wires the driven adapters into the collection run.
type CollectorDeps struct {
	State     *RunState
	Lister    ports.ServiceLister
	Processor *Processor
	Resolver  *Resolver
	Pacer     ports.Pacer
	// Output receives the table once; its failure fails the run.
	Output ports.TableWriter
	// Exports are best-effort sinks invoked after Output.
	Exports []ports.TableWriter

	HasAPIKey       bool
	MissingKeyDelay time.Duration
	ProgressEvery   int
	Logger          *slog.Logger
}

// Summary describes a finished run.
type Summary struct {
	Services    int
	Mapped      int
	Skipped     int
	Dropped     int
	Entries     int
	CaseFetches int
	CacheHits   int
	Duration    time.Duration
}

// Collector drains the provider's service list into the output table.
type Collector struct {
	state           *RunState
	lister          ports.ServiceLister
	processor       *Processor
	resolver        *Resolver
	pacer           ports.Pacer
	output          ports.TableWriter
	exports         []ports.TableWriter
	hasAPIKey       bool
	missingKeyDelay time.Duration
	progressEvery   int
	logger          *slog.Logger
}

// NewCollector constructs the collection driver.
func NewCollector(deps CollectorDeps) *Collector {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	progressEvery := deps.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = defaultProgressEvery
	}
	return &Collector{
		state:           deps.State,
		lister:          deps.Lister,
		processor:       deps.Processor,
		resolver:        deps.Resolver,
		pacer:           deps.Pacer,
		output:          deps.Output,
		exports:         deps.Exports,
		hasAPIKey:       deps.HasAPIKey,
		missingKeyDelay: deps.MissingKeyDelay,
		progressEvery:   progressEvery,
		logger:          logger,
	}
}

// Run fetches the master list, processes every service in list order and
// writes the table once. On any returned error nothing has been written.
func (c *Collector) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	var summary Summary

	if !c.hasAPIKey {
		c.logger.Warn("api key is not set, rate limits may occur", "delay", c.missingKeyDelay)
		if err := c.pacer.Pause(ctx, c.missingKeyDelay); err != nil {
			return summary, err
		}
	}

	refs, err := c.lister.Services(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch service list: %w", err)
	}
	summary.Services = len(refs)
	c.logger.Info("service list fetched", "services", len(refs))

	queue := newServiceQueue(refs)
	processed := 0
	for queue.Len() > 0 {
		ref := queue.PopFront()

		outcome, err := c.processor.Process(ctx, ref, c.state.Table)
		if err != nil {
			return summary, fmt.Errorf("process services: %w", err)
		}
		switch outcome {
		case OutcomeMapped:
			summary.Mapped++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeDropped:
			summary.Dropped++
		}

		processed++
		if processed%c.progressEvery == 0 {
			c.logger.Info("collection progress", "processed", processed, "remaining", queue.Len())
		}
	}

	summary.Entries = len(c.state.Table)
	if c.resolver != nil {
		stats := c.resolver.Stats()
		summary.CaseFetches = stats.Fetches
		summary.CacheHits = stats.CacheHits
	}

	if c.output != nil {
		if err := c.output.Write(ctx, c.state.Table); err != nil {
			return summary, fmt.Errorf("write %s: %w", c.output.Name(), err)
		}
		c.logger.Info("output written", "writer", c.output.Name(), "entries", summary.Entries)
	}

	for _, export := range c.exports {
		if err := export.Write(ctx, c.state.Table); err != nil {
			c.logger.Error("export failed", "writer", export.Name(), "error", err)
			continue
		}
		c.logger.Info("export written", "writer", export.Name(), "entries", summary.Entries)
	}

	summary.Duration = time.Since(started)
	c.logger.Info("collection finished",
		"services", summary.Services,
		"mapped", summary.Mapped,
		"skipped", summary.Skipped,
		"dropped", summary.Dropped,
		"entries", summary.Entries,
		"case_fetches", summary.CaseFetches,
		"cache_hits", summary.CacheHits,
		"took", summary.Duration,
	)
	return summary, nil
}
