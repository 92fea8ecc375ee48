package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
)

// Outcome tells the collector what processing a service produced.
type Outcome int

const (
	// OutcomeMapped means the service added at least one table entry.
	OutcomeMapped Outcome = iota
	// OutcomeSkipped means the detail fetch failed recoverably.
	OutcomeSkipped
	// OutcomeDropped means no domain could be derived for the service.
	OutcomeDropped
)

// Processor turns one service reference into output table entries.
type Processor struct {
	services   ports.ServiceFetcher
	aggregator *Aggregator
	pacer      ports.Pacer
	delay      time.Duration
	logger     *slog.Logger
}

// NewProcessor wires the detail fetcher and the aggregator. delay follows
// every processed service.
func NewProcessor(services ports.ServiceFetcher, aggregator *Aggregator, pacer ports.Pacer, delay time.Duration, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		services:   services,
		aggregator: aggregator,
		pacer:      pacer,
		delay:      delay,
		logger:     logger,
	}
}

// Process fetches, aggregates and maps one service into table. A rate-limit
// response is returned as a fatal error; other fetch failures skip the
// service.
func (p *Processor) Process(ctx context.Context, ref domain.ServiceRef, table domain.OutputTable) (Outcome, error) {
	outcome, err := p.process(ctx, ref, table)
	if err != nil {
		return outcome, err
	}
	if err := p.pacer.Pause(ctx, p.delay); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (p *Processor) process(ctx context.Context, ref domain.ServiceRef, table domain.OutputTable) (Outcome, error) {
	p.logger.Debug("requesting service details", "service_id", ref.ID)

	service, err := p.services.Service(ctx, ref.ID)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrRateLimited):
			return OutcomeSkipped, fmt.Errorf("service %s: %w", ref.ID, err)
		case ctx.Err() != nil:
			return OutcomeSkipped, ctx.Err()
		}
		p.logger.Warn("skip service", "service_id", ref.ID, "error", err)
		return OutcomeSkipped, nil
	}

	p.logger.Debug("iterating points", "service_id", ref.ID, "points", len(service.Points))
	agg, err := p.aggregator.Aggregate(ctx, ref.ID, service.Points)
	if err != nil {
		return OutcomeSkipped, err
	}
	agg.Class = service.Rating
	agg.ApplyFallback()

	canonical, related := canonicalURL(service)
	if canonical == "" {
		p.logger.Debug("service has no url", "service_id", ref.ID)
		return OutcomeDropped, nil
	}

	host, err := domain.RegistrableDomain(canonical)
	if err != nil {
		p.logger.Debug("service has no registrable domain", "service_id", ref.ID, "url", canonical, "error", err)
		return OutcomeDropped, nil
	}

	table.Put(host, agg)
	for _, u := range related {
		table.Put(u, agg)
	}
	return OutcomeMapped, nil
}

// canonicalURL picks the service URL, falling back to the first related URL
// which is then removed from the related list.
func canonicalURL(service domain.Service) (string, []string) {
	related := service.RelatedURLs
	if service.URL != "" {
		return service.URL, related
	}
	if len(related) == 0 {
		return "", nil
	}
	return related[0], related[1:]
}
