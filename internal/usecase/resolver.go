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

// ErrCaseUnavailable means a case could not be fetched or decoded; callers
// skip the point and continue.
var ErrCaseUnavailable = errors.New("case unavailable")

// ResolverStats counts how cases were resolved during a run.
type ResolverStats struct {
	Fetches   int
	CacheHits int
	Failures  int
}

// Resolver returns cases from the run cache, fetching each id at most once
// per successful fetch.
type Resolver struct {
	cases   ports.CaseStore
	fetcher ports.CaseFetcher
	pacer   ports.Pacer
	delay   time.Duration
	logger  *slog.Logger
	stats   ResolverStats
}

// NewResolver wires the cache and the network fetcher. delay is applied
// before every network fetch and never on a cache hit.
func NewResolver(cases ports.CaseStore, fetcher ports.CaseFetcher, pacer ports.Pacer, delay time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		cases:   cases,
		fetcher: fetcher,
		pacer:   pacer,
		delay:   delay,
		logger:  logger,
	}
}

// Resolve returns the case for id. Fetch and decode failures are reported as
// ErrCaseUnavailable; only context cancellation is returned as-is.
func (r *Resolver) Resolve(ctx context.Context, id string) (domain.Case, error) {
	if c, ok := r.cases.Lookup(id); ok {
		r.stats.CacheHits++
		r.logger.Debug("found cached case", "case_id", id)
		return c, nil
	}

	if err := r.pacer.Pause(ctx, r.delay); err != nil {
		return domain.Case{}, err
	}

	r.logger.Debug("requesting case details", "case_id", id)
	r.stats.Fetches++
	c, err := r.fetcher.Case(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Case{}, ctxErr
		}
		r.stats.Failures++
		r.logger.Warn("case unavailable", "case_id", id, "error", err)
		return domain.Case{}, fmt.Errorf("%w: %s: %w", ErrCaseUnavailable, id, err)
	}

	r.cases.Insert(c)
	return c, nil
}

// Stats returns the counters accumulated so far.
func (r *Resolver) Stats() ResolverStats {
	return r.stats
}
