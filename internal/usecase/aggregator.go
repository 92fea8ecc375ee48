package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/topics"
)

// CaseResolver resolves a case id to its detail record.
type CaseResolver interface {
	Resolve(ctx context.Context, id string) (domain.Case, error)
}

// Aggregator folds a service's review points into AggregatedPoints.
type Aggregator struct {
	resolver CaseResolver
	topics   *topics.Filter
	logger   *slog.Logger
}

// NewAggregator wires the case resolver and the topic filter.
func NewAggregator(resolver CaseResolver, filter *topics.Filter, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{resolver: resolver, topics: filter, logger: logger}
}

// Aggregate walks points in order. Every approved point with a good or bad
// case lands in All; titles known to the topic filter land once in Match
// and move the score. The returned Class is left unset.
//
// The only error returned is context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, serviceID string, points []domain.Point) (*domain.AggregatedPoints, error) {
	agg := domain.NewAggregatedPoints()

	for _, point := range points {
		if !point.Approved() || point.CaseID == "" {
			continue
		}

		c, err := a.resolver.Resolve(ctx, point.CaseID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			a.logger.Debug("skip point", "service_id", serviceID, "case_id", point.CaseID, "error", err)
			continue
		}

		if !c.Classification.Valid() {
			continue
		}
		a.add(agg, c)
	}

	return agg, nil
}

func (a *Aggregator) add(agg *domain.AggregatedPoints, c domain.Case) {
	all := agg.All.For(c.Classification)
	*all = append(*all, c.Title)

	if !a.topics.Contains(c.Classification, c.Title) {
		return
	}
	match := agg.Match.For(c.Classification)
	if slices.Contains(*match, c.Title) {
		return
	}
	*match = append(*match, c.Title)

	if c.Classification == domain.ClassificationBad {
		agg.Score += c.Score
	} else {
		agg.Score -= c.Score
	}
}
