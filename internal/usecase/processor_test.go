package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
	"TosdrCollector/internal/topics"
)

const serviceDelay = 150 * time.Millisecond

func newTestProcessor(provider *fakeProvider, filter *topics.Filter, pacer *recordingPacer) *Processor {
	resolver := NewResolver(memoryCases{}, provider, pacer, caseDelay, nil)
	aggregator := NewAggregator(resolver, filter, nil)
	return NewProcessor(provider, aggregator, pacer, serviceDelay, nil)
}

func TestProcessMapsDomainAndAliases(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.cases["42"] = badCase("42", "share with third parties", 10)
	provider.addService(domain.Service{
		ID:          "S",
		URL:         "https://www.example.com/",
		RelatedURLs: []string{"example.net", "https://m.example.org"},
		Rating:      domain.RatingD,
		Points:      []domain.Point{approved("42")},
	})
	filter := topics.New(map[domain.Classification][]string{
		domain.ClassificationBad: {"share with third parties"},
	})
	pacer := &recordingPacer{}
	table := domain.OutputTable{}

	outcome, err := newTestProcessor(provider, filter, pacer).Process(context.Background(), domain.ServiceRef{ID: "S"}, table)
	require.NoError(t, err)
	require.Equal(t, OutcomeMapped, outcome)

	require.Equal(t, []string{"example.com", "example.net", "https://m.example.org"}, table.Keys())
	require.Same(t, table["example.com"], table["example.net"])
	require.Same(t, table["example.com"], table["https://m.example.org"])

	agg := table["example.com"]
	require.Equal(t, 10, agg.Score)
	require.Equal(t, domain.RatingD, agg.Class)
	require.Equal(t, 1, pacer.count(serviceDelay))
	require.Equal(t, 1, pacer.count(caseDelay))
}

func TestProcessFallsBackToFirstRelatedURL(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.addService(domain.Service{
		ID:          "S",
		RelatedURLs: []string{"https://login.u1.com", "u2.org"},
	})
	table := domain.OutputTable{}

	outcome, err := newTestProcessor(provider, topics.New(nil), &recordingPacer{}).Process(context.Background(), domain.ServiceRef{ID: "S"}, table)
	require.NoError(t, err)
	require.Equal(t, OutcomeMapped, outcome)

	require.Equal(t, []string{"u1.com", "u2.org"}, table.Keys())
	require.Equal(t, table["u1.com"], table["u2.org"])
	require.NotContains(t, table, "https://login.u1.com")
}

func TestProcessDropsServiceWithoutURL(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.addService(domain.Service{ID: "nourl", Rating: domain.RatingA})
	provider.addService(domain.Service{ID: "ip", URL: "http://10.0.0.1"})
	processor := newTestProcessor(provider, topics.New(nil), &recordingPacer{})
	table := domain.OutputTable{}

	for _, id := range []string{"nourl", "ip"} {
		outcome, err := processor.Process(context.Background(), domain.ServiceRef{ID: id}, table)
		require.NoError(t, err)
		require.Equal(t, OutcomeDropped, outcome)
	}
	require.Empty(t, table)
}

func TestProcessMapsPrivateSuffixHosts(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.addService(domain.Service{ID: "blog", URL: "https://blogspot.com", Rating: domain.RatingC})
	provider.addService(domain.Service{ID: "pages", URL: "https://user.github.io/site"})
	table := domain.OutputTable{}
	processor := newTestProcessor(provider, topics.New(nil), &recordingPacer{})

	for _, id := range []string{"blog", "pages"} {
		outcome, err := processor.Process(context.Background(), domain.ServiceRef{ID: id}, table)
		require.NoError(t, err)
		require.Equal(t, OutcomeMapped, outcome, id)
	}
	require.Equal(t, []string{"blogspot.com", "github.io"}, table.Keys())
}

func TestProcessFallbackLaw(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.cases["1"] = badCase("1", "unlisted bad", 10)
	provider.cases["2"] = goodCase("2", "unlisted good", 10)
	provider.addService(domain.Service{
		ID:     "S",
		URL:    "example.com",
		Rating: domain.RatingB,
		Points: []domain.Point{approved("1"), approved("2")},
	})
	table := domain.OutputTable{}

	_, err := newTestProcessor(provider, topics.New(nil), &recordingPacer{}).Process(context.Background(), domain.ServiceRef{ID: "S"}, table)
	require.NoError(t, err)

	agg := table["example.com"]
	require.Equal(t, agg.All.Good, agg.Match.Good)
	require.Equal(t, agg.All.Bad, agg.Match.Bad)
	require.Zero(t, agg.Score)
}

func TestProcessErrors(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.serviceErr["limited"] = ports.ErrRateLimited
	provider.serviceErr["broken"] = errors.New("unexpected status 500")
	pacer := &recordingPacer{}
	processor := newTestProcessor(provider, topics.New(nil), pacer)
	table := domain.OutputTable{}

	outcome, err := processor.Process(context.Background(), domain.ServiceRef{ID: "broken"}, table)
	require.NoError(t, err)
	require.Equal(t, OutcomeSkipped, outcome)
	require.Equal(t, 1, pacer.count(serviceDelay))

	_, err = processor.Process(context.Background(), domain.ServiceRef{ID: "limited"}, table)
	require.ErrorIs(t, err, ports.ErrRateLimited)
	require.Equal(t, 1, pacer.count(serviceDelay), "fatal errors do not pause")
	require.Empty(t, table)
}
