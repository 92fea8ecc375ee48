package ports

import (
	"context"
	"errors"
	"time"

	"TosdrCollector/internal/domain"
)

// Errors provider adapters wrap so the use cases can classify failures.
var (
	// ErrRateLimited signals the upstream refused the request for quota reasons.
	ErrRateLimited = errors.New("rate limited by upstream")
	// ErrMalformed signals a payload that could not be decoded or lacks required fields.
	ErrMalformed = errors.New("malformed upstream payload")
)

// ServiceLister returns the provider's master list of services.
type ServiceLister interface {
	Services(ctx context.Context) ([]domain.ServiceRef, error)
}

// ServiceFetcher returns detail data for one service.
type ServiceFetcher interface {
	Service(ctx context.Context, id string) (domain.Service, error)
}

// CaseFetcher returns detail data for one case.
type CaseFetcher interface {
	Case(ctx context.Context, id string) (domain.Case, error)
}

// Provider is the full read-only surface of the rating provider.
type Provider interface {
	ServiceLister
	ServiceFetcher
	CaseFetcher
}

// CaseStore caches resolved cases for the duration of a run.
type CaseStore interface {
	Lookup(id string) (domain.Case, bool)
	Insert(c domain.Case)
	Len() int
}

// TableWriter persists the finished output table.
type TableWriter interface {
	Name() string
	Write(ctx context.Context, table domain.OutputTable) error
}

// Pacer inserts the fixed delays used to respect upstream rate limits.
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}
