package usecase

import (
	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
)

// RunState owns the mutable accumulators of one collection run: the case
// cache shared across services and the output table written at the end.
type RunState struct {
	Cases ports.CaseStore
	Table domain.OutputTable
}

// NewRunState returns state with an empty output table around cases.
func NewRunState(cases ports.CaseStore) *RunState {
	return &RunState{
		Cases: cases,
		Table: domain.OutputTable{},
	}
}

// serviceQueue is the work list drained by the collector, front first.
type serviceQueue struct {
	items []domain.ServiceRef
}

func newServiceQueue(refs []domain.ServiceRef) *serviceQueue {
	items := make([]domain.ServiceRef, len(refs))
	copy(items, refs)
	return &serviceQueue{items: items}
}

func (q *serviceQueue) Len() int {
	return len(q.items)
}

// PopFront removes and returns the next service. It must not be called on
// an empty queue.
func (q *serviceQueue) PopFront() domain.ServiceRef {
	ref := q.items[0]
	q.items = q.items[1:]
	return ref
}
