package cache

import (
	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
)

// Memory keeps fetched cases for the lifetime of a run. It is owned by a
// single goroutine and performs no locking.
type Memory struct {
	cases map[string]domain.Case
}

var _ ports.CaseStore = (*Memory)(nil)

// NewMemory returns an empty cache.
func NewMemory() *Memory {
	return &Memory{cases: map[string]domain.Case{}}
}

// Lookup returns the cached case for id.
func (m *Memory) Lookup(id string) (domain.Case, bool) {
	c, ok := m.cases[id]
	return c, ok
}

// Insert stores c unless its id is already cached.
func (m *Memory) Insert(c domain.Case) {
	if m.cases == nil {
		m.cases = map[string]domain.Case{}
	}
	if _, ok := m.cases[c.ID]; ok {
		return
	}
	m.cases[c.ID] = c
}

// Len returns the number of cached cases.
func (m *Memory) Len() int {
	return len(m.cases)
}
