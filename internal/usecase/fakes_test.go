package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
)

type fakeProvider struct {
	refs       []domain.ServiceRef
	listErr    error
	services   map[string]domain.Service
	serviceErr map[string]error
	cases      map[string]domain.Case
	caseErr    map[string]error

	serviceCalls []string
	caseCalls    map[string]int
}

var _ ports.Provider = (*fakeProvider)(nil)

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		services:   map[string]domain.Service{},
		serviceErr: map[string]error{},
		cases:      map[string]domain.Case{},
		caseErr:    map[string]error{},
		caseCalls:  map[string]int{},
	}
}

func (f *fakeProvider) Services(context.Context) ([]domain.ServiceRef, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.refs, nil
}

func (f *fakeProvider) Service(_ context.Context, id string) (domain.Service, error) {
	f.serviceCalls = append(f.serviceCalls, id)
	if err := f.serviceErr[id]; err != nil {
		return domain.Service{}, err
	}
	s, ok := f.services[id]
	if !ok {
		return domain.Service{}, errors.New("not found")
	}
	return s, nil
}

func (f *fakeProvider) Case(_ context.Context, id string) (domain.Case, error) {
	f.caseCalls[id]++
	if err := f.caseErr[id]; err != nil {
		return domain.Case{}, err
	}
	c, ok := f.cases[id]
	if !ok {
		return domain.Case{}, fmt.Errorf("case %s: %w", id, ports.ErrMalformed)
	}
	return c, nil
}

func (f *fakeProvider) addService(s domain.Service) {
	f.services[s.ID] = s
	f.refs = append(f.refs, domain.ServiceRef{ID: s.ID})
}

type recordingPacer struct {
	pauses []time.Duration
}

func (p *recordingPacer) Pause(ctx context.Context, d time.Duration) error {
	p.pauses = append(p.pauses, d)
	return ctx.Err()
}

func (p *recordingPacer) count(d time.Duration) int {
	n := 0
	for _, got := range p.pauses {
		if got == d {
			n++
		}
	}
	return n
}

type recordingWriter struct {
	name   string
	err    error
	writes []domain.OutputTable
}

func (w *recordingWriter) Name() string {
	return w.name
}

func (w *recordingWriter) Write(_ context.Context, table domain.OutputTable) error {
	w.writes = append(w.writes, table)
	return w.err
}

type memoryCases map[string]domain.Case

func (m memoryCases) Lookup(id string) (domain.Case, bool) {
	c, ok := m[id]
	return c, ok
}

func (m memoryCases) Insert(c domain.Case) {
	if _, ok := m[c.ID]; !ok {
		m[c.ID] = c
	}
}

func (m memoryCases) Len() int {
	return len(m)
}

func approved(caseID string) domain.Point {
	return domain.Point{Status: domain.PointStatusApproved, CaseID: caseID}
}

func badCase(id, title string, score int) domain.Case {
	return domain.Case{ID: id, Title: title, Classification: domain.ClassificationBad, Score: score}
}

func goodCase(id, title string, score int) domain.Case {
	return domain.Case{ID: id, Title: title, Classification: domain.ClassificationGood, Score: score}
}
