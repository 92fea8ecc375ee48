package domain

import (
	"slices"
	"sort"
)

// TitleSets holds case titles split by classification.
type TitleSets struct {
	Bad  []string `json:"bad"`
	Good []string `json:"good"`
}

func newTitleSets() TitleSets {
	return TitleSets{Bad: []string{}, Good: []string{}}
}

// For returns the list for a recognised classification.
func (t *TitleSets) For(class Classification) *[]string {
	if class == ClassificationBad {
		return &t.Bad
	}
	return &t.Good
}

// Empty reports whether neither list holds a title.
func (t TitleSets) Empty() bool {
	return len(t.Bad) == 0 && len(t.Good) == 0
}

// AggregatedPoints is the per-service record persisted to the output table.
// Field order mirrors the published file format.
type AggregatedPoints struct {
	Score int       `json:"score"`
	All   TitleSets `json:"all"`
	Match TitleSets `json:"match"`
	Class Rating    `json:"class,omitempty"`
}

// NewAggregatedPoints returns a zero record with non-nil lists.
func NewAggregatedPoints() *AggregatedPoints {
	return &AggregatedPoints{All: newTitleSets(), Match: newTitleSets()}
}

// ApplyFallback copies all into match when a rated service has no matched
// reasons, so a rating always carries visible reasons.
func (a *AggregatedPoints) ApplyFallback() {
	if !a.Class.Known() || !a.Match.Empty() {
		return
	}
	a.Match = TitleSets{
		Bad:  slices.Clone(a.All.Bad),
		Good: slices.Clone(a.All.Good),
	}
}

// OutputTable maps domains and related URLs to aggregated points. Aliases of
// one service share the same record.
type OutputTable map[string]*AggregatedPoints

// Put stores the record under key.
func (t OutputTable) Put(key string, points *AggregatedPoints) {
	t[key] = points
}

// Keys returns the table keys in lexical order.
func (t OutputTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
