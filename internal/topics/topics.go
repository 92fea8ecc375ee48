package topics

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"TosdrCollector/internal/domain"
)

// Filter keeps the case titles that count towards a service's score.
// It is read-only after construction.
type Filter struct {
	titles map[domain.Classification]map[string]struct{}
}

// New builds a filter from in-memory title lists. Titles are normalised to
// lower case; unrecognised classifications are ignored.
func New(lists map[domain.Classification][]string) *Filter {
	f := &Filter{titles: map[domain.Classification]map[string]struct{}{
		domain.ClassificationGood: {},
		domain.ClassificationBad:  {},
	}}
	for class, titles := range lists {
		set, ok := f.titles[class]
		if !ok {
			continue
		}
		for _, title := range titles {
			title = normalize(title)
			if title == "" {
				continue
			}
			set[title] = struct{}{}
		}
	}
	return f
}

// Load reads a {good: [...], bad: [...]} document. JSON files are accepted
// as well since they are valid YAML.
func Load(path string) (*Filter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics %s: %w", path, err)
	}

	var doc map[string][]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse topics %s: %w", path, err)
	}

	lists := make(map[domain.Classification][]string, len(doc))
	for key, titles := range doc {
		lists[domain.Classification(strings.ToLower(key))] = titles
	}
	return New(lists), nil
}

// Contains reports whether title is recognised for class.
func (f *Filter) Contains(class domain.Classification, title string) bool {
	if f == nil {
		return false
	}
	_, ok := f.titles[class][title]
	return ok
}

// Len returns the number of titles recognised for class.
func (f *Filter) Len(class domain.Classification) int {
	if f == nil {
		return 0
	}
	return len(f.titles[class])
}

func normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
