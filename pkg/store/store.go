// Package store accumulates fine-tuning examples across all sources and
// computes aggregate statistics. A Store is append-only for the life of a
// run; insertion order becomes the line order of the exported file.
package store

import (
	"unicode/utf8"

	"github.com/demod-llc/nixtune/models"
)

// Store is an ordered, append-only collection of examples. Not safe for
// concurrent use; the generator runs the pipeline single-threaded.
type Store struct {
	examples []models.Example
}

// Stats summarizes a store's contents. Average lengths are in characters,
// truncated to integers, and zero for an empty store.
type Stats struct {
	Total               int            `json:"total_examples"`
	BySource            map[string]int `json:"by_source"`
	ByType              map[string]int `json:"by_type"`
	AvgPromptLength     int            `json:"avg_prompt_length"`
	AvgCompletionLength int            `json:"avg_completion_length"`
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Append adds examples in order. Duplicates are kept as-is.
func (s *Store) Append(examples ...models.Example) {
	s.examples = append(s.examples, examples...)
}

// Count returns the number of stored examples.
func (s *Store) Count() int {
	return len(s.examples)
}

// Examples returns the stored examples in insertion order. The slice is
// shared with the store; callers must not mutate it.
func (s *Store) Examples() []models.Example {
	return s.examples
}

// Statistics computes aggregate counts over the stored examples. Calling
// it is read-only and repeatable.
func (s *Store) Statistics() Stats {
	stats := Stats{
		Total:    len(s.examples),
		BySource: make(map[string]int),
		ByType:   make(map[string]int),
	}

	var promptLen, completionLen int
	for _, ex := range s.examples {
		stats.BySource[ex.Source]++

		exType := "unknown"
		if t, ok := ex.Metadata["type"].(string); ok && t != "" {
			exType = t
		}
		stats.ByType[exType]++

		promptLen += utf8.RuneCountInString(ex.Prompt)
		completionLen += utf8.RuneCountInString(ex.Completion)
	}

	if stats.Total > 0 {
		stats.AvgPromptLength = promptLen / stats.Total
		stats.AvgCompletionLength = completionLen / stats.Total
	}

	return stats
}
