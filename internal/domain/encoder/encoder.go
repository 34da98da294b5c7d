// Package encoder holds the categorical encoder bank: one fitted
// vocabulary per categorical field, loaded once at startup and immutable
// for the process lifetime.
package encoder

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Unknown is the sentinel code returned for any value absent from the
// trained vocabulary. The model was trained to tolerate it.
const Unknown = -1

// Bank maps raw categorical strings to the integer codes the regression
// model was trained on. Codes are stable only for values present in the
// fitted vocabulary.
type Bank struct {
	fields map[string]*vocabulary
}

type vocabulary struct {
	classes []string
	index   map[string]int
}

// Option applies a configuration option to the Bank.
type Option func(*Bank)

// WithVocabulary registers a fitted vocabulary for a field. Intended for
// tests; production banks come from Load.
func WithVocabulary(field string, classes []string) Option {
	return func(b *Bank) {
		b.fields[field] = newVocabulary(classes)
	}
}

// New creates an empty Bank and applies options.
func New(opts ...Option) *Bank {
	b := &Bank{fields: make(map[string]*vocabulary)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load reads the encoder artifact: a JSON object mapping field name to
// its ordered class list, dumped at training time.
func Load(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadArtifact, err)
	}
	var artifact map[string][]string
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	if len(artifact) == 0 {
		return nil, fmt.Errorf("%w: no fields in %s", ErrBadArtifact, path)
	}
	b := New()
	for field, classes := range artifact {
		b.fields[field] = newVocabulary(classes)
	}
	return b, nil
}

func newVocabulary(classes []string) *vocabulary {
	v := &vocabulary{
		classes: make([]string, len(classes)),
		index:   make(map[string]int, len(classes)),
	}
	copy(v.classes, classes)
	for i, c := range classes {
		v.index[normalize(c)] = i
	}
	return v
}

// Encode returns the fitted index of value within field's vocabulary, or
// Unknown when the value (or the field itself) was never seen during
// training. It never fails: unseen categories degrade to the sentinel.
func (b *Bank) Encode(field, value string) int {
	v, ok := b.fields[field]
	if !ok {
		return Unknown
	}
	code, ok := v.index[normalize(value)]
	if !ok {
		return Unknown
	}
	return code
}

// Classes returns the fitted vocabulary for a field in index order, or
// nil for an unknown field. The returned slice is a copy.
func (b *Bank) Classes(field string) []string {
	v, ok := b.fields[field]
	if !ok {
		return nil
	}
	out := make([]string, len(v.classes))
	copy(out, v.classes)
	return out
}

// Fields returns the number of fields with a fitted vocabulary.
func (b *Bank) Fields() int {
	return len(b.fields)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
