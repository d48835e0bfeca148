// Package keywords pads under-populated keyword sets with canonical terms so every
// ingested document is searchable by a minimum vocabulary.
package keywords

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MinKeywords is the smallest keyword count an ingested document may have.
	MinKeywords = 20
	// MaxKeywords caps the list returned by Expand.
	MaxKeywords = 30
)

//go:embed rules.yaml
var defaultRules []byte

// Rule contributes Terms when any Match string occurs in the lower-cased document type.
type Rule struct {
	Match []string `yaml:"match"`
	Terms []string `yaml:"terms"`
}

// Table is the ordered rule set plus the generic fallback terms.
type Table struct {
	Rules   []Rule   `yaml:"rules"`
	Generic []string `yaml:"generic"`
}

// Expander applies a Table. It holds no mutable state and is safe for concurrent use.
type Expander struct {
	table Table
}

var defaultExpander = mustParse(defaultRules)

// NewExpander builds an expander over the given table.
func NewExpander(t Table) *Expander {
	return &Expander{table: t}
}

// Default returns the expander backed by the embedded rule table.
func Default() *Expander {
	return defaultExpander
}

// LoadFile reads a YAML rule table from disk.
func LoadFile(path string) (*Expander, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword rules: %w", err)
	}
	t, err := parse(data)
	if err != nil {
		return nil, err
	}
	return NewExpander(t), nil
}

// Expand applies the embedded rule table. See (*Expander).Expand.
func Expand(keywords []string, documentType string) []string {
	return defaultExpander.Expand(keywords, documentType)
}

// Table returns a copy of the rule table.
func (e *Expander) Table() Table {
	out := Table{Generic: append([]string(nil), e.table.Generic...)}
	for _, r := range e.table.Rules {
		out.Rules = append(out.Rules, Rule{
			Match: append([]string(nil), r.Match...),
			Terms: append([]string(nil), r.Terms...),
		})
	}
	return out
}

// Expand returns keywords unchanged (truncated to MaxKeywords) when there are already
// MinKeywords of them. Otherwise it appends candidates from the matching rules, in table
// order, then the generic terms, skipping any candidate already contained in an existing
// keyword, until MinKeywords is reached or the candidates run out.
// The input slice is never modified.
func (e *Expander) Expand(keywords []string, documentType string) []string {
	if len(keywords) >= MinKeywords {
		n := len(keywords)
		if n > MaxKeywords {
			n = MaxKeywords
		}
		return append([]string(nil), keywords[:n]...)
	}

	out := make([]string, len(keywords), MinKeywords)
	copy(out, keywords)
	lowered := make([]string, len(keywords), MinKeywords)
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	for _, candidate := range e.candidates(documentType) {
		if len(out) >= MinKeywords {
			break
		}
		lc := strings.ToLower(candidate)
		if lc == "" || containedIn(lc, lowered) {
			continue
		}
		out = append(out, candidate)
		lowered = append(lowered, lc)
	}
	return out
}

func (e *Expander) candidates(documentType string) []string {
	dt := strings.ToLower(documentType)
	var out []string
	for _, r := range e.table.Rules {
		if matches(dt, r.Match) {
			out = append(out, r.Terms...)
		}
	}
	return append(out, e.table.Generic...)
}

func matches(documentType string, subs []string) bool {
	if documentType == "" {
		return false
	}
	for _, s := range subs {
		if s != "" && strings.Contains(documentType, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func containedIn(candidate string, existing []string) bool {
	for _, k := range existing {
		if strings.Contains(k, candidate) {
			return true
		}
	}
	return false
}

func parse(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse keyword rules: %w", err)
	}
	if len(t.Generic) == 0 {
		return Table{}, fmt.Errorf("parse keyword rules: generic terms are required")
	}
	return t, nil
}

func mustParse(data []byte) *Expander {
	t, err := parse(data)
	if err != nil {
		panic(err)
	}
	return NewExpander(t)
}
