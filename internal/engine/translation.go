package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/exprmig/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Resolution is the outcome of a translation lookup.
type Resolution int

const (
	// Resolved means a replacement was found.
	Resolved Resolution = iota
	// Unresolved means the table is loaded but has no entry for the expression.
	Unresolved
	// NoTable means no translation table was provided.
	NoTable
)

func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	case NoTable:
		return "no table"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// TranslationTable maps legacy expressions to their replacement by exact match.
// It is immutable once built. A nil table is valid and resolves nothing.
type TranslationTable struct {
	lookup map[string]string
}

// NewTranslationTable builds a table from positional from/to lists.
// When an expression appears twice in from, its first position wins.
func NewTranslationTable(from, to []string) (*TranslationTable, error) {
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: %d from, %d to", domain.ErrTranslationMismatch, len(from), len(to))
	}
	lookup := make(map[string]string, len(from))
	for i, expr := range from {
		if _, ok := lookup[expr]; ok {
			continue
		}
		lookup[expr] = to[i]
	}
	return &TranslationTable{lookup: lookup}, nil
}

// LoadTranslationTable reads a translation file: a two-element list
// [[from...], [to...]] in JSON, or in YAML when the extension is .yaml or .yml.
func LoadTranslationTable(path string) (*TranslationTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file: %w", err)
	}

	var lists [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &lists); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		if err := json.Unmarshal(data, &lists); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if len(lists) != 2 {
		return nil, fmt.Errorf("translation file %s must hold exactly two lists, got %d", filepath.Base(path), len(lists))
	}
	return NewTranslationTable(lists[0], lists[1])
}

// Loaded reports whether the table can resolve anything. Nil and empty tables cannot.
func (t *TranslationTable) Loaded() bool {
	return t != nil && len(t.lookup) > 0
}

// Len returns the number of distinct legacy expressions in the table.
func (t *TranslationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lookup)
}

// Resolve looks up the replacement of expr.
func (t *TranslationTable) Resolve(expr string) (string, Resolution) {
	if !t.Loaded() {
		return "", NoTable
	}
	to, ok := t.lookup[expr]
	if !ok {
		return "", Unresolved
	}
	return to, Resolved
}
