// Package category maps normalized symptom text to a clinical specialty.
//
// The classification table is declarative: definitions are scanned in order,
// and order is the tie-break. Exactly one definition is the fallback, used when
// nothing matches.
package category

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/medtriage/internal/domain/symptom"
)

// HintRule suggests a diagnosis when every AllOf term and no NoneOf term is present.
type HintRule struct {
	AllOf     []string `yaml:"all_of"`
	NoneOf    []string `yaml:"none_of"`
	Diagnosis string   `yaml:"diagnosis"`
}

// Definition is one row of the classification table.
type Definition struct {
	Name        string     `yaml:"name"`
	SpecialtyID int64      `yaml:"specialty_id"`
	Keywords    []string   `yaml:"keywords"`
	Hints       []HintRule `yaml:"hints"`
	Fallback    bool       `yaml:"fallback"`
}

// Table is a validated, read-only classification table.
type Table struct {
	defs     []Definition
	fallback int
	byID     map[int64]int
}

// NewTable validates definitions and builds a table.
// Names must be non-empty, specialty ids positive and unique, keywords normalized,
// and exactly one definition must be the fallback.
func NewTable(defs []Definition) (*Table, error) {
	if len(defs) == 0 {
		return nil, errors.New("category table is empty")
	}

	t := &Table{
		defs:     make([]Definition, len(defs)),
		fallback: -1,
		byID:     make(map[int64]int, len(defs)),
	}
	copy(t.defs, defs)

	names := make(map[string]struct{}, len(defs))
	for i, d := range t.defs {
		if d.Name == "" {
			return nil, fmt.Errorf("definition %d: name is required", i)
		}
		if _, dup := names[d.Name]; dup {
			return nil, fmt.Errorf("definition %q: duplicate name", d.Name)
		}
		names[d.Name] = struct{}{}

		if d.SpecialtyID <= 0 {
			return nil, fmt.Errorf("definition %q: specialty_id must be positive", d.Name)
		}
		if prev, dup := t.byID[d.SpecialtyID]; dup {
			return nil, fmt.Errorf("definition %q: specialty_id %d already used by %q",
				d.Name, d.SpecialtyID, t.defs[prev].Name)
		}
		t.byID[d.SpecialtyID] = i

		if d.Fallback {
			if t.fallback >= 0 {
				return nil, fmt.Errorf("definition %q: fallback already set to %q", d.Name, t.defs[t.fallback].Name)
			}
			t.fallback = i
		} else if len(d.Keywords) == 0 {
			return nil, fmt.Errorf("definition %q: at least one keyword is required", d.Name)
		}

		if err := checkTerms(d.Name, d.Keywords); err != nil {
			return nil, err
		}
		for _, h := range d.Hints {
			if h.Diagnosis == "" || len(h.AllOf) == 0 {
				return nil, fmt.Errorf("definition %q: hint needs all_of and diagnosis", d.Name)
			}
			if err := checkTerms(d.Name, h.AllOf); err != nil {
				return nil, err
			}
			if err := checkTerms(d.Name, h.NoneOf); err != nil {
				return nil, err
			}
		}
	}

	if t.fallback < 0 {
		return nil, errors.New("category table has no fallback definition")
	}
	return t, nil
}

// checkTerms rejects terms that could never match normalized text.
func checkTerms(name string, terms []string) error {
	for _, term := range terms {
		if term == "" || symptom.Normalize(term) != term {
			return fmt.Errorf("definition %q: term %q is not normalized", name, term)
		}
	}
	return nil
}

// Definitions returns the table rows in declaration order.
func (t *Table) Definitions() []Definition {
	out := make([]Definition, len(t.defs))
	copy(out, t.defs)
	return out
}

// Fallback returns the designated fallback definition.
func (t *Table) Fallback() Definition {
	return t.defs[t.fallback]
}

// BySpecialty looks up a definition by specialty id.
func (t *Table) BySpecialty(id int64) (Definition, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Definition{}, false
	}
	return t.defs[i], true
}

// Len returns the number of definitions including the fallback.
func (t *Table) Len() int { return len(t.defs) }

type tableFile struct {
	Categories []Definition `yaml:"categories"`
}

// LoadTable reads a YAML classification table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML classification table.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse category table: %w", err)
	}
	return NewTable(f.Categories)
}
