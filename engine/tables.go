package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// RollTarget is a single value (Min == Max) or an inclusive range.
type RollTarget struct {
	Min int
	Max int
}

// Contains reports whether n lies in the target.
func (t RollTarget) Contains(n int) bool {
	return t.Min <= n && n <= t.Max
}

// ParseRollTarget parses "n" or "lo-hi" with both ends inclusive.
func ParseRollTarget(s string) (RollTarget, error) {
	parts := strings.Split(s, "-")
	switch len(parts) {
	case 1:
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return RollTarget{}, fmt.Errorf("invalid roll target %q", s)
		}
		return RollTarget{Min: n, Max: n}, nil
	case 2:
		lo, err := strconv.Atoi(parts[0])
		if err != nil {
			return RollTarget{}, fmt.Errorf("invalid roll target %q", s)
		}
		hi, err := strconv.Atoi(parts[1])
		if err != nil {
			return RollTarget{}, fmt.Errorf("invalid roll target %q", s)
		}
		if hi < lo {
			return RollTarget{}, fmt.Errorf("empty roll target %q", s)
		}
		return RollTarget{Min: lo, Max: hi}, nil
	default:
		return RollTarget{}, fmt.Errorf("invalid roll target %q", s)
	}
}

// TableRow is one already-parsed entry supplied by the table source.
type TableRow struct {
	Target RollTarget
	Text   string
}

// Table is a named, immutable list of rows. Rows need not be
// exhaustive or non-overlapping; sampling scans them in declared order
// and takes the first match, the same policy as a matching roll.
type Table struct {
	Name      string
	Rows      []TableRow
	Specifier RollSpecifier // zero value: one die sized to the table max
}

func (t *Table) maxTarget() int {
	max := 0
	for _, row := range t.Rows {
		if row.Target.Max > max {
			max = row.Target.Max
		}
	}
	return max
}

func (t *Table) sampleSpecifier() RollSpecifier {
	if t.Specifier.Count > 0 {
		return t.Specifier
	}
	sides := t.maxTarget()
	if sides < 1 {
		sides = 1
	}
	return RollSpecifier{Count: 1, Sides: sides}
}

// Registry holds the tables loaded by a run, keyed by their source
// identifier.
type Registry struct {
	tables map[string]*Table
}

func NewRegistry() *Registry {
	return &Registry{tables: map[string]*Table{}}
}

// Load registers the table, replacing any prior table of the same name.
func (r *Registry) Load(name string, rows []TableRow) {
	r.tables[name] = &Table{Name: name, Rows: rows}
}

// SetSpecifier configures an explicit sampling specifier for a loaded
// table, overriding the default single die sized to the table max.
func (r *Registry) SetSpecifier(name string, spec RollSpecifier) error {
	t, ok := r.tables[name]
	if !ok {
		return &ResolutionError{Kind: "table", Name: name}
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	t.Specifier = spec
	return nil
}

// Lookup returns the named table if loaded.
func (r *Registry) Lookup(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Sample rolls once and returns the text of the first row containing
// the rolled value. ok is false when no row matches: the roll happens
// but yields no output. Referencing an unloaded table is a
// ResolutionError.
func (r *Registry) Sample(dice *Dice, name string) (text string, ok bool, err error) {
	t, found := r.tables[name]
	if !found {
		return "", false, &ResolutionError{Kind: "table", Name: name}
	}
	if len(t.Rows) == 0 {
		return "", false, nil
	}
	n := dice.Roll(t.sampleSpecifier())
	for _, row := range t.Rows {
		if row.Target.Contains(n) {
			return row.Text, true, nil
		}
	}
	return "", false, nil
}
