package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// The statement model, declared as a participle grammar over the
// indentation-aware scanner. Each grammar rule is a closed set of
// variants with one pointer field per branch.

// Program is an ordered sequence of top-level statements.
type Program struct {
	Statements []*Statement `parser:"{ @@ }"`
}

// Statement is one line (or block) of a crawl program.
type Statement struct {
	Load *LoadTable     `parser:"( @@"`
	Proc *ProcedureDecl `parser:"| @@"`
	If   *IfThen        `parser:"| @@"`
	Roll *RollStatement `parser:"| @@"`
	Call *ProcedureCall `parser:"| @@"`
	Act  *Consequent    `parser:"| @@ ) Newline"`
}

// LoadTable registers the named table from the table source.
type LoadTable struct {
	Name string `parser:"\"load\" \"table\" @String"`
}

// ProcedureDecl declares a named procedure with an indented body.
type ProcedureDecl struct {
	Name string       `parser:"\"procedure\" @Ident Newline"`
	Body []*Statement `parser:"Indent @@ { @@ } Dedent \"end\""`
}

// ProcedureCall invokes a procedure by its bare name.
type ProcedureCall struct {
	Name string `parser:"@Ident"`
}

// IfThen executes its consequent when the antecedent holds.
type IfThen struct {
	Antecedent *Antecedent `parser:"\"if\" @@ \"=>\""`
	Consequent *Consequent `parser:"@@"`
}

// RollStatement is either a table roll or a matching roll, both
// introduced by the roll keyword.
type RollStatement struct {
	Table *string       `parser:"\"roll\" ( \"on\" \"table\" @String"`
	Match *MatchingRoll `parser:"| @@ )"`
}

// MatchingRoll rolls once and dispatches to the first arm whose target
// contains the result.
type MatchingRoll struct {
	Roll *DiceExpr          `parser:"@@ Newline"`
	Arms []*MatchingRollArm `parser:"Indent @@ { @@ } Dedent \"end\""`
}

// MatchingRollArm is one target => consequent arm.
type MatchingRollArm struct {
	Target     *Target     `parser:"@@ \"=>\""`
	Consequent *Consequent `parser:"@@ Newline"`
}

// Antecedent is the condition of an if statement.
type Antecedent struct {
	DiceCheck      *DiceCheck `parser:"  @@"`
	Fact           *string    `parser:"| \"fact?\" @String"`
	PersistentFact *string    `parser:"| \"persistent-fact?\" @String"`
}

// DiceCheck tests whether a single roll lands in the target.
type DiceCheck struct {
	Target *Target   `parser:"\"roll\" @@ \"on\""`
	Roll   *DiceExpr `parser:"@@"`
}

// Target is a single value or an inclusive lo-hi range.
type Target struct {
	Range *string `parser:"  @Range"`
	Value *int    `parser:"| @Int"`
}

// DiceExpr is an NdM specifier with an optional signed modifier.
type DiceExpr struct {
	Spec  string `parser:"@Dice"`
	Plus  *int   `parser:"[ \"+\" @Int"`
	Minus *int   `parser:"| \"-\" @Int ]"`
}

// Consequent is an effect-only operation.
type Consequent struct {
	SetFact             *FormatString `parser:"  \"set-fact\" @@"`
	SetPersistentFact   *FormatString `parser:"| \"set-persistent-fact\" @@"`
	ClearFact           *string       `parser:"| \"clear-fact\" @String"`
	ClearPersistentFact *string       `parser:"| \"clear-persistent-fact\" @String"`
	SwapFact            *string       `parser:"| \"swap-fact\" @String"`
	SwapPersistentFact  *string       `parser:"| \"swap-persistent-fact\" @String"`
	TableRoll           *string       `parser:"| \"roll\" \"on\" \"table\" @String"`
	Reminder            *string       `parser:"| \"reminder\" @String"`
	Call                *string       `parser:"| @Ident"`
}

// FormatString is a literal with ordered roll clauses substituted into
// its {} placeholders.
type FormatString struct {
	Text    string        `parser:"@String"`
	Clauses []*RollClause `parser:"{ \"%\" @@ }"`
}

// RollClause is one substitution: a dice roll or a table roll.
type RollClause struct {
	Table *string   `parser:"\"roll\" ( \"on\" \"table\" @String"`
	Dice  *DiceExpr `parser:"| @@ )"`
}

// Placeholders counts the {} markers in the literal.
func (f *FormatString) Placeholders() int {
	return strings.Count(f.Text, "{}")
}

// Specifier converts the parsed dice expression into a RollSpecifier.
func (d *DiceExpr) Specifier() (RollSpecifier, error) {
	sep := strings.IndexByte(d.Spec, 'd')
	count, err := strconv.Atoi(d.Spec[:sep])
	if err != nil {
		return RollSpecifier{}, &DefinitionError{Message: fmt.Sprintf("invalid dice specifier %q", d.Spec)}
	}
	sides, err := strconv.Atoi(d.Spec[sep+1:])
	if err != nil {
		return RollSpecifier{}, &DefinitionError{Message: fmt.Sprintf("invalid dice specifier %q", d.Spec)}
	}
	spec := RollSpecifier{Count: count, Sides: sides}
	if d.Plus != nil {
		spec.Modifier = *d.Plus
	}
	if d.Minus != nil {
		spec.Modifier = -*d.Minus
	}
	return spec, nil
}

// RollTarget converts the parsed target into a RollTarget.
func (t *Target) RollTarget() (RollTarget, error) {
	if t.Range != nil {
		target, err := ParseRollTarget(*t.Range)
		if err != nil {
			return RollTarget{}, &DefinitionError{Message: err.Error()}
		}
		return target, nil
	}
	return RollTarget{Min: *t.Value, Max: *t.Value}, nil
}
