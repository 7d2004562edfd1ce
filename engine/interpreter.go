package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventKind discriminates interpreter output events.
type EventKind int

const (
	EventReminder EventKind = iota
	EventTableRoll
)

// Event is one informational output produced during a run: reminder
// text or the entry sampled by a table roll. Events carry no state.
type Event struct {
	Kind  EventKind
	Table string // table identifier, set for EventTableRoll
	Text  string
}

// Sink receives events in emission order. The interpreter neither
// formats nor buffers them.
type Sink interface {
	Emit(Event)
}

// TableSource resolves a load table directive into already-parsed rows.
type TableSource interface {
	ReadTable(name string) ([]TableRow, error)
}

// State tracks where a run is in its lifecycle.
type State int

const (
	StateStart State = iota
	StateExecuting
	StateDone
	StateFailed
)

// DefaultMaxCallDepth bounds procedure call nesting so self-referential
// calls surface as a ResolutionError instead of unbounded recursion.
const DefaultMaxCallDepth = 64

// Interpreter executes one program against a fact store, a dice engine
// and a table registry. All procedures share the run's state: there is
// one global namespace of facts and tables, no per-call scope.
type Interpreter struct {
	dice     *Dice
	tables   *Registry
	facts    *FactStore
	source   TableSource
	sink     Sink
	procs    map[string]*ProcedureDecl
	maxDepth int
	depth    int
	state    State
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithDice replaces the default clock-seeded dice engine.
func WithDice(d *Dice) Option {
	return func(in *Interpreter) { in.dice = d }
}

// WithSink attaches an output sink for reminder and table-roll events.
func WithSink(s Sink) Option {
	return func(in *Interpreter) { in.sink = s }
}

// WithMaxCallDepth overrides DefaultMaxCallDepth.
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) { in.maxDepth = n }
}

// NewInterpreter builds an interpreter for a single run. Persistent
// facts are preloaded from storage; a nil storage or source disables
// that collaborator.
func NewInterpreter(source TableSource, storage FactStorage, opts ...Option) (*Interpreter, error) {
	facts, err := NewFactStore(storage)
	if err != nil {
		return nil, err
	}
	in := &Interpreter{
		dice:     NewSeededDice(time.Now().UnixNano()),
		tables:   NewRegistry(),
		facts:    facts,
		source:   source,
		procs:    map[string]*ProcedureDecl{},
		maxDepth: DefaultMaxCallDepth,
		state:    StateStart,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

// State reports the run lifecycle state.
func (in *Interpreter) State() State { return in.state }

// Facts exposes the run's fact store.
func (in *Interpreter) Facts() *FactStore { return in.facts }

// Tables exposes the run's table registry.
func (in *Interpreter) Tables() *Registry { return in.tables }

// Run loads table directives and procedure declarations in program
// order, checks definitions, then executes the remaining top-level
// statements in textual order. The first fatal error aborts the rest
// of the program; persistent mutations already flushed stay in effect.
func (in *Interpreter) Run(prog *Program) error {
	if err := in.load(prog); err != nil {
		in.state = StateFailed
		return err
	}
	in.state = StateExecuting
	for _, st := range prog.Statements {
		if err := in.execStatement(st); err != nil {
			in.state = StateFailed
			return err
		}
	}
	in.state = StateDone
	return nil
}

func (in *Interpreter) load(prog *Program) error {
	for _, st := range prog.Statements {
		switch {
		case st.Load != nil:
			if in.source == nil {
				return &CollaboratorError{
					Resource: "table " + st.Load.Name,
					Err:      fmt.Errorf("no table source configured"),
				}
			}
			rows, err := in.source.ReadTable(st.Load.Name)
			if err != nil {
				return &CollaboratorError{Resource: "table " + st.Load.Name, Err: err}
			}
			in.tables.Load(st.Load.Name, rows)
		case st.Proc != nil:
			if _, dup := in.procs[st.Proc.Name]; dup {
				return &DefinitionError{Message: fmt.Sprintf("procedure %q declared twice", st.Proc.Name)}
			}
			in.procs[st.Proc.Name] = st.Proc
		}
	}
	for _, st := range prog.Statements {
		if err := checkStatement(st); err != nil {
			return err
		}
	}
	return nil
}

// checkStatement enforces definition-time rules before anything runs:
// dice bounds and format-string placeholder arity, recursively.
func checkStatement(st *Statement) error {
	switch {
	case st.Proc != nil:
		for _, s := range st.Proc.Body {
			if err := checkStatement(s); err != nil {
				return err
			}
		}
	case st.If != nil:
		if dc := st.If.Antecedent.DiceCheck; dc != nil {
			if err := checkDice(dc.Roll); err != nil {
				return err
			}
			if _, err := dc.Target.RollTarget(); err != nil {
				return err
			}
		}
		return checkConsequent(st.If.Consequent)
	case st.Roll != nil && st.Roll.Match != nil:
		if err := checkDice(st.Roll.Match.Roll); err != nil {
			return err
		}
		for _, arm := range st.Roll.Match.Arms {
			if _, err := arm.Target.RollTarget(); err != nil {
				return err
			}
			if err := checkConsequent(arm.Consequent); err != nil {
				return err
			}
		}
	case st.Act != nil:
		return checkConsequent(st.Act)
	}
	return nil
}

func checkConsequent(c *Consequent) error {
	switch {
	case c.SetFact != nil:
		return checkFormat(c.SetFact)
	case c.SetPersistentFact != nil:
		return checkFormat(c.SetPersistentFact)
	}
	return nil
}

func checkFormat(f *FormatString) error {
	if n := f.Placeholders(); n != len(f.Clauses) {
		return &DefinitionError{Message: fmt.Sprintf(
			"format string %q has %d placeholders but %d roll clauses", f.Text, n, len(f.Clauses))}
	}
	for _, cl := range f.Clauses {
		if cl.Dice != nil {
			if err := checkDice(cl.Dice); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkDice(d *DiceExpr) error {
	spec, err := d.Specifier()
	if err != nil {
		return err
	}
	return spec.Validate()
}

func (in *Interpreter) execStatement(st *Statement) error {
	switch {
	case st.Load != nil, st.Proc != nil:
		// applied during the load phase
		return nil
	case st.If != nil:
		return in.execIfThen(st.If)
	case st.Roll != nil:
		if st.Roll.Table != nil {
			return in.tableRoll(*st.Roll.Table)
		}
		return in.execMatchingRoll(st.Roll.Match)
	case st.Call != nil:
		return in.call(st.Call.Name)
	case st.Act != nil:
		return in.execConsequent(st.Act)
	}
	return nil
}

// call executes the named procedure's body inline, in the caller's
// context, and returns control to the statement after the call.
func (in *Interpreter) call(name string) error {
	proc, ok := in.procs[name]
	if !ok {
		return &ResolutionError{Kind: "procedure", Name: name}
	}
	if in.depth >= in.maxDepth {
		return &ResolutionError{
			Kind:    "procedure",
			Name:    name,
			Message: fmt.Sprintf("call depth limit %d exceeded calling %q", in.maxDepth, name),
		}
	}
	in.depth++
	defer func() { in.depth-- }()
	for _, st := range proc.Body {
		if err := in.execStatement(st); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execIfThen(s *IfThen) error {
	ok, err := in.evalAntecedent(s.Antecedent)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return in.execConsequent(s.Consequent)
}

func (in *Interpreter) evalAntecedent(a *Antecedent) (bool, error) {
	switch {
	case a.DiceCheck != nil:
		spec, err := a.DiceCheck.Roll.Specifier()
		if err != nil {
			return false, err
		}
		target, err := a.DiceCheck.Target.RollTarget()
		if err != nil {
			return false, err
		}
		// one roll per evaluation
		return target.Contains(in.dice.Roll(spec)), nil
	case a.Fact != nil:
		return in.facts.Contains(*a.Fact, Ephemeral), nil
	case a.PersistentFact != nil:
		return in.facts.Contains(*a.PersistentFact, Persistent), nil
	}
	return false, nil
}

func (in *Interpreter) execMatchingRoll(m *MatchingRoll) error {
	spec, err := m.Roll.Specifier()
	if err != nil {
		return err
	}
	n := in.dice.Roll(spec)
	for _, arm := range m.Arms {
		target, err := arm.Target.RollTarget()
		if err != nil {
			return err
		}
		if target.Contains(n) {
			return in.execConsequent(arm.Consequent)
		}
	}
	// no arm matched: no-op
	return nil
}

func (in *Interpreter) execConsequent(c *Consequent) error {
	switch {
	case c.SetFact != nil:
		name, err := in.resolveFormat(c.SetFact)
		if err != nil {
			return err
		}
		return in.facts.Insert(name, Ephemeral)
	case c.SetPersistentFact != nil:
		name, err := in.resolveFormat(c.SetPersistentFact)
		if err != nil {
			return err
		}
		return in.facts.Insert(name, Persistent)
	case c.ClearFact != nil:
		return in.facts.Remove(*c.ClearFact, Ephemeral)
	case c.ClearPersistentFact != nil:
		return in.facts.Remove(*c.ClearPersistentFact, Persistent)
	case c.SwapFact != nil:
		_, err := in.facts.Toggle(*c.SwapFact, Ephemeral)
		return err
	case c.SwapPersistentFact != nil:
		_, err := in.facts.Toggle(*c.SwapPersistentFact, Persistent)
		return err
	case c.TableRoll != nil:
		return in.tableRoll(*c.TableRoll)
	case c.Reminder != nil:
		in.emit(Event{Kind: EventReminder, Text: *c.Reminder})
		return nil
	case c.Call != nil:
		return in.call(*c.Call)
	}
	return nil
}

func (in *Interpreter) tableRoll(name string) error {
	text, ok, err := in.tables.Sample(in.dice, name)
	if err != nil {
		return err
	}
	if ok {
		in.emit(Event{Kind: EventTableRoll, Table: name, Text: text})
	}
	return nil
}

// resolveFormat substitutes each roll clause, left to right, into the
// next {} occurrence in the literal. A table clause whose roll matches
// no entry substitutes the empty string.
func (in *Interpreter) resolveFormat(f *FormatString) (string, error) {
	out := f.Text
	for _, cl := range f.Clauses {
		var repl string
		switch {
		case cl.Dice != nil:
			spec, err := cl.Dice.Specifier()
			if err != nil {
				return "", err
			}
			repl = strconv.Itoa(in.dice.Roll(spec))
		case cl.Table != nil:
			text, ok, err := in.tables.Sample(in.dice, *cl.Table)
			if err != nil {
				return "", err
			}
			if ok {
				repl = text
			}
		}
		out = strings.Replace(out, "{}", repl, 1)
	}
	return out, nil
}

func (in *Interpreter) emit(ev Event) {
	if in.sink != nil {
		in.sink.Emit(ev)
	}
}
