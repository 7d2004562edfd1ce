// Package crawl runs Crawl programs: small declarative scripts a
// tabletop-game facilitator uses to resolve dice-driven events through
// random tables, conditional fact tracking and reusable procedures.
package crawl

import (
	"crawl/engine"
)

// Crawl parses and executes programs against a fixed set of
// collaborators. One Execute call processes one program to completion.
type Crawl struct {
	parser  *engine.Parser
	source  engine.TableSource
	storage engine.FactStorage
	opts    []engine.Option
}

// New wires a runner. source resolves load table directives, storage
// backs persistent facts; either may be nil to disable the
// collaborator. Options are passed to every run's interpreter.
func New(source engine.TableSource, storage engine.FactStorage, opts ...engine.Option) (*Crawl, error) {
	p, err := engine.NewParser()
	if err != nil {
		return nil, err
	}
	return &Crawl{parser: p, source: source, storage: storage, opts: opts}, nil
}

// Execute runs one program to completion. The interpreter is returned
// even on failure so callers can inspect the run state and facts.
func (c *Crawl) Execute(source string) (*engine.Interpreter, error) {
	prog, err := c.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	in, err := engine.NewInterpreter(c.source, c.storage, c.opts...)
	if err != nil {
		return nil, err
	}
	if err := in.Run(prog); err != nil {
		return in, err
	}
	return in, nil
}
