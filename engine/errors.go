package engine

import "fmt"

// SyntaxError reports malformed source text: a bad token, inconsistent
// indentation, or a missing end. Always fatal at parse time.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "syntax error: " + e.Message
}

// DefinitionError reports a program that parsed but cannot be loaded:
// a duplicate procedure name, dice specifier bounds, or a format-string
// placeholder count that does not match its clauses.
type DefinitionError struct {
	Message string
}

func (e *DefinitionError) Error() string {
	return "definition error: " + e.Message
}

// ResolutionError reports a statement referencing something the run
// does not have: an undeclared procedure, an unloaded table, or a call
// past the depth limit. It fails the run at the triggering statement.
type ResolutionError struct {
	Kind    string // "procedure" or "table"
	Name    string
	Message string
}

func (e *ResolutionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("cannot resolve %s %q", e.Kind, e.Name)
}

// CollaboratorError wraps a failure from an external collaborator (the
// table source or the persistent-fact storage), identifying the
// resource the failing statement touched.
type CollaboratorError struct {
	Resource string
	Err      error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Resource, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
