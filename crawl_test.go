package crawl

import (
	"errors"
	"fmt"
	"testing"

	"crawl/engine"
)

type mapSource map[string][]engine.TableRow

func (m mapSource) ReadTable(name string) ([]engine.TableRow, error) {
	rows, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no such table %q", name)
	}
	return rows, nil
}

type captureSink struct {
	events []engine.Event
}

func (s *captureSink) Emit(ev engine.Event) { s.events = append(s.events, ev) }

func mustTarget(t *testing.T, s string) engine.RollTarget {
	t.Helper()
	target, err := engine.ParseRollTarget(s)
	if err != nil {
		t.Fatalf("ParseRollTarget(%q): %v", s, err)
	}
	return target
}

func TestExecuteEndToEnd(t *testing.T) {
	tables := mapSource{
		"encounters.csv": {
			{Target: mustTarget(t, "1-3"), Text: "goblin patrol"},
			{Target: mustTarget(t, "4-6"), Text: "wandering merchant"},
		},
	}
	sink := &captureSink{}
	c, err := New(tables, nil, engine.WithDice(engine.NewSeededDice(7)), engine.WithSink(sink))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	source := "load table \"encounters.csv\"\n" +
		"procedure day\n" +
		"    set-fact \"day begun\"\n" +
		"    roll on table \"encounters.csv\"\n" +
		"end\n" +
		"day\n"
	in, err := c.Execute(source)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if in.State() != engine.StateDone {
		t.Fatalf("state = %v, want StateDone", in.State())
	}
	if !in.Facts().Contains("day begun", engine.Ephemeral) {
		t.Fatal("expected fact: day begun")
	}
	if len(sink.events) != 1 || sink.events[0].Kind != engine.EventTableRoll {
		t.Fatalf("events = %v, want one table roll", sink.events)
	}
	if text := sink.events[0].Text; text != "goblin patrol" && text != "wandering merchant" {
		t.Fatalf("sampled %q, not an entry of the table", text)
	}
}

func TestExecuteSyntaxError(t *testing.T) {
	c, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in, err := c.Execute("procedure day\nend\n")
	var syn *engine.SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("Execute error = %v, want SyntaxError", err)
	}
	if in != nil {
		t.Fatal("no interpreter should exist for an unparsable program")
	}
}

func TestExecuteReturnsInterpreterOnRunFailure(t *testing.T) {
	c, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in, err := c.Execute("set-fact \"before\"\nnonesuch\n")
	var res *engine.ResolutionError
	if !errors.As(err, &res) {
		t.Fatalf("Execute error = %v, want ResolutionError", err)
	}
	if in == nil {
		t.Fatal("interpreter should be returned for inspection")
	}
	if in.State() != engine.StateFailed {
		t.Fatalf("state = %v, want StateFailed", in.State())
	}
	if !in.Facts().Contains("before", engine.Ephemeral) {
		t.Fatal("facts set before the failure should be inspectable")
	}
}

func TestRunsAreIndependent(t *testing.T) {
	c, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Execute("set-fact \"first run\"\n"); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	in, err := c.Execute("if fact? \"first run\" => set-fact \"leaked\"\n")
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if in.Facts().Contains("leaked", engine.Ephemeral) {
		t.Fatal("ephemeral facts must not cross runs")
	}
}
