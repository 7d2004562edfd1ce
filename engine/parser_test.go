package engine

import (
	"errors"
	"testing"
)

func mustParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func mustParse(t *testing.T, source string) *Program {
	t.Helper()
	prog, err := mustParser(t).Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return prog
}

func TestParseProcedureCall(t *testing.T) {
	prog := mustParse(t, "proc-name\n")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	call := prog.Statements[0].Call
	if call == nil || call.Name != "proc-name" {
		t.Fatalf("expected call to proc-name, got %+v", prog.Statements[0])
	}
}

func TestParseLoadTable(t *testing.T) {
	prog := mustParse(t, "load table \"weather.csv\"\n")
	load := prog.Statements[0].Load
	if load == nil || load.Name != "weather.csv" {
		t.Fatalf("expected load table weather.csv, got %+v", prog.Statements[0])
	}
}

func TestParseProcedureDecl(t *testing.T) {
	source := "procedure day\n    other-proc\nend\n"
	prog := mustParse(t, source)
	proc := prog.Statements[0].Proc
	if proc == nil {
		t.Fatalf("expected procedure declaration, got %+v", prog.Statements[0])
	}
	if proc.Name != "day" {
		t.Fatalf("procedure name = %q, want day", proc.Name)
	}
	if len(proc.Body) != 1 || proc.Body[0].Call == nil || proc.Body[0].Call.Name != "other-proc" {
		t.Fatalf("unexpected body: %+v", proc.Body)
	}
}

func TestParseIfThenDiceCheck(t *testing.T) {
	prog := mustParse(t, "if roll 1-3 on 1d6 + 1 => set-fact \"party is lost\"\n")
	st := prog.Statements[0].If
	if st == nil {
		t.Fatalf("expected if statement, got %+v", prog.Statements[0])
	}
	dc := st.Antecedent.DiceCheck
	if dc == nil {
		t.Fatalf("expected dice check antecedent, got %+v", st.Antecedent)
	}
	target, err := dc.Target.RollTarget()
	if err != nil {
		t.Fatalf("RollTarget: %v", err)
	}
	if target.Min != 1 || target.Max != 3 {
		t.Fatalf("target = %+v, want 1-3", target)
	}
	spec, err := dc.Roll.Specifier()
	if err != nil {
		t.Fatalf("Specifier: %v", err)
	}
	if spec != (RollSpecifier{Count: 1, Sides: 6, Modifier: 1}) {
		t.Fatalf("specifier = %+v, want 1d6 + 1", spec)
	}
	fs := st.Consequent.SetFact
	if fs == nil || fs.Text != "party is lost" {
		t.Fatalf("unexpected consequent: %+v", st.Consequent)
	}
}

func TestParseIfThenFactCheckCallsProcedure(t *testing.T) {
	prog := mustParse(t, "if fact? \"day has random encounter\" => encounter\n")
	st := prog.Statements[0].If
	if st == nil || st.Antecedent.Fact == nil {
		t.Fatalf("expected fact check, got %+v", prog.Statements[0])
	}
	if *st.Antecedent.Fact != "day has random encounter" {
		t.Fatalf("fact = %q", *st.Antecedent.Fact)
	}
	if st.Consequent.Call == nil || *st.Consequent.Call != "encounter" {
		t.Fatalf("expected procedure call consequent, got %+v", st.Consequent)
	}
}

func TestParseNegativeModifier(t *testing.T) {
	prog := mustParse(t, "if roll 2 on 2d6 - 1 => reminder \"snake eyes\"\n")
	spec, err := prog.Statements[0].If.Antecedent.DiceCheck.Roll.Specifier()
	if err != nil {
		t.Fatalf("Specifier: %v", err)
	}
	if spec.Modifier != -1 {
		t.Fatalf("modifier = %d, want -1", spec.Modifier)
	}
}

func TestParseMatchingRoll(t *testing.T) {
	source := "roll 2d6 + 1\n" +
		"    2-6 => reminder \"a quiet stretch\"\n" +
		"    7 => set-fact \"weather turns\"\n" +
		"    8-13 => roll on table \"weather.csv\"\n" +
		"end\n"
	prog := mustParse(t, source)
	rs := prog.Statements[0].Roll
	if rs == nil || rs.Match == nil {
		t.Fatalf("expected matching roll, got %+v", prog.Statements[0])
	}
	spec, err := rs.Match.Roll.Specifier()
	if err != nil {
		t.Fatalf("Specifier: %v", err)
	}
	if spec != (RollSpecifier{Count: 2, Sides: 6, Modifier: 1}) {
		t.Fatalf("specifier = %+v", spec)
	}
	if len(rs.Match.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(rs.Match.Arms))
	}
	if rs.Match.Arms[1].Consequent.SetFact == nil {
		t.Fatalf("arm 1 consequent = %+v", rs.Match.Arms[1].Consequent)
	}
	last := rs.Match.Arms[2].Consequent
	if last.TableRoll == nil || *last.TableRoll != "weather.csv" {
		t.Fatalf("arm 2 consequent = %+v", last)
	}
}

func TestParseTableRollStatement(t *testing.T) {
	prog := mustParse(t, "roll on table \"encounters.csv\"\n")
	rs := prog.Statements[0].Roll
	if rs == nil || rs.Table == nil || *rs.Table != "encounters.csv" {
		t.Fatalf("expected table roll, got %+v", prog.Statements[0])
	}
}

func TestParseFormatString(t *testing.T) {
	prog := mustParse(t, "set-fact \"distance {} terrain {}\" % roll 1d6 % roll on table \"terrain.csv\"\n")
	fs := prog.Statements[0].Act.SetFact
	if fs == nil {
		t.Fatalf("expected set-fact, got %+v", prog.Statements[0])
	}
	if fs.Placeholders() != 2 || len(fs.Clauses) != 2 {
		t.Fatalf("placeholders = %d, clauses = %d", fs.Placeholders(), len(fs.Clauses))
	}
	if fs.Clauses[0].Dice == nil {
		t.Fatalf("clause 0 = %+v, want dice roll", fs.Clauses[0])
	}
	if fs.Clauses[1].Table == nil || *fs.Clauses[1].Table != "terrain.csv" {
		t.Fatalf("clause 1 = %+v, want table roll", fs.Clauses[1])
	}
}

func TestParseMissingEnd(t *testing.T) {
	_, err := mustParser(t).Parse("procedure day\n    reminder \"eat\"\n")
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("Parse error = %v, want SyntaxError", err)
	}
}

func TestParseBadStatement(t *testing.T) {
	_, err := mustParser(t).Parse("on table \"weather.csv\"\n")
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("Parse error = %v, want SyntaxError", err)
	}
}
