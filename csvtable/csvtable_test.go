package csvtable

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, name, content string) *Dir {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return New(dir)
}

func TestReadTable(t *testing.T) {
	src := writeTable(t, "encounters.csv", "1-3,goblins\n4,orcs\n5-6, dragon\n")

	rows, err := src.ReadTable("encounters.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := []struct {
		min, max int
		text     string
	}{
		{1, 3, "goblins"},
		{4, 4, "orcs"},
		{5, 6, "dragon"},
	}
	for i, w := range want {
		r := rows[i]
		if r.Target.Min != w.min || r.Target.Max != w.max || r.Text != w.text {
			t.Fatalf("row %d = %+v, want %+v", i, r, w)
		}
	}
}

func TestReadTableBadTarget(t *testing.T) {
	src := writeTable(t, "bad.csv", "goblins,1-3\n")
	if _, err := src.ReadTable("bad.csv"); err == nil {
		t.Fatal("expected error for a non-numeric target")
	}
}

func TestReadTableWrongFieldCount(t *testing.T) {
	src := writeTable(t, "wide.csv", "1-3,goblins,extra\n")
	if _, err := src.ReadTable("wide.csv"); err == nil {
		t.Fatal("expected error for a three-field record")
	}
}

func TestReadTableMissingFile(t *testing.T) {
	src := New(t.TempDir())
	if _, err := src.ReadTable("nonesuch.csv"); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
