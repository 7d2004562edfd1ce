// Package csvtable reads crawl tables from CSV files.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"crawl/engine"
)

// Dir serves tables from CSV files under a root directory; the table
// identifier in a load table directive is the file name. It implements
// engine.TableSource. Each record is `target,text` where target is a
// single value or an inclusive lo-hi range.
type Dir struct {
	root string
}

// New builds a source rooted at dir.
func New(dir string) *Dir {
	return &Dir{root: dir}
}

// ReadTable parses the named CSV file into table rows, in file order.
func (d *Dir) ReadTable(name string) ([]engine.TableRow, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.Clean(name)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	rows := make([]engine.TableRow, 0, len(records))
	for i, rec := range records {
		target, err := engine.ParseRollTarget(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", name, i+1, err)
		}
		rows = append(rows, engine.TableRow{Target: target, Text: strings.TrimSpace(rec[1])})
	}
	return rows, nil
}
