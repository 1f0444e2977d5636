package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadOptions controls input validation.
type ReadOptions struct {
	// RequireRows turns a header-only table into ErrEmptyInput.
	RequireRows bool
}

// ReadFile opens path and reads it with ReadCSV.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	t, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses a trace table. The whole table is validated before it is
// returned, so a schema error never yields a partial table.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Column: ColX, Row: -1, Reason: "missing header"}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrSchema, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	cols := [3]int{}
	for i, name := range []string{ColX, ColC, ColH} {
		j, ok := idx[name]
		if !ok {
			return nil, &SchemaError{Column: name, Row: -1, Reason: "missing required column"}
		}
		cols[i] = j
	}

	t := &Table{Header: header}
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrSchema, row, err)
		}
		var vals [3]int64
		for k, name := range []string{ColX, ColC, ColH} {
			v, err := ParseCell(name, row, rec[cols[k]])
			if err != nil {
				return nil, err
			}
			vals[k] = v
		}
		t.Records = append(t.Records, rec)
		t.X = append(t.X, vals[0])
		t.C = append(t.C, vals[1])
		t.H = append(t.H, vals[2])
	}

	if t.Len() == 0 && opts.RequireRows {
		return nil, ErrEmptyInput
	}
	return t, nil
}
