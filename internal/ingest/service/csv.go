package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"golang.org/x/text/encoding"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// table is a parsed CSV file keyed by normalized header.
type table struct {
	columns map[string]int
	rows    [][]string
	lines   []int
}

// record is one data row. line is the 1-based input line the row starts on.
type record struct {
	line   int
	fields []string
	cols   map[string]int
}

func (r record) get(column string) string {
	idx, ok := r.cols[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (t table) records() []record {
	out := make([]record, 0, len(t.rows))
	for i, fields := range t.rows {
		out = append(out, record{line: t.lines[i], fields: fields, cols: t.columns})
	}
	return out
}

func (t table) require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := t.columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// readTable decodes UTF-8 or BOM-marked UTF-16 input and reads every row.
// Blank lines are skipped and short rows read as empty trailing fields.
func readTable(r io.Reader) (table, error) {
	decoder := xunicode.BOMOverride(encoding.Nop.NewDecoder())
	reader := csv.NewReader(transform.NewReader(r, decoder))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table{}, domain.ErrEmptyInput
	}
	if err != nil {
		return table{}, err
	}

	t := table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		key := normalizeColumn(name)
		if key == "" {
			continue
		}
		if _, dup := t.columns[key]; !dup {
			t.columns[key] = i
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table{}, err
		}
		if blank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

// normalizeColumn lowercases, strips accents and snake-cases a header name.
func normalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF")))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}

	var b strings.Builder
	underscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !underscore && b.Len() > 0 {
				b.WriteRune('_')
				underscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
