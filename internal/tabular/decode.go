package tabular

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ErrEmptyTable is returned when a text has no header row or no data row.
var ErrEmptyTable = errors.New("CSV file must contain at least a header row and one data row")

// ParseError reports a data line whose column count differs from the header.
type ParseError struct {
	Line     int // 1-based line number in the source text
	Expected int
	Got      int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Row %d: Expected %d columns, got %d", e.Line, e.Expected, e.Got)
}

// Row maps field names to coerced cell values.
type Row map[string]Value

// Get returns the value for field, or null when the column is absent.
func (r Row) Get(field string) Value {
	return r[field]
}

// Table is one decoded tabular member.
type Table struct {
	Name    string   // member name, e.g. "accounts.csv"
	Headers []string // header labels as written, trimmed
	Rows    []Row
}

// HasHeader reports whether any header equals label, ignoring case.
func (t *Table) HasHeader(label string) bool {
	for _, h := range t.Headers {
		if strings.EqualFold(h, label) {
			return true
		}
	}
	return false
}

// Decode parses a CSV text into a Table.
//
// The dialect is line oriented: each physical line is one record, so quoted
// fields may contain commas and doubled quotes but not newlines. Lines may
// end in CRLF. Blank data lines are skipped, but still count toward the line
// numbers reported in a ParseError.
func Decode(name string, data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	data = sanitizeUTF8(data)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return nil, ErrEmptyTable
	}

	rawHeaders := SplitLine(strings.TrimSuffix(lines[0], "\r"))
	headers := make([]string, len(rawHeaders))
	fields := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = strings.TrimSpace(h)
		fields[i] = FieldName(headers[i])
	}

	t := &Table{Name: name, Headers: headers}
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := SplitLine(line)
		if len(cells) != len(headers) {
			return nil, &ParseError{Line: i + 1, Expected: len(headers), Got: len(cells)}
		}

		row := make(Row, len(cells))
		for j, cell := range cells {
			row[fields[j]] = Coerce(strings.TrimSpace(cell))
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// SplitLine splits one CSV line into raw cells. A double quote toggles quoted
// mode; inside quotes, two consecutive quotes produce one literal quote.
func SplitLine(line string) []string {
	var (
		cells    []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			cells = append(cells, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	return append(cells, current.String())
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with U+FFFD so exports from
// legacy spreadsheets (Windows-1252, Latin-1) still decode.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
