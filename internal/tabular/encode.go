package tabular

import "strings"

// EncodeCell renders a single value. Strings containing a comma, a double
// quote or a newline are quoted with inner quotes doubled.
func EncodeCell(v Value) string {
	s := v.String()
	if v.IsString() && strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// Encode renders rows under an explicit ordered list of header labels. Each
// label is mapped to its field name to pick the cell out of the row; missing
// fields render empty. The header line is written as-is and every line,
// including the last, ends in "\n".
func Encode(headers []string, rows []Row) []byte {
	var b strings.Builder

	b.WriteString(strings.Join(headers, ","))
	b.WriteByte('\n')

	fields := make([]string, len(headers))
	for i, h := range headers {
		fields[i] = FieldName(h)
	}

	for _, row := range rows {
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EncodeCell(row.Get(f)))
		}
		b.WriteByte('\n')
	}

	return []byte(b.String())
}
