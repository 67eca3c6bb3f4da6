package csvstmt

import "strings"

// splitLines splits content on CR/LF, trims each line and drops blank ones.
func splitLines(content string) []string {
	raw := strings.FieldsFunc(content, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// splitFields splits one line on commas, honoring double quotes.
// Inside a quoted field "" is a literal quote. Fields are trimmed.
func splitFields(line string) []string {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuote && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

// splitRows turns raw content into trimmed rows of cells.
func splitRows(content string) [][]string {
	lines := splitLines(strings.TrimPrefix(content, "\ufeff"))
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = splitFields(l)
	}
	return rows
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
