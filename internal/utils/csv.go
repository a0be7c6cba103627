package utils

import "strings"

// CSVRow joins fields into a single CSV line, quoting every field and
// doubling embedded double quotes. Used by the data export, which emits a
// flattened single-row file where nested arrays arrive pre-stringified as
// JSON in one cell.
func CSVRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
