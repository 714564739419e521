// Package export renders stored runs as CSV, XLSX or plain-text summaries.
package export

import "github.com/sells-group/nameplate-cli/internal/model"

// Format names an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatText Format = "txt"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatCSV, FormatXLSX, FormatText:
		return f, true
	}
	return "", false
}

// FieldKeys returns the union of field keys across runs, in first-seen order.
func FieldKeys(runs []model.Run) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range runs {
		if r.Result == nil {
			continue
		}
		for _, f := range r.Result.Fields {
			if !seen[f.Key] {
				seen[f.Key] = true
				keys = append(keys, f.Key)
			}
		}
	}
	return keys
}
