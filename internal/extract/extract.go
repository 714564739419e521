// Package extract pulls named field values out of noisy, line-oriented OCR
// text. Everything here is pure: no I/O, no logging and no shared state, so
// the functions may be called concurrently with shared specs.
package extract

import "github.com/sells-group/nameplate-cli/internal/model"

// Extract normalizes raw once and matches every spec against the same
// lines. Matching never consumes a line, so one line can satisfy several
// fields. The result holds one entry per spec in spec order; the returned
// string is its summary.
func Extract(specs []model.FieldSpec, raw string) (model.Result, string) {
	lines := Normalize(raw)

	res := model.Result{Fields: make([]model.FieldResult, 0, len(specs))}
	for _, spec := range specs {
		res.Fields = append(res.Fields, model.FieldResult{
			Key:        spec.Key,
			FieldValue: Match(spec, lines),
		})
	}
	return res, res.Summary()
}

// ExtractRegistry runs Extract over a validated registry.
func ExtractRegistry(reg *model.FieldRegistry, raw string) (model.Result, string) {
	return Extract(reg.Specs(), raw)
}
