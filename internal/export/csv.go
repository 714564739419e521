package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/nameplate-cli/internal/model"
)

// fieldRow is one extracted field of one run.
type fieldRow struct {
	RunID       string    `csv:"run_id"`
	Source      string    `csv:"source"`
	Field       string    `csv:"field"`
	Value       string    `csv:"value"`
	Found       bool      `csv:"found"`
	ExtractedAt time.Time `csv:"extracted_at"`
}

// WriteCSV writes one row per run and field. Runs without a result are
// skipped. The header is written even when there are no rows.
func WriteCSV(w io.Writer, runs []model.Run) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(fieldRow{}); err != nil {
		return eris.Wrap(err, "export: csv header")
	}

	for _, r := range runs {
		if r.Result == nil {
			continue
		}
		for _, f := range r.Result.Fields {
			row := fieldRow{
				RunID:       r.ID,
				Source:      r.Source,
				Field:       f.Key,
				Value:       f.Value,
				Found:       f.Found,
				ExtractedAt: r.UpdatedAt.UTC(),
			}
			if err := enc.Encode(row); err != nil {
				return eris.Wrapf(err, "export: csv row %s/%s", r.ID, f.Key)
			}
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: csv flush")
}
