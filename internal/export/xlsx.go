package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/nameplate-cli/internal/model"
)

const runsSheet = "Runs"

// WriteXLSX writes a workbook with one row per run and one column per field
// key. Runs without a result are skipped.
func WriteXLSX(w io.Writer, runs []model.Run) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(runsSheet)
	if err != nil {
		return eris.Wrap(err, "export: xlsx add sheet")
	}

	keys := FieldKeys(runs)

	header := sheet.AddRow()
	for _, h := range append([]string{"Run ID", "Source", "Extracted At"}, keys...) {
		header.AddCell().SetString(h)
	}

	for _, r := range runs {
		if r.Result == nil {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.Source)
		row.AddCell().SetDateTime(r.UpdatedAt.UTC())
		for _, k := range keys {
			v, _ := r.Result.Get(k)
			row.AddCell().SetString(v.String())
		}
	}

	return eris.Wrap(f.Write(w), "export: xlsx write")
}
