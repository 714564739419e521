package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/nameplate-cli/internal/model"
)

var exportTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testRuns() []model.Run {
	return []model.Run{
		{
			ID:     "run-1",
			Source: "a.png",
			Status: model.RunStatusComplete,
			Result: &model.Result{Fields: []model.FieldResult{
				{Key: "Model Name", FieldValue: model.Found("ProCool")},
				{Key: "Serial Number", FieldValue: model.NotFound()},
			}},
			UpdatedAt: exportTime,
		},
		{
			ID:     "run-2",
			Source: "b.pdf",
			Status: model.RunStatusFailed,
			Error:  "ocr: pdftotext failed",
		},
		{
			ID:     "run-3",
			Source: "c.txt",
			Status: model.RunStatusComplete,
			Result: &model.Result{Fields: []model.FieldResult{
				{Key: "Serial Number", FieldValue: model.Found("SN-1")},
				{Key: "Voltage", FieldValue: model.Found("230V")},
			}},
			UpdatedAt: exportTime,
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"csv", FormatCSV, true},
		{"xlsx", FormatXLSX, true},
		{"txt", FormatText, true},
		{"json", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestFieldKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"Model Name", "Serial Number", "Voltage"}, FieldKeys(testRuns()))
	assert.Empty(t, FieldKeys(nil))
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testRuns()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"run_id", "source", "field", "value", "found", "extracted_at"}, records[0])
	assert.Equal(t, []string{"run-1", "a.png", "Model Name", "ProCool", "true", "2026-03-14T09:30:00Z"}, records[1])
	assert.Equal(t, []string{"run-1", "a.png", "Serial Number", "", "false", "2026-03-14T09:30:00Z"}, records[2])
	assert.Equal(t, "run-3", records[3][0])
	assert.Equal(t, "230V", records[4][3])
}

func TestWriteCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "run_id,source,field,value,found,extracted_at\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testRuns()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := f.Sheet[runsSheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	cells := func(r *xlsx.Row) []string {
		out := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			out[i] = c.Value
		}
		return out
	}

	assert.Equal(t,
		[]string{"Run ID", "Source", "Extracted At", "Model Name", "Serial Number", "Voltage"},
		cells(sheet.Rows[0]),
	)

	first := cells(sheet.Rows[1])
	assert.Equal(t, "run-1", first[0])
	assert.Equal(t, []string{"ProCool", model.NotFoundLabel, model.NotFoundLabel}, first[3:])

	second := cells(sheet.Rows[2])
	assert.Equal(t, "run-3", second[0])
	assert.Equal(t, []string{model.NotFoundLabel, "SN-1", "230V"}, second[3:])
}

func TestWriteSummaries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummaries(&buf, testRuns()))

	want := "[a.png]\nModel Name: ProCool\nSerial Number: Not found\n" +
		"\n[b.pdf]\nerror: ocr: pdftotext failed\n" +
		"\n[c.txt]\nSerial Number: SN-1\nVoltage: 230V\n"
	assert.Equal(t, want, buf.String())
}
