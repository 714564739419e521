package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() Result {
	return Result{Fields: []FieldResult{
		{Key: "Model Name", FieldValue: Found("Acme X200")},
		{Key: "Model Number", FieldValue: NotFound()},
		{Key: "Serial Number", FieldValue: Found("99-AB-221")},
	}}
}

func TestFieldValue_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "MX-4410", Found("MX-4410").String())
	assert.Equal(t, NotFoundLabel, NotFound().String())
}

func TestResult_Summary(t *testing.T) {
	t.Parallel()
	want := "Model Name: Acme X200\nModel Number: Not found\nSerial Number: 99-AB-221"
	assert.Equal(t, want, sampleResult().Summary())
}

func TestResult_SummaryEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Result{}.Summary())
}

func TestResult_Get(t *testing.T) {
	t.Parallel()
	r := sampleResult()

	v, ok := r.Get("Serial Number")
	require.True(t, ok)
	assert.Equal(t, Found("99-AB-221"), v)

	v, ok = r.Get("Model Number")
	require.True(t, ok)
	assert.False(t, v.Found)

	_, ok = r.Get("Voltage")
	assert.False(t, ok)
}

func TestResult_MapAndCount(t *testing.T) {
	t.Parallel()
	r := sampleResult()
	assert.Equal(t, map[string]string{
		"Model Name":    "Acme X200",
		"Serial Number": "99-AB-221",
	}, r.Map())
	assert.Equal(t, 2, r.FoundCount())
}

func TestResult_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":[
		{"key":"Model Name","value":"Acme X200","found":true},
		{"key":"Model Number","found":false},
		{"key":"Serial Number","value":"99-AB-221","found":true}
	]}`, string(data))
}

func TestRun_Summary(t *testing.T) {
	t.Parallel()

	r := &Run{ID: "run-1", Status: RunStatusFailed}
	assert.Empty(t, r.Summary())

	res := sampleResult()
	r.Result = &res
	assert.Contains(t, r.Summary(), "Serial Number: 99-AB-221")
}

func TestRunStatusValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status RunStatus
		want   string
	}{
		{RunStatusPending, "pending"},
		{RunStatusComplete, "complete"},
		{RunStatusFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}
