package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/nameplate-cli/internal/model"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spec  model.FieldSpec
		lines []string
		want  model.FieldValue
	}{
		{
			name:  "inline value after colon",
			spec:  model.FieldSpec{Key: "Model Name", Patterns: []string{"model"}},
			lines: []string{"Model: Acme X200"},
			want:  model.Found("Acme X200"),
		},
		{
			name:  "interior hyphens kept",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"s/n"}},
			lines: []string{"S/N: 99-AB-221"},
			want:  model.Found("99-AB-221"),
		},
		{
			name:  "pipe inside the value removed",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"serial"}},
			lines: []string{"Serial: 12|34"},
			want:  model.Found("1234"),
		},
		{
			name:  "equals inside the value removed",
			spec:  model.FieldSpec{Key: "Model Name", Patterns: []string{"model name"}},
			lines: []string{"Model Name: A = B"},
			want:  model.Found("A  B"),
		},
		{
			name:  "colon inside the value removed",
			spec:  model.FieldSpec{Key: "Model Number", Patterns: []string{"model number"}},
			lines: []string{"Model Number: RX:9"},
			want:  model.Found("RX9"),
		},
		{
			name:  "dangling hyphens removed",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"serial"}},
			lines: []string{"Serial - 4471 -"},
			want:  model.Found("4471"),
		},
		{
			name:  "hyphen next to space removed",
			spec:  model.FieldSpec{Key: "Model Number", Patterns: []string{"model no"}},
			lines: []string{"Model No. = AF-3000 - XL"},
			want:  model.Found(".  AF-3000  XL"),
		},
		{
			name:  "case insensitive",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"SERIAL NO"}},
			lines: []string{"serial no = 4471"},
			want:  model.Found("4471"),
		},
		{
			name:  "all separators trimmed",
			spec:  model.FieldSpec{Key: "Model Number", Patterns: []string{"model number"}},
			lines: []string{"| Model Number :=- MX-4410 |"},
			want:  model.Found("MX-4410"),
		},
		{
			name:  "every occurrence of the pattern removed",
			spec:  model.FieldSpec{Key: "Model Name", Patterns: []string{"model"}},
			lines: []string{"MODEL Acme model"},
			want:  model.Found("Acme"),
		},
		{
			name:  "next line fallback",
			spec:  model.FieldSpec{Key: "Model Number", Patterns: []string{"model number"}},
			lines: []string{"Model Number", "MX-4410"},
			want:  model.Found("MX-4410"),
		},
		{
			name:  "fallback after separators only",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"serial"}},
			lines: []string{"Serial : |", "SN 0042 | batch 7"},
			want:  model.Found("SN 0042 | batch 7"),
		},
		{
			name:  "no next line",
			spec:  model.FieldSpec{Key: "Model Number", Patterns: []string{"model number"}},
			lines: []string{"header", "Model Number:"},
			want:  model.NotFound(),
		},
		{
			name:  "no match",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"serial", "s/n"}},
			lines: []string{"Random text only"},
			want:  model.NotFound(),
		},
		{
			name:  "empty lines",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"serial"}},
			lines: nil,
			want:  model.NotFound(),
		},
		{
			name:  "earliest line wins over pattern priority",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"serial number", "s/n"}},
			lines: []string{"S/N 111", "Serial Number 222"},
			want:  model.Found("111"),
		},
		{
			name:  "pattern priority within a line",
			spec:  model.FieldSpec{Key: "Model Number", Patterns: []string{"model number", "model"}},
			lines: []string{"Model Number: 7"},
			want:  model.Found("7"),
		},
		{
			name:  "short alias listed first shadows the longer one",
			spec:  model.FieldSpec{Key: "Model Number", Patterns: []string{"model", "model number"}},
			lines: []string{"Model Number: 7"},
			want:  model.Found("Number 7"),
		},
		{
			name:  "substring not whole word",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"sn"}},
			lines: []string{"SNX1234"},
			want:  model.Found("X1234"),
		},
		{
			name:  "fallback line is not validated",
			spec:  model.FieldSpec{Key: "Model Name", Patterns: []string{"model name"}},
			lines: []string{"Model Name:", "~~~"},
			want:  model.Found("~~~"),
		},
		{
			name:  "non ascii runes compare exactly",
			spec:  model.FieldSpec{Key: "Serial Number", Patterns: []string{"série"}},
			lines: []string{"SÉRIE 12", "Série: 34"},
			want:  model.Found("34"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Match(tt.spec, tt.lines))
		})
	}
}

func TestMatch_DoesNotMutateLines(t *testing.T) {
	t.Parallel()

	lines := []string{"Model: X", "Serial: Y"}
	_ = Match(model.FieldSpec{Key: "Model", Patterns: []string{"model"}}, lines)
	assert.Equal(t, []string{"Model: X", "Serial: Y"}, lines)
}

func TestLowerASCII(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", lowerASCII("abc"))
	assert.Equal(t, "model no", lowerASCII("MoDeL No"))
	assert.Equal(t, "sÉrie", lowerASCII("SÉrie"))
}

func TestRemoveAll(t *testing.T) {
	t.Parallel()

	line := "Model X Model Y MODEL"
	assert.Equal(t, " X  Y ", removeAll(line, lowerASCII(line), "model"))
	assert.Equal(t, "abc", removeAll("abc", "abc", "zz"))
}
