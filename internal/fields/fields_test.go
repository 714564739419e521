package fields

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nameplate-cli/internal/extract"
	"github.com/sells-group/nameplate-cli/internal/model"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	reg := Defaults()
	assert.Equal(t, []string{KeyModelName, KeyModelNumber, KeySerialNumber}, reg.Keys())
	for _, s := range reg.Specs() {
		assert.GreaterOrEqual(t, len(s.Patterns), 2, s.Key)
		assert.LessOrEqual(t, len(s.Patterns), 4, s.Key)
	}
}

func TestDefaults_LongerAliasesFirst(t *testing.T) {
	t.Parallel()

	for _, s := range DefaultSpecs() {
		for i, short := range s.Patterns {
			for _, long := range s.Patterns[i+1:] {
				assert.NotContains(t, long, short, "%s: %q shadows %q", s.Key, short, long)
			}
		}
	}
}

func TestDefaults_Nameplate(t *testing.T) {
	t.Parallel()

	raw := "Model Name: Compressor K2\nModel No: K2-100\nS/N: 7781-QX"
	res, _ := extract.ExtractRegistry(Defaults(), raw)
	assert.Equal(t, map[string]string{
		KeyModelName:    "Compressor K2",
		KeyModelNumber:  "K2-100",
		KeySerialNumber: "7781-QX",
	}, res.Map())
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Parallel()

	reg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Keys(), reg.Keys())
}

func TestLoad_FromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fields.yaml")
	yml := `
fields:
  - key: Voltage
    patterns: ["rated voltage", "voltage", "volts"]
  - key: Serial Number
    patterns: ["serial", "s/n"]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Voltage", "Serial Number"}, reg.Keys())
	assert.Equal(t, []string{"rated voltage", "voltage", "volts"}, reg.ByKey("Voltage").Patterns)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yml  string
		want string
	}{
		{"malformed", "fields: [", "parse config"},
		{"no fields", "fields: []", "no fields configured"},
		{"empty patterns", "fields:\n  - key: Serial Number\n    patterns: []", "no patterns"},
		{"missing key", "fields:\n  - patterns: [x]", "empty key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_InvalidIsSpecError(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("fields:\n  - key: Serial Number"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidFieldSpec))
}
