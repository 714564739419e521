// Package fields provides the field configuration the extraction engine
// matches against: built-in nameplate defaults or a YAML file.
package fields

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/nameplate-cli/internal/model"
)

// Keys of the built-in fields.
const (
	KeyModelName    = "Model Name"
	KeyModelNumber  = "Model Number"
	KeySerialNumber = "Serial Number"
)

// DefaultSpecs returns the built-in nameplate fields. Longer aliases precede
// the shorter aliases they contain.
func DefaultSpecs() []model.FieldSpec {
	return []model.FieldSpec{
		{Key: KeyModelName, Patterns: []string{"model name", "product name", "name"}},
		{Key: KeyModelNumber, Patterns: []string{"model number", "model no", "model #", "mdl"}},
		{Key: KeySerialNumber, Patterns: []string{"serial number", "serial no", "s/n", "sn"}},
	}
}

// Defaults returns the built-in fields as a registry.
func Defaults() *model.FieldRegistry {
	return model.MustFieldRegistry(DefaultSpecs())
}

// File is the on-disk layout of a field configuration.
type File struct {
	Fields []model.FieldSpec `json:"fields" yaml:"fields"`
}

// Load reads a field configuration from a YAML file. An empty path yields
// the defaults. Invalid specs fail here, before any extraction runs.
func Load(path string) (*model.FieldRegistry, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fields: read config %s", path)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "fields: load %s", path)
	}

	zap.L().Debug("fields: loaded configuration",
		zap.String("path", path),
		zap.Strings("keys", reg.Keys()),
	)
	return reg, nil
}

// Parse decodes and validates a YAML field configuration.
func Parse(data []byte) (*model.FieldRegistry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "fields: parse config")
	}
	if len(f.Fields) == 0 {
		return nil, eris.Wrap(model.ErrInvalidFieldSpec, "fields: no fields configured")
	}
	return model.NewFieldRegistry(f.Fields)
}
