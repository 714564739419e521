package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nameplate-cli/internal/fields"
	"github.com/sells-group/nameplate-cli/internal/model"
	"github.com/sells-group/nameplate-cli/internal/ocr"
	"github.com/sells-group/nameplate-cli/internal/pipeline"
	"github.com/sells-group/nameplate-cli/internal/store"
)

// serviceEnv holds the field registry, optional store and pipeline service
// used by the extract/text/batch/serve commands.
type serviceEnv struct {
	Fields  *model.FieldRegistry
	Store   store.Store // nil unless persistence was requested
	Service *pipeline.Service
}

// Close releases resources held by the environment.
func (e *serviceEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens and migrates the configured run store.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	return store.New(ctx, cfg.Store)
}

// initFields loads the configured fields, or the built-in nameplate fields.
func initFields() (*model.FieldRegistry, error) {
	return fields.Load(cfg.Fields.Path)
}

// initService validates cfg for mode ("text" skips OCR setup), loads fields,
// and opens the store when persist is set. Callers should defer env.Close().
func initService(ctx context.Context, mode string, persist bool) (*serviceEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	reg, err := initFields()
	if err != nil {
		return nil, err
	}

	var ext ocr.Extractor
	if mode != "text" {
		ext, err = ocr.NewExtractor(cfg.OCR)
		if err != nil {
			return nil, eris.Wrap(err, "init ocr")
		}
	}

	env := &serviceEnv{Fields: reg}
	if persist {
		st, err := store.New(ctx, cfg.Store)
		if err != nil {
			return nil, eris.Wrap(err, "init store")
		}
		env.Store = st
	}

	env.Service = pipeline.New(ext, reg, env.Store)
	return env, nil
}
