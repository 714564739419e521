// Package pipeline runs a document through OCR and field extraction and
// records the outcome as a run.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nameplate-cli/internal/extract"
	"github.com/sells-group/nameplate-cli/internal/fields"
	"github.com/sells-group/nameplate-cli/internal/model"
	"github.com/sells-group/nameplate-cli/internal/ocr"
	"github.com/sells-group/nameplate-cli/internal/store"
)

// Service wires OCR, the field registry and the optional run store.
// A nil Fields selects the built-in nameplate fields. A nil Store disables
// persistence; runs are still returned.
type Service struct {
	OCR    ocr.Extractor
	Fields *model.FieldRegistry
	Store  store.Store
}

// New creates a Service.
func New(ext ocr.Extractor, fields *model.FieldRegistry, st store.Store) *Service {
	return &Service{OCR: ext, Fields: fields, Store: st}
}

// ProcessFile recognizes the text in path and extracts the configured fields.
// When OCR fails the run is marked failed, extraction is skipped, and the
// failed run is returned together with the error.
func (s *Service) ProcessFile(ctx context.Context, path string) (*model.Run, error) {
	return s.ProcessFileAs(ctx, path, path)
}

// ProcessFileAs is ProcessFile with the run labeled source instead of path,
// for uploads spooled to temporary files.
func (s *Service) ProcessFileAs(ctx context.Context, source, path string) (*model.Run, error) {
	if s.OCR == nil {
		return nil, eris.New("pipeline: no OCR extractor configured")
	}
	log := zap.L().With(zap.String("source", source))

	run, err := s.createRun(ctx, source)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := s.OCR.ExtractText(ctx, path)
	if err != nil {
		log.Error("pipeline: ocr failed",
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err),
		)
		s.fail(ctx, run, err)
		return run, eris.Wrapf(err, "pipeline: ocr %s", source)
	}
	log.Debug("pipeline: ocr complete",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("chars", len(raw)),
	)

	if err := s.complete(ctx, run, raw); err != nil {
		return run, err
	}
	return run, nil
}

// ProcessText extracts the configured fields from raw text that is already
// available. source labels the run.
func (s *Service) ProcessText(ctx context.Context, source, raw string) (*model.Run, error) {
	run, err := s.createRun(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := s.complete(ctx, run, raw); err != nil {
		return run, err
	}
	return run, nil
}

func (s *Service) createRun(ctx context.Context, source string) (*model.Run, error) {
	if s.Store == nil {
		now := time.Now().UTC()
		return &model.Run{
			Source:    source,
			Status:    model.RunStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	run, err := s.Store.CreateRun(ctx, source)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	return run, nil
}

func (s *Service) complete(ctx context.Context, run *model.Run, raw string) error {
	reg := s.Fields
	if reg == nil {
		reg = fields.Defaults()
	}
	result, _ := extract.ExtractRegistry(reg, raw)

	run.RawText = raw
	run.Result = &result

	if s.Store != nil {
		if err := s.Store.CompleteRun(ctx, run.ID, raw, result); err != nil {
			err = eris.Wrap(err, "pipeline: save result")
			s.fail(ctx, run, err)
			return err
		}
	}

	run.Status = model.RunStatusComplete
	run.UpdatedAt = time.Now().UTC()

	zap.L().Info("pipeline: extraction complete",
		zap.String("source", run.Source),
		zap.String("run_id", run.ID),
		zap.Int("found", result.FoundCount()),
		zap.Int("fields", len(result.Fields)),
	)
	return nil
}

func (s *Service) fail(ctx context.Context, run *model.Run, cause error) {
	run.Status = model.RunStatusFailed
	run.Error = cause.Error()
	run.UpdatedAt = time.Now().UTC()

	if s.Store == nil {
		return
	}
	if err := s.Store.FailRun(ctx, run.ID, run.Error); err != nil {
		zap.L().Warn("pipeline: failed to record failure",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
	}
}
