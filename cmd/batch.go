package main

import (
	"context"
	"fmt"
	"io/fs"
	"os/signal"
	"path/filepath"
	"sort"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/nameplate-cli/internal/model"
	"github.com/sells-group/nameplate-cli/internal/ocr"
)

var (
	batchConcurrency int
	batchRecursive   bool
	batchLimit       int
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract fields from every supported file in a directory",
	Long:  "Processes images, PDFs and text files concurrently and saves each run to the configured store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService(ctx, "batch", true)
		if err != nil {
			return err
		}
		defer env.Close()

		paths, err := collectFiles(args[0], batchRecursive)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(paths) > batchLimit {
			paths = paths[:batchLimit]
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		tally, err := processBatch(ctx, paths, concurrency, env.Service.ProcessFile)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "processed %d files: %d complete, %d failed, %d fields found\n",
			tally.Total, tally.Succeeded, tally.Failed, tally.FieldsFound)
		return err
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "files processed at once (default from config)")
	batchCmd.Flags().BoolVar(&batchRecursive, "recursive", false, "descend into subdirectories")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of files to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// collectFiles lists the files under dir that an OCR extractor can read,
// sorted by path.
func collectFiles(dir string, recursive bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if ocr.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "batch: scan %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// processFunc runs one file through OCR and extraction.
type processFunc func(ctx context.Context, path string) (*model.Run, error)

// batchTally counts batch outcomes.
type batchTally struct {
	Total       int
	Succeeded   int64
	Failed      int64
	FieldsFound int64
}

// processBatch processes paths concurrently. Individual failures are counted,
// not returned; only cancellation aborts the batch.
func processBatch(ctx context.Context, paths []string, concurrency int, process processFunc) (batchTally, error) {
	tally := batchTally{Total: len(paths)}
	if len(paths) == 0 {
		zap.L().Info("no supported files found")
		return tally, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("files", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed, found atomic.Int64

	for _, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			log := zap.L().With(zap.String("path", path))

			run, err := process(gctx, path)
			if err != nil {
				failed.Add(1)
				log.Error("extraction failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			n := 0
			if run.Result != nil {
				n = run.Result.FoundCount()
			}
			found.Add(int64(n))
			log.Info("extraction complete",
				zap.String("run_id", run.ID),
				zap.Int("fields_found", n),
			)
			return nil
		})
	}

	err := g.Wait()
	tally.Succeeded = succeeded.Load()
	tally.Failed = failed.Load()
	tally.FieldsFound = found.Load()
	if err != nil {
		return tally, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", tally.Succeeded),
		zap.Int64("failed", tally.Failed),
	)
	return tally, nil
}
