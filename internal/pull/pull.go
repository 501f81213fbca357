// Package pull refreshes the cached dataset exports.
package pull

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"chidata/internal/datasource/file"
	"chidata/internal/logging"
)

// Downloader fetches url into w. *httpds.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Dataset is one export to mirror into Dir.
type Dataset struct {
	Name string
	URL  string
	File string
}

// Result describes one dataset's outcome.
type Result struct {
	Dataset Dataset
	Path    string
	Bytes   int64
	Elapsed time.Duration
	Err     error
}

// Pull downloads every dataset with a URL concurrently into dir. A failed
// download leaves any previously cached file in place; failures are joined
// into the returned error while the per-dataset results are always returned.
func Pull(ctx context.Context, d Downloader, dir string, sets []Dataset) ([]Result, error) {
	results := make([]Result, len(sets))
	var g errgroup.Group
	for i, ds := range sets {
		results[i] = Result{Dataset: ds, Path: filepath.Join(dir, ds.File)}
		if ds.URL == "" {
			logging.Info().Str("dataset", ds.Name).Msg("pull: no url, skipping")
			continue
		}
		g.Go(func() error {
			res := &results[i]
			start := time.Now()
			res.Err = file.NewLocal(res.Path).Replace(func(w io.Writer) error {
				n, err := d.Download(ctx, ds.URL, w)
				res.Bytes = n
				return err
			})
			res.Elapsed = time.Since(start)
			if res.Err != nil {
				res.Err = fmt.Errorf("pull %s: %w", ds.Name, res.Err)
				logging.Error().Err(res.Err).Str("dataset", ds.Name).Msg("pull: failed")
				return nil
			}
			logging.Info().
				Str("dataset", ds.Name).
				Str("path", res.Path).
				Int64("bytes", res.Bytes).
				Dur("elapsed", res.Elapsed).
				Msg("pull: done")
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
