package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"chidata/internal/datasource"
	"chidata/internal/datasource/file"
	"chidata/internal/datasource/httpds"
	"chidata/internal/decompose"
	"chidata/internal/logging"
	"chidata/internal/parser"
	"chidata/internal/parser/csv"
	"chidata/internal/progress"
	"chidata/internal/pull"
	"chidata/internal/records"
)

func (a *app) pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Download the license and inspection exports into data_dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.pull(cmd.Context())
		},
	}
}

func (a *app) loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Rebuild the target schema from the cached exports",
		Long: `Drop and recreate every table, decompose the licenses export and then the
inspections export, prune rows whose references cannot resolve and vacuum.
The cached CSV files must exist; run 'chidata pull' first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Context())
		},
	}
	cmd.Flags().Bool("no-vacuum", false, "skip the vacuum after pruning")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Pull fresh exports, then load them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.pull(cmd.Context()); err != nil {
				return err
			}
			return a.load(cmd.Context())
		},
	}
	cmd.Flags().Bool("no-vacuum", false, "skip the vacuum after pruning")
	return cmd
}

func (a *app) pruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Run the pruning rules against an existing store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			repo, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			pruned, err := decompose.PruneStore(ctx, repo, a.loadOptions())
			printPruned(a.out, pruned)
			return err
		},
	}
	cmd.Flags().Bool("no-vacuum", false, "skip the vacuum after pruning")
	return cmd
}

func (a *app) datasets() []pull.Dataset {
	ds := a.cfg.Datasets
	return []pull.Dataset{
		{Name: "licenses", URL: ds.Licenses.URL, File: ds.Licenses.File},
		{Name: "inspections", URL: ds.Inspections.URL, File: ds.Inspections.File},
	}
}

func (a *app) pull(ctx context.Context) error {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	client := httpds.NewClient(httpds.Config{
		Timeout:        a.cfg.HTTP.Timeout,
		MaxRetries:     a.cfg.HTTP.MaxRetries,
		InitialBackoff: a.cfg.HTTP.InitialBackoff,
		MaxBackoff:     a.cfg.HTTP.MaxBackoff,
	})
	results, err := pull.Pull(ctx, client, a.cfg.DataDir, a.datasets())

	t := newTable(a.out, "Dataset", "Path", "Bytes", "Elapsed", "Status")
	for _, r := range results {
		status := "ok"
		switch {
		case r.Dataset.URL == "":
			status = "skipped"
		case r.Err != nil:
			status = r.Err.Error()
		}
		t.Append([]string{r.Dataset.Name, r.Path, strconv.FormatInt(r.Bytes, 10), r.Elapsed.Truncate(time.Millisecond).String(), status})
	}
	t.Render()
	return err
}

func (a *app) loadOptions() decompose.Options {
	f := a.cfg.Filters
	return decompose.Options{
		Job:          a.cfg.Job,
		Applications: a.cfg.Load.Applications,
		Vacuum:       a.cfg.Load.Vacuum,
		Filters: decompose.Filters{
			TargetState:              f.TargetState,
			ExcludedLicenseCities:    f.ExcludedLicenseCities,
			TargetCity:               f.TargetCity,
			CityMisspellings:         f.CityMisspellings,
			ExcludedFacilityKeywords: f.ExcludedFacilityKeywords,
		},
	}
}

// readInput parses both cached exports concurrently.
func (a *app) readInput(ctx context.Context) (decompose.Input, error) {
	var in decompose.Input
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range []struct {
		file string
		dst  *[]records.Record
	}{
		{a.cfg.Datasets.Licenses.File, &in.Licenses},
		{a.cfg.Datasets.Inspections.File, &in.Inspections},
	} {
		path := filepath.Join(a.cfg.DataDir, job.file)
		g.Go(func() error {
			p := csv.NewParser(csv.Options{RawHeaders: true, LazyQuotes: true})
			rs, err := readExport(gctx, file.NewLocal(path), p)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			*job.dst = rs
			return nil
		})
	}
	return in, g.Wait()
}

func readExport(ctx context.Context, src datasource.Source, p parser.Parser) ([]records.Record, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (run 'chidata pull' first)", err)
		}
		return nil, err
	}
	defer rc.Close()

	rs, skipped, err := p.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	logging.Info().Int("rows", len(rs)).Int("skipped", skipped).Msg("parsed export")
	return rs, nil
}

// load runs decompose.Load in a background goroutine while a progress
// reporter prints elapsed time.
func (a *app) load(ctx context.Context) error {
	in, err := a.readInput(ctx)
	if err != nil {
		return err
	}
	repo, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	type result struct {
		rep *decompose.Report
		err error
	}
	done := make(chan result, 1)
	stop := progress.Reporter{Clock: a.clock, Out: a.errOut, Interval: time.Second, Label: "load"}.Start()
	go func() {
		rep, err := decompose.Load(ctx, repo, in, a.loadOptions())
		done <- result{rep, err}
	}()
	res := <-done
	elapsed := stop()

	if res.rep != nil {
		printReport(a.out, res.rep)
	}
	if res.err != nil {
		return res.err
	}
	fmt.Fprintf(a.out, "load finished in %s\n", elapsed.Truncate(time.Millisecond))
	return nil
}

func printReport(w io.Writer, rep *decompose.Report) {
	if len(rep.Tables) == 0 {
		t := newTable(w, "Table", "Written")
		for _, name := range sortedKeys(rep.Written) {
			t.Append([]string{name, strconv.FormatInt(rep.Written[name], 10)})
		}
		t.Render()
		return
	}
	t := newTable(w, "Table", "Written", "Rows", "Digest")
	for _, tr := range rep.Tables {
		t.Append([]string{tr.Name, strconv.FormatInt(rep.Written[tr.Name], 10), strconv.FormatInt(tr.Rows, 10), tr.Digest})
	}
	t.Render()
	printPruned(w, rep.Pruned)
}

func printPruned(w io.Writer, pruned []decompose.IntegrityWarning) {
	if len(pruned) == 0 {
		return
	}
	t := newTable(w, "Rule", "Deleted")
	var total int64
	for _, p := range pruned {
		t.Append([]string{p.Rule.String(), strconv.FormatInt(p.Deleted, 10)})
		total += p.Deleted
	}
	t.SetFooter([]string{"total", strconv.FormatInt(total, 10)})
	t.Render()
}
