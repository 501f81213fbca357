package decompose

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chidata/internal/logging"
	"chidata/internal/metrics"
	"chidata/internal/records"
	"chidata/internal/schema"
	"chidata/internal/storage"
)

// Filters are the source-specific exclusion lists.
type Filters struct {
	TargetState              string
	ExcludedLicenseCities    []string
	TargetCity               string
	CityMisspellings         []string
	ExcludedFacilityKeywords []string
}

// DefaultFilters reproduces the data-quality patches the reference output
// was built with.
func DefaultFilters() Filters {
	return Filters{
		TargetState:              "IL",
		ExcludedLicenseCities:    []string{"SCHILLER PARK"},
		TargetCity:               "Chicago",
		CityMisspellings:         []string{"Cchicago", "Chicago.", "Chicagochicago", "312chicago", "Chicagoc", "Chicagoo"},
		ExcludedFacilityKeywords: []string{"school"},
	}
}

// Options control one load.
type Options struct {
	Job          string
	Applications bool // load application_types, license_applications and application_payments
	Vacuum       bool
	Filters      Filters
	Rules        []Rule // nil means Rules
}

// Input is the raw content of both sources as parsed from CSV.
type Input struct {
	Licenses    []records.Record
	Inspections []records.Record
}

// TableReport describes one table after a load.
type TableReport struct {
	Name   string
	Rows   int64
	Digest string
}

// Report summarizes a load. Two loads of the same input produce equal
// Tables.
type Report struct {
	Written map[string]int64
	Pruned  []IntegrityWarning
	Tables  []TableReport
	Elapsed time.Duration
}

// PrunedTotal sums the rows removed by all rules.
func (r *Report) PrunedTotal() int64 {
	var n int64
	for _, w := range r.Pruned {
		n += w.Deleted
	}
	return n
}

// ResetSchema drops and recreates every table of the target schema.
func ResetSchema(ctx context.Context, repo storage.Repository) error {
	for _, def := range schema.Tables() {
		if err := repo.ResetTable(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

// Load rebuilds the target schema from in: licenses first, then
// inspections, then pruning. The sources run independently; when either
// fails the other still completes, pruning is skipped and the joined error
// is returned along with the partial report.
func Load(ctx context.Context, repo storage.Repository, in Input, opts Options) (*Report, error) {
	log := logging.With("decompose")
	start := time.Now()

	if err := ResetSchema(ctx, repo); err != nil {
		return nil, fmt.Errorf("reset schema: %w", err)
	}

	w := NewWriter(repo, opts.Job)
	rep := &Report{Written: w.Written}

	var errs []error
	for _, s := range []struct {
		src Source
		raw []records.Record
	}{
		{LicensesSource(opts), in.Licenses},
		{InspectionsSource(opts), in.Inspections},
	} {
		if err := s.src.Run(ctx, w, s.raw); err != nil {
			log.Error().Err(err).Str("source", s.src.Name).Msg("source failed")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		rep.Elapsed = time.Since(start)
		return rep, errors.Join(errs...)
	}

	pruned, err := PruneStore(ctx, repo, opts)
	rep.Pruned = pruned
	if err != nil {
		rep.Elapsed = time.Since(start)
		return rep, err
	}

	rep.Tables, err = Summarize(ctx, repo)
	rep.Elapsed = time.Since(start)
	if err != nil {
		return rep, err
	}
	log.Info().
		Int64("pruned", rep.PrunedTotal()).
		Dur("elapsed", rep.Elapsed).
		Msg("load complete")
	return rep, nil
}

// PruneStore runs the pruning rules and, when opts.Vacuum is set, reclaims
// space afterwards.
func PruneStore(ctx context.Context, repo storage.Repository, opts Options) ([]IntegrityWarning, error) {
	rules := opts.Rules
	if rules == nil {
		rules = Rules
	}
	pruned, err := Prune(ctx, repo, opts.Job, rules)
	if err != nil {
		return pruned, err
	}
	if !opts.Vacuum {
		return pruned, nil
	}
	start := time.Now()
	err = repo.Vacuum(ctx, PrunedTables(rules))
	metrics.RecordStep(opts.Job, "vacuum", err, time.Since(start))
	if err != nil {
		return pruned, fmt.Errorf("vacuum: %w", err)
	}
	return pruned, nil
}

// Summarize counts and digests every schema table.
func Summarize(ctx context.Context, repo storage.Repository) ([]TableReport, error) {
	defs := schema.Tables()
	out := make([]TableReport, 0, len(defs))
	for _, def := range defs {
		d, n, err := Digest(ctx, repo, def)
		if err != nil {
			return out, err
		}
		out = append(out, TableReport{Name: def.FQN, Rows: n, Digest: d})
	}
	return out, nil
}
