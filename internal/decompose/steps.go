package decompose

import (
	"context"
	"fmt"
	"time"

	"chidata/internal/logging"
	"chidata/internal/metrics"
	"chidata/internal/records"
	"chidata/internal/storage"
	"chidata/internal/transformer"
)

// Step is one named unit of a source pipeline. Steps run in declaration
// order; a step may only read tables written by the steps before it.
type Step struct {
	Name string
	Run  func(ctx context.Context, w *Writer, rows []records.Record) error
}

// Source is one dataset: the chain that prepares its raw rows and the
// ordered steps that decompose them.
type Source struct {
	Name    string
	Prepare transformer.Chain
	Steps   []Step
}

// Run prepares raw and runs every step. The first failure stops the source.
// raw is modified in place by the prepare chain.
func (s Source) Run(ctx context.Context, w *Writer, raw []records.Record) error {
	log := logging.With("decompose").With().Str("source", s.Name).Logger()

	start := time.Now()
	rows, err := s.Prepare.Apply(raw)
	metrics.RecordStep(w.Job, s.Name+".prepare", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", s.Name, asValidation(s.Name, err))
	}
	metrics.RecordRow(w.Job, "filtered", int64(len(raw)-len(rows)))
	log.Info().Int("raw", len(raw)).Int("kept", len(rows)).Msg("prepared")

	for _, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := st.Run(ctx, w, rows)
		d := time.Since(start)
		metrics.RecordStep(w.Job, s.Name+"."+st.Name, err, d)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", s.Name, st.Name, err)
		}
		log.Debug().Str("step", st.Name).Dur("took", d).Msg("step done")
	}
	return nil
}

// Writer persists step output and tallies rows per table.
type Writer struct {
	Repo    storage.Repository
	Job     string
	Written map[string]int64
}

func NewWriter(repo storage.Repository, job string) *Writer {
	return &Writer{Repo: repo, Job: job, Written: map[string]int64{}}
}

// Write inserts rows into table. An empty batch is a no-op.
func (w *Writer) Write(ctx context.Context, table string, cols []string, rows [][]any) error {
	if _, ok := w.Written[table]; !ok {
		w.Written[table] = 0
	}
	if len(rows) == 0 {
		return nil
	}
	n, err := w.Repo.WriteRows(ctx, table, cols, rows)
	if err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	w.Written[table] += n
	metrics.RecordRow(w.Job, "inserted", n)
	return nil
}

// WriteAs writes rs into table, reading target column i from source[i].
func (w *Writer) WriteAs(ctx context.Context, table string, rs []records.Record, target, source []string) error {
	return w.Write(ctx, table, target, project(rs, source))
}

// Lookup reads a fresh lookup snapshot of table.
func (w *Writer) Lookup(ctx context.Context, table string, key []string, id string) (*Lookup, error) {
	return BuildLookup(ctx, w.Repo, table, key, id)
}

// rewriteAll applies several rewrites to rows, each against a lookup read
// from the store just before it is used.
func (w *Writer) rewriteAll(ctx context.Context, rows []records.Record, rws ...rewrite) error {
	for _, rw := range rws {
		l, err := w.Lookup(ctx, rw.table, []string{rw.key}, rw.id)
		if err != nil {
			return err
		}
		if err := Rewrite(rows, rw.src, rw.dst, l); err != nil {
			return err
		}
	}
	return nil
}

type rewrite struct {
	src, dst string // fact columns
	table    string // dimension
	key, id  string // dimension natural key and surrogate id columns
}

// dimension is the common shape of a single-column lookup table: extract
// distinct values of src, number them and write (id, col).
func dimension(table, src, col string) Step {
	return Step{Name: table, Run: func(ctx context.Context, w *Writer, rows []records.Record) error {
		ext, err := Extract(rows, Extraction{Key: []string{src}, ID: "id"})
		if err != nil {
			return err
		}
		return w.WriteAs(ctx, table, ext, []string{"id", col}, []string{"id", src})
	}}
}

func requirePresent(rows []records.Record, cols ...string) []records.Record {
	out := make([]records.Record, 0, len(rows))
next:
	for _, r := range rows {
		for _, c := range cols {
			if r[c] == nil {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}
