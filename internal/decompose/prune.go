package decompose

import (
	"context"
	"fmt"
	"time"

	"chidata/internal/ddl"
	"chidata/internal/logging"
	"chidata/internal/metrics"
	"chidata/internal/schema"
	"chidata/internal/storage"
)

// Rule deletes rows of Table whose Column value is not among the non-null
// values of RefTable.RefColumn.
type Rule struct {
	Table, Column       string
	RefTable, RefColumn string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s.%s not in %s.%s", r.Table, r.Column, r.RefTable, r.RefColumn)
}

// SQL renders the rule for d.
func (r Rule) SQL(d ddl.Dialect) string {
	ref := d.QuoteIdent(r.RefColumn)
	return fmt.Sprintf("DELETE FROM %s WHERE %s NOT IN (SELECT %s FROM %s WHERE %s IS NOT NULL)",
		d.QuoteFQN(r.Table), d.QuoteIdent(r.Column), ref, d.QuoteFQN(r.RefTable), ref)
}

// Rules is the pruning sequence. Order matters: fact rows are discarded
// first so the dimension rows they alone referenced are discarded after.
var Rules = []Rule{
	{schema.Licenses, "license_number", schema.InspectedBusinesses, "license_number"},
	{schema.InspectedBusinesses, "license_number", schema.Licenses, "license_number"},
	{schema.Businesses, "account_number", schema.Licenses, "account_number"},
	{schema.BusinessAddresses, "id", schema.Businesses, "address_id"},
	{schema.Violations, "inspection_id", schema.Inspections, "id"},
	{schema.LicenseApplications, "license_number", schema.Licenses, "license_number"},
	{schema.LicenseApplications, "account_number", schema.Businesses, "account_number"},
	{schema.ApplicationPayments, "id", schema.LicenseApplications, "payment_id"},
	{schema.Inspections, "license_number", schema.InspectedBusinesses, "license_number"},
	{schema.Violations, "inspection_id", schema.Inspections, "id"},
}

// IntegrityWarning counts rows one rule removed. Deletions are expected and
// never fail a run.
type IntegrityWarning struct {
	Rule    Rule
	Deleted int64
}

// Prune applies rules in order.
func Prune(ctx context.Context, repo storage.Repository, job string, rules []Rule) ([]IntegrityWarning, error) {
	log := logging.With("prune")
	out := make([]IntegrityWarning, 0, len(rules))
	for _, r := range rules {
		start := time.Now()
		n, err := repo.Exec(ctx, r.SQL(repo.Dialect()))
		metrics.RecordStep(job, "prune_"+r.Table, err, time.Since(start))
		if err != nil {
			return out, fmt.Errorf("prune %s: %w", r, err)
		}
		metrics.RecordRow(job, "pruned", n)
		if n > 0 {
			log.Warn().Str("rule", r.String()).Int64("deleted", n).Msg("pruned unreferenced rows")
		}
		out = append(out, IntegrityWarning{Rule: r, Deleted: n})
	}
	return out, nil
}

// PrunedTables lists the tables rules delete from, without repeats.
func PrunedTables(rules []Rule) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rules {
		if !seen[r.Table] {
			seen[r.Table] = true
			out = append(out, r.Table)
		}
	}
	return out
}
