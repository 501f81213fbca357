package decompose

import (
	"context"
	"fmt"

	"github.com/zeebo/xxh3"

	"chidata/internal/ddl"
	"chidata/internal/records"
	"chidata/internal/storage"
)

// Digest hashes the content of def's table. Rows are read back and ordered
// by every column in Go, so two stores holding the same rows digest equal
// whatever their collation or physical order.
func Digest(ctx context.Context, repo storage.Repository, def ddl.TableDef) (string, int64, error) {
	cols := def.ColumnNames()
	rows, err := repo.ReadRows(ctx, def.FQN, cols)
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", def.FQN, err)
	}
	records.SortStable(rows, records.Asc(cols...))

	h := xxh3.New()
	for _, r := range rows {
		for i, c := range cols {
			if i > 0 {
				_, _ = h.Write([]byte{0x1f})
			}
			_, _ = h.WriteString(records.Key(r[c]))
		}
		_, _ = h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64()), int64(len(rows)), nil
}
