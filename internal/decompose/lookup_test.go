package decompose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidata/internal/records"
	"chidata/internal/schema"
)

func TestBuildLookupFromPersistedRows(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t)
	def := schema.MustTable(schema.RiskLevels)
	require.NoError(t, repo.ResetTable(ctx, def))
	_, err := repo.WriteRows(ctx, def.FQN, []string{"id", "name"}, [][]any{
		{int64(1), "Risk 1 (High)"},
		{int64(2), nil},
	})
	require.NoError(t, err)

	l, err := BuildLookup(ctx, repo, def.FQN, []string{"name"}, "id")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())

	id, ok := l.ID("Risk 1 (High)")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	id, ok = l.ID(nil)
	assert.True(t, ok, "absent values have an id of their own")
	assert.Equal(t, int64(2), id)
}

func TestRewriteComposes(t *testing.T) {
	types := NewLookup("inspection_types", []string{"name"}, []records.Record{
		{"name": "Canvass", "id": int64(1)},
		{"name": "Complaint", "id": int64(2)},
	}, "id")
	results := NewLookup("result_types", []string{"description"}, []records.Record{
		{"description": "Fail", "id": int64(1)},
		{"description": "Pass", "id": int64(2)},
	}, "id")

	rows := []records.Record{
		{"inspection_type": "Complaint", "results": "Pass"},
		{"inspection_type": "Canvass", "results": "Fail"},
	}
	require.NoError(t, Rewrite(rows, "inspection_type", "inspection_type_id", types))
	require.NoError(t, Rewrite(rows, "results", "result_type_id", results))

	assert.Equal(t, []records.Record{
		{"inspection_type_id": int64(2), "result_type_id": int64(2)},
		{"inspection_type_id": int64(1), "result_type_id": int64(1)},
	}, rows)
}

func TestRewriteMissIsTyped(t *testing.T) {
	l := NewLookup("license_statuses", []string{"status"}, []records.Record{{"status": "AAI", "id": int64(1)}}, "id")
	err := Rewrite([]records.Record{{"license_status": "ZZZ"}}, "license_status", "status_id", l)

	var miss *LookupMiss
	require.True(t, errors.As(err, &miss))
	assert.Equal(t, "license_statuses", miss.Table)
	assert.Equal(t, "status", miss.Column)
	assert.Equal(t, "ZZZ", miss.Value)
}

func TestToInt64(t *testing.T) {
	for in, want := range map[any]int64{
		int64(4): 4, 5: 5, int32(6): 6, float64(7): 7, "8": 8,
	} {
		got, ok := toInt64(in)
		assert.True(t, ok, "%v", in)
		assert.Equal(t, want, got)
	}
	_, ok := toInt64(1.5)
	assert.False(t, ok)
	_, ok = toInt64("x")
	assert.False(t, ok)
}
