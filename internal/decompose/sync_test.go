package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidata/internal/records"
)

func TestSplitThenSynchronize(t *testing.T) {
	rows := []records.Record{
		{"application_id": int64(30), "payment_date": "2020-03-01"},
		{"application_id": int64(10), "payment_date": nil},
		{"application_id": int64(20), "payment_date": "2020-01-09"},
	}
	apps, pays := Split(rows, map[string]string{"id": "application_id"}, map[string]string{"date": "payment_date"})
	require.NoError(t, Synchronize(apps, pays, "payment_id", "id"))

	for k := range rows {
		assert.Equal(t, int64(k+1), apps[k]["payment_id"])
		assert.Equal(t, int64(k+1), pays[k]["id"])
		assert.Equal(t, rows[k]["application_id"], apps[k]["id"])
		assert.Equal(t, rows[k]["payment_date"], pays[k]["date"])
	}
	assert.NotContains(t, rows[0], "payment_id")
}

func TestSynchronizeRejectsUnequalLengths(t *testing.T) {
	err := Synchronize(make([]records.Record, 2), make([]records.Record, 3), "a", "b")
	assert.Error(t, err)
}
