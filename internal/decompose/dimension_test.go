package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidata/internal/records"
)

func TestExtractNumbersDistinctKeysInSortOrder(t *testing.T) {
	rows := []records.Record{
		{"facility_type": "Restaurant"},
		{"facility_type": "Bakery"},
		{"facility_type": "Restaurant"},
		{"facility_type": nil},
		{"facility_type": "Grocery Store"},
		{"facility_type": nil},
	}
	got, err := Extract(rows, Extraction{Key: []string{"facility_type"}, ID: "id"})
	require.NoError(t, err)

	assert.Equal(t, []records.Record{
		{"facility_type": "Bakery", "id": int64(1)},
		{"facility_type": "Grocery Store", "id": int64(2)},
		{"facility_type": "Restaurant", "id": int64(3)},
		{"facility_type": nil, "id": int64(4)},
	}, got)
	// Input untouched.
	assert.NotContains(t, rows[0], "id")
}

func TestExtractPreferNewestTerm(t *testing.T) {
	rows := []records.Record{
		{"license_number": int64(7), "license_term_start_date": "2019-05-01", "status": "old"},
		{"license_number": int64(3), "license_term_start_date": "2021-01-01", "status": "only"},
		{"license_number": int64(7), "license_term_start_date": "2023-05-01", "status": "new"},
		{"license_number": int64(7), "license_term_start_date": nil, "status": "undated"},
	}
	got, err := Extract(rows, LicenseExtraction)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0]["license_number"])
	assert.Equal(t, "new", got[1]["status"])
}

// Two rows for the same street, one without coordinates, make exactly one
// address and both facts rewrite to its id.
func TestAddressWithAndWithoutLocation(t *testing.T) {
	rows := []records.Record{
		{"street": "100 N State St", "ward": int64(42), "latitude": nil, "location": nil, "account_number": int64(1)},
		{"street": "9 W Elm St", "ward": int64(2), "latitude": 41.9, "location": "(41.9, -87.6)", "account_number": int64(3)},
		{"street": "100 N State St", "ward": int64(42), "latitude": 41.88, "location": "(41.88, -87.62)", "account_number": int64(2)},
	}

	addresses, err := Extract(LocatedFirst(rows, "location"), AddressExtraction)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "9 W Elm St", addresses[0]["street"], "ward 2 sorts first")
	assert.Equal(t, "100 N State St", addresses[1]["street"])
	assert.Equal(t, 41.88, addresses[1]["latitude"], "located row preferred")

	lookup := NewLookup("business_addresses", []string{"street"}, addresses, "id")
	facts := records.Clone(rows)
	require.NoError(t, Rewrite(facts, "street", "address_id", lookup))
	assert.Equal(t, int64(2), facts[0]["address_id"])
	assert.Equal(t, int64(2), facts[2]["address_id"])
	assert.Equal(t, int64(1), facts[1]["address_id"])
}

func TestDistinctIDsMatchDistinctKeys(t *testing.T) {
	var rows []records.Record
	for i := 0; i < 50; i++ {
		rows = append(rows, records.Record{"risk": []any{"Risk 1 (High)", "Risk 2 (Medium)", "Risk 3 (Low)", nil, "All"}[i%5]})
	}
	got, err := Extract(rows, Extraction{Key: []string{"risk"}, ID: "id"})
	require.NoError(t, err)

	ids := map[int64]bool{}
	for _, r := range got {
		ids[r["id"].(int64)] = true
	}
	assert.Len(t, ids, 5)
	assert.Len(t, got, 5)
}

func TestExtractPolicy(t *testing.T) {
	rows := []records.Record{
		{"street": "100 N State St", "ward": nil},
		{"street": "100 N State St", "ward": int64(42)},
	}
	got, err := Extract(rows, Extraction{Key: []string{"street"}, Policy: "most-complete", ID: "id"})
	require.NoError(t, err)
	assert.Equal(t, []records.Record{{"street": "100 N State St", "ward": int64(42), "id": int64(1)}}, got)

	got, err = Extract(rows, Extraction{Key: []string{"street"}, Policy: "newest"})
	require.ErrorContains(t, err, `unknown policy "newest"`)
	assert.Nil(t, got)
}

func TestLocatedFirstIsStable(t *testing.T) {
	rows := []records.Record{
		{"n": 1, "location": nil},
		{"n": 2, "location": "a"},
		{"n": 3, "location": nil},
		{"n": 4, "location": "b"},
	}
	got := LocatedFirst(rows, "location")
	var order []any
	for _, r := range got {
		order = append(order, r["n"])
	}
	assert.Equal(t, []any{2, 4, 1, 3}, order)
	assert.Equal(t, 1, rows[0]["n"])
}
