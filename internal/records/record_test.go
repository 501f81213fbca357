package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyAcrossDriverTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Key(int64(42)), Key([]byte("42")))
	assert.Equal(t, Key(42), Key(int64(42)))
	assert.Equal(t, Key(float64(42)), Key(int64(42)))
	assert.Equal(t, "41.88", Key(41.88))
	assert.NotEqual(t, Key(nil), Key(""))
}

func TestKeyOfComposite(t *testing.T) {
	t.Parallel()

	r := Record{"street": "1 Main St", "location": nil}
	k1 := KeyOf(r, []string{"street", "location"})
	k2 := KeyOf(Record{"street": "1 Main St", "location": ""}, []string{"street", "location"})
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, "1 Main St", KeyOf(r, []string{"street"}))
	assert.Equal(t, k1, KeyOfValues([]any{"1 Main St", nil}))
}

func TestSortStable(t *testing.T) {
	t.Parallel()

	rs := []Record{
		{"ward": int64(3), "street": "b", "n": 1},
		{"ward": nil, "street": "a", "n": 2},
		{"ward": int64(1), "street": "z", "n": 3},
		{"ward": int64(3), "street": "a", "n": 4},
		{"ward": int64(3), "street": "a", "n": 5},
	}
	SortStable(rs, Asc("ward", "street"))

	got := make([]int, len(rs))
	for i, r := range rs {
		got[i] = r["n"].(int)
	}
	require.Equal(t, []int{3, 4, 5, 1, 2}, got)
}

func TestSortStableDescKeepsNilLast(t *testing.T) {
	t.Parallel()

	rs := []Record{
		{"d": nil, "n": 1},
		{"d": "2020-01-01", "n": 2},
		{"d": "2022-05-01", "n": 3},
	}
	SortStable(rs, []SortKey{{Column: "d", Desc: true}})
	assert.Equal(t, 3, rs[0]["n"])
	assert.Equal(t, 2, rs[1]["n"])
	assert.Equal(t, 1, rs[2]["n"])
}

func TestCompareMixedKinds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, Compare(int64(2), 10.5))
	assert.Equal(t, 1, Compare("a", int64(1)))
	assert.Equal(t, 0, Compare("x", "x"))
}

func TestStringAccessor(t *testing.T) {
	t.Parallel()

	r := Record{"a": "x", "b": "", "c": int64(7)}
	s, ok := r.String("a")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	_, ok = r.String("b")
	assert.False(t, ok)
	_, ok = r.String("missing")
	assert.False(t, ok)
	s, ok = r.String("c")
	assert.True(t, ok)
	assert.Equal(t, "7", s)
}
