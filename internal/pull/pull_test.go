package pull

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidata/internal/datasource/httpds"
)

func TestPullConcurrentWithOneFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r5kz-chrr/rows.csv":
			_, _ = w.Write([]byte("ID,CITY\n1,CHICAGO\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	cached := filepath.Join(dir, "food_inspections.csv")
	require.NoError(t, os.WriteFile(cached, []byte("old"), 0o644))

	client := httpds.NewClient(httpds.Config{InitialBackoff: time.Millisecond})
	results, err := Pull(context.Background(), client, dir, []Dataset{
		{Name: "licenses", URL: srv.URL + "/r5kz-chrr/rows.csv", File: "business_licenses.csv"},
		{Name: "inspections", URL: srv.URL + "/qizy-d2wf/rows.csv", File: "food_inspections.csv"},
		{Name: "local-only", File: "extra.csv"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pull inspections")
	assert.Contains(t, err.Error(), "404")
	assert.NotContains(t, err.Error(), "pull licenses")

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.EqualValues(t, 18, results[0].Bytes)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	b, err := os.ReadFile(filepath.Join(dir, "business_licenses.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,CITY\n1,CHICAGO\n", string(b))

	b, err = os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
}
