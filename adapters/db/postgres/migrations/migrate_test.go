package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFilesSortsByVersion(t *testing.T) {
	source := fstest.MapFS{
		"002_indexes.sql":   {Data: []byte("CREATE INDEX a ON t(x);")},
		"001_schema.sql":    {Data: []byte("CREATE TABLE t (x INT);")},
		"README.md":         {Data: []byte("notes")},
		"noversion.sql":     {Data: []byte("SELECT 1;")},
		"archive/003_x.sql": {Data: []byte("SELECT 1;")},
	}

	got, err := LoadFiles(source)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "001", got[0].Version)
	assert.Equal(t, "001_schema.sql", got[0].Name)
	assert.Equal(t, "002", got[1].Version)
	assert.Equal(t, calculateChecksum([]byte("CREATE TABLE t (x INT);")), got[0].Checksum)
	assert.Len(t, got[0].Checksum, 64)
}

func TestEmbeddedSchema(t *testing.T) {
	got, err := LoadFiles(files)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, "001", got[0].Version)
	for _, table := range []string{"insight_reports", "insight_metrics", "insight_slices"} {
		assert.Contains(t, got[0].SQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
