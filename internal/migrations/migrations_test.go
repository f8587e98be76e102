package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(MigrationFiles, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	require.Equal(t, ups, downs)
}

func TestMigrationFiles_CreateStoreTables(t *testing.T) {
	records, err := fs.ReadFile(MigrationFiles, "000001_create_work_records.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(records), "PRIMARY KEY (company_id, id)")
	require.Contains(t, string(records), "seq              BIGSERIAL")

	summaries, err := fs.ReadFile(MigrationFiles, "000002_create_monthly_summaries.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(summaries), "UNIQUE (company_id, year, month)")
	require.Contains(t, string(summaries), "document    JSONB")
}
