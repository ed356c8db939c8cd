package repositories

import (
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/stretchr/testify/require"
)

// openBadger gives every test its own store, SetupBenchmark wipes the path it is given.
func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CleanupDB(badgerDB, blugeWriter) })
	return badgerDB
}
