package store

import (
	"path/filepath"
	"testing"

	"github.com/terralab/landcover-cli/internal/config"
)

// Both backends must satisfy the Store interface.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func testStoreConfig(t *testing.T) config.StoreConfig {
	t.Helper()
	return config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "ledger.db"),
	}
}
