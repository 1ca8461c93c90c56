package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sakif/kudos-board/internal/config"
	"github.com/sakif/kudos-board/internal/repository"
	"github.com/sakif/kudos-board/internal/repository/memory"
	"github.com/sakif/kudos-board/internal/repository/postgres"
	"github.com/sakif/kudos-board/internal/repository/sqlite"
)

// openStore picks the storage backend named by cfg.DBDriver.
//
// NIL INTERFACE GOTCHA:
// `return postgres.Open(url)` would turn a nil *postgres.DB into a non-nil
// repository.Store on error. Each branch checks err before converting.
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return memory.New(), nil

	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil

	default:
		// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
		if dir := filepath.Dir(cfg.DBPath); cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}
