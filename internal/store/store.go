// Package store selects and opens the persistence backend named by the
// configuration.
package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/JonMunkholm/crmport/internal/config"
	"github.com/JonMunkholm/crmport/internal/core"
	"github.com/JonMunkholm/crmport/internal/store/memory"
	"github.com/JonMunkholm/crmport/internal/store/postgres"
	"github.com/JonMunkholm/crmport/internal/store/sqlite"
)

// ErrUnknownDriver is returned for a driver name no backend implements.
var ErrUnknownDriver = errors.New("unknown database driver")

// Backend is a core.Store that holds resources until closed.
type Backend interface {
	core.Store
	Close() error
}

var (
	_ Backend = (*memory.Store)(nil)
	_ Backend = (*sqlite.Store)(nil)
	_ Backend = (*postgres.Store)(nil)
)

// Open returns the backend for cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.WithHintf(
			errors.Wrapf(ErrUnknownDriver, "%q", cfg.Driver),
			"set DB_DRIVER to one of %s, %s, %s",
			config.DriverMemory, config.DriverSQLite, config.DriverPostgres)
	}
}
