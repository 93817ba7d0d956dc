// Package store opens the user repository selected by configuration.
package store

import (
	"context"
	"database/sql"

	"recipebox/internal/apperror"
	"recipebox/internal/config"
	"recipebox/internal/repository"
	"recipebox/internal/repository/postgres"
	"recipebox/internal/repository/sqlite"
)

// Open connects to the configured database. The returned func closes it.
func Open(ctx context.Context, cfg config.Config) (repository.UserRepository, func() error, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err = sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), db.Close, nil
	case config.DriverPostgres:
		db, err = postgres.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(db), db.Close, nil
	default:
		return nil, nil, apperror.Configuration("unknown database driver %q", cfg.Database.Driver)
	}
}
