package db

import (
	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/internal/profile"
	"github.com/SurinderTech/findify-finder/store"
	"github.com/SurinderTech/findify-finder/store/db/postgres"
	"github.com/SurinderTech/findify-finder/store/db/sqlite"
)

// PostgreSQL is the production database with full vector search support.
// SQLite is supported for development and testing; similarity is computed
// in-process for it since there is no pgvector equivalent.

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
