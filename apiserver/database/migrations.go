package database

import (
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/pkg/errors"
)

// openMigrator opens the migration source next to a fresh database handle.
func openMigrator(cfg *ConnectionConfig) (*migrate.Migrate, source.Driver, error) {
	driver, err := source.Open("file://" + cfg.MigrationsPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open the migrations directory")
	}
	migrator, err := migrate.NewWithSourceInstance("file", driver,
		"mysql://"+cfg.connectionString())
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open the migrator")
	}
	return migrator, driver, nil
}

// isCurrent resolves whether the database is on the latest available
// migration version.
func isCurrent(migrator *migrate.Migrate, driver source.Driver) (bool, uint, error) {
	version, isDirty, err := migrator.Version()
	if err == migrate.ErrNilVersion {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, errors.WithStack(err)
	}
	if isDirty {
		return false, 0, errors.Errorf("Database is dirty at version %d", version)
	}

	// The database is current if Next returns ErrNotExist for the active
	// version.
	_, err = driver.Next(version)
	if pathErr, ok := err.(*os.PathError); ok && os.IsNotExist(pathErr.Err) {
		return true, version, nil
	}
	if os.IsNotExist(err) {
		return true, version, nil
	}
	return false, version, errors.WithStack(err)
}
