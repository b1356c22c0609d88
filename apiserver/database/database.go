package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// db is the API server database, where settled rollups and transactions are
// mirrored for querying.
var db *gorm.DB

// ConnectionConfig carries the MySQL connection parameters of the API server
// database.
type ConnectionConfig struct {
	User           string
	Password       string
	Address        string
	DatabaseName   string
	MigrationsPath string
}

func (cfg *ConnectionConfig) connectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8&parseTime=True",
		cfg.User, cfg.Password, cfg.Address, cfg.DatabaseName)
}

// DB returns a reference to the database connection
func DB() (*gorm.DB, error) {
	if db == nil {
		return nil, errors.New("database is not connected")
	}
	return db, nil
}

// Connect connects to the database mentioned in the config variable.  The
// database schema must be current; use Migrate to bring it up to date.
func Connect(cfg *ConnectionConfig) error {
	connectionString := cfg.connectionString()

	migrator, driver, err := openMigrator(cfg)
	if err != nil {
		return err
	}
	isCurrent, version, err := isCurrent(migrator, driver)
	if err != nil {
		return errors.Wrap(err, "error checking whether the database is current")
	}
	if !isCurrent {
		return errors.Errorf("Database is not current (version %d). Please migrate"+
			" the database by running the server with --migrate", version)
	}

	db, err = gorm.Open("mysql", connectionString)
	if err != nil {
		return errors.Wrap(err, "failed to connect to the database")
	}
	db.SetLogger(gormLogger{})
	return nil
}

// Close closes the connection to the database
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return errors.WithStack(err)
}

// Migrate applies every pending schema migration to the database.
func Migrate(cfg *ConnectionConfig) error {
	migrator, driver, err := openMigrator(cfg)
	if err != nil {
		return err
	}
	isCurrent, version, err := isCurrent(migrator, driver)
	if err != nil {
		return errors.Wrap(err, "error checking whether the database is current")
	}
	if isCurrent {
		log.Infof("Database is already up-to-date (version %d)", version)
		return nil
	}
	err = migrator.Up()
	if err != nil {
		return errors.Wrap(err, "failed to migrate the database")
	}
	version, isDirty, err := migrator.Version()
	if err != nil {
		return errors.WithStack(err)
	}
	if isDirty {
		return errors.New("error migrating database: database is dirty")
	}
	log.Infof("Migrated database to version %d", version)
	return nil
}
