package dbaccess

import (
	"github.com/rollupnet/rollupd/database"
)

// Context is an interface type representing the context in which data access
// runs: either directly against the database or inside an open transaction.
type Context interface {
	accessor() (database.DataAccessor, error)
	cursor(bucket *database.Bucket) (database.Cursor, error)
}

type noTxContext struct {
	db database.Database
}

func (ctx *noTxContext) accessor() (database.DataAccessor, error) {
	return ctx.db, nil
}

func (ctx *noTxContext) cursor(bucket *database.Bucket) (database.Cursor, error) {
	return ctx.db.Cursor(bucket)
}

// NoTx returns a context in which data access is done directly against the
// database, outside a transaction.
func NoTx(db database.Database) Context {
	return &noTxContext{db: db}
}

// TxContext represents a database access context running inside a database
// transaction.  Changes are visible to other contexts only after Commit.
type TxContext struct {
	dbTx database.Transaction
}

func (ctx *TxContext) accessor() (database.DataAccessor, error) {
	return ctx.dbTx, nil
}

func (ctx *TxContext) cursor(bucket *database.Bucket) (database.Cursor, error) {
	return ctx.dbTx.Cursor(bucket)
}

// Commit commits the changes made inside this context.
func (ctx *TxContext) Commit() error {
	return ctx.dbTx.Commit()
}

// Rollback rolls back the changes made inside this context.
func (ctx *TxContext) Rollback() error {
	return ctx.dbTx.Rollback()
}

// NewTx begins a new database transaction and returns a context running
// inside it.
func NewTx(db database.Database) (*TxContext, error) {
	dbTx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	return &TxContext{dbTx: dbTx}, nil
}
