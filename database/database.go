package database

// DataAccessor defines the common interface by which data gets accessed in a
// generic rollupd database, whether it be a full database or a transaction.
type DataAccessor interface {
	// Put sets the value for the given key.  It overwrites any previous
	// value for that key.
	Put(key, value []byte) error

	// Get gets the value for the given key.  It returns ErrNotFound if
	// the given key does not exist.
	Get(key []byte) ([]byte, error)

	// Has returns true if the database does contain the given key.
	Has(key []byte) (bool, error)

	// Delete deletes the value for the given key.  Will not return an
	// error if the key doesn't exist.
	Delete(key []byte) error
}

// Database defines the interface of a database that can begin transactions,
// open cursors, and close itself.
type Database interface {
	DataAccessor

	// Begin begins a new database transaction.
	Begin() (Transaction, error)

	// Cursor begins a new cursor over the given bucket.
	Cursor(bucket *Bucket) (Cursor, error)

	// Close closes the database.
	Close() error
}

// Transaction is a data accessor whose mutations are atomically committed or
// rolled back as a unit.
//
// Note: transactions provide data consistency over the state of the database
// as it was when the transaction started.
type Transaction interface {
	DataAccessor

	// Cursor begins a new cursor over the given bucket.
	Cursor(bucket *Bucket) (Cursor, error)

	// Rollback rolls back whatever changes were made to the database
	// within this transaction.
	Rollback() error

	// Commit commits whatever changes were made to the database within
	// this transaction.
	Commit() error
}

// Cursor iterates over database entries given some bucket.
type Cursor interface {
	// Next moves the iterator to the next key/value pair.  It returns
	// false once the iterator is exhausted.
	Next() bool

	// Key returns the key of the current key/value pair.  The caller
	// should not modify the contents of the returned slice, and its
	// contents may change on the next call to Next.
	Key() ([]byte, error)

	// Value returns the value of the current key/value pair.  The caller
	// should not modify the contents of the returned slice, and its
	// contents may change on the next call to Next.
	Value() ([]byte, error)

	// Close releases associated resources.
	Close() error
}
