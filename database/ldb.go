package database

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"
)

// levelDB is a LevelDB-backed Database.
type levelDB struct {
	ldb *leveldb.DB
}

// Open opens (creating if necessary) the database at the given path.
func Open(path string) (Database, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}
	return &levelDB{ldb: ldb}, nil
}

// Put sets the value for the given key.  It overwrites any previous value for
// that key.
func (db *levelDB) Put(key, value []byte) error {
	return errors.WithStack(db.ldb.Put(key, value, nil))
}

// Get gets the value for the given key.  It returns ErrNotFound if the given
// key does not exist.
func (db *levelDB) Get(key []byte) ([]byte, error) {
	value, err := db.ldb.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "key %x", key)
	}
	return value, errors.WithStack(err)
}

// Has returns true if the database does contain the given key.
func (db *levelDB) Has(key []byte) (bool, error) {
	has, err := db.ldb.Has(key, nil)
	return has, errors.WithStack(err)
}

// Delete deletes the value for the given key.  Will not return an error if
// the key doesn't exist.
func (db *levelDB) Delete(key []byte) error {
	return errors.WithStack(db.ldb.Delete(key, nil))
}

// Begin begins a new database transaction.
func (db *levelDB) Begin() (Transaction, error) {
	ldbTx, err := db.ldb.OpenTransaction()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &levelDBTransaction{ldbTx: ldbTx}, nil
}

// Cursor begins a new cursor over the given bucket.
func (db *levelDB) Cursor(bucket *Bucket) (Cursor, error) {
	iterator := db.ldb.NewIterator(ldbutil.BytesPrefix(bucket.Path()), nil)
	return &levelDBCursor{iterator: iterator, bucket: bucket}, nil
}

// Close closes the database.
func (db *levelDB) Close() error {
	return errors.WithStack(db.ldb.Close())
}

// levelDBTransaction is a LevelDB transaction.
type levelDBTransaction struct {
	ldbTx  *leveldb.Transaction
	closed bool
}

// Put sets the value for the given key.  It overwrites any previous value for
// that key.
func (tx *levelDBTransaction) Put(key, value []byte) error {
	return errors.WithStack(tx.ldbTx.Put(key, value, nil))
}

// Get gets the value for the given key.  It returns ErrNotFound if the given
// key does not exist.
func (tx *levelDBTransaction) Get(key []byte) ([]byte, error) {
	value, err := tx.ldbTx.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "key %x", key)
	}
	return value, errors.WithStack(err)
}

// Has returns true if the database does contain the given key.
func (tx *levelDBTransaction) Has(key []byte) (bool, error) {
	has, err := tx.ldbTx.Has(key, nil)
	return has, errors.WithStack(err)
}

// Delete deletes the value for the given key.  Will not return an error if
// the key doesn't exist.
func (tx *levelDBTransaction) Delete(key []byte) error {
	return errors.WithStack(tx.ldbTx.Delete(key, nil))
}

// Cursor begins a new cursor over the given bucket.
func (tx *levelDBTransaction) Cursor(bucket *Bucket) (Cursor, error) {
	iterator := tx.ldbTx.NewIterator(ldbutil.BytesPrefix(bucket.Path()), nil)
	return &levelDBCursor{iterator: iterator, bucket: bucket}, nil
}

// Rollback rolls back whatever changes were made to the database within this
// transaction.
func (tx *levelDBTransaction) Rollback() error {
	if tx.closed {
		return errors.New("cannot rollback a closed transaction")
	}
	tx.closed = true
	tx.ldbTx.Discard()
	return nil
}

// Commit commits whatever changes were made to the database within this
// transaction.
func (tx *levelDBTransaction) Commit() error {
	if tx.closed {
		return errors.New("cannot commit a closed transaction")
	}
	tx.closed = true
	return errors.WithStack(tx.ldbTx.Commit())
}
