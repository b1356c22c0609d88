package database

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
)

// levelDBCursor iterates over the entries of a single bucket in key order.
type levelDBCursor struct {
	iterator iterator.Iterator
	bucket   *Bucket
	closed   bool
}

// Next moves the iterator to the next key/value pair.  It returns false once
// the iterator is exhausted.  Returns false if the cursor is closed.
func (c *levelDBCursor) Next() bool {
	if c.closed {
		return false
	}
	return c.iterator.Next()
}

// Key returns the key of the current key/value pair, relative to the cursor's
// bucket.
func (c *levelDBCursor) Key() ([]byte, error) {
	if c.closed {
		return nil, errors.New("cannot get the key of a closed cursor")
	}
	fullKey := c.iterator.Key()
	if fullKey == nil {
		return nil, errors.Wrap(ErrNotFound, "cursor is exhausted")
	}
	return fullKey[len(c.bucket.Path()):], nil
}

// Value returns the value of the current key/value pair.
func (c *levelDBCursor) Value() ([]byte, error) {
	if c.closed {
		return nil, errors.New("cannot get the value of a closed cursor")
	}
	value := c.iterator.Value()
	if value == nil {
		return nil, errors.Wrap(ErrNotFound, "cursor is exhausted")
	}
	return value, nil
}

// Close releases associated resources.
func (c *levelDBCursor) Close() error {
	if c.closed {
		return errors.New("cannot close an already closed cursor")
	}
	c.closed = true
	c.iterator.Release()
	return c.iterator.Error()
}
