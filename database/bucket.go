package database

import (
	"bytes"
)

var bucketSeparator = []byte("/")

// Bucket is a database bucket composed of a path of identifiers.  Keys built
// from a bucket share its prefix, so a cursor over the bucket visits exactly
// its entries.
type Bucket struct {
	path [][]byte
}

// MakeBucket creates a new Bucket using the given path of buckets.
func MakeBucket(path ...[]byte) *Bucket {
	return &Bucket{path: path}
}

// Bucket returns the bucket of the given path directly under this bucket.
func (b *Bucket) Bucket(path []byte) *Bucket {
	newPath := make([][]byte, len(b.path)+1)
	copy(newPath, b.path)
	newPath[len(b.path)] = path
	return MakeBucket(newPath...)
}

// Key returns the key inside of the current bucket.
func (b *Bucket) Key(key []byte) []byte {
	return append(b.Path(), key...)
}

// Path returns the full path of the current bucket.
func (b *Bucket) Path() []byte {
	bucketPath := bytes.Join(b.path, bucketSeparator)
	return append(bucketPath, bucketSeparator...)
}
