package dbaccess

import (
	"github.com/rollupnet/rollupd/database"
)

var nullifierBucket = database.MakeBucket([]byte("spent-nullifiers"))

// StoreSpentNullifiers marks the given nullifiers spent.  Zero nullifiers
// (unused inputs) are skipped.
func StoreSpentNullifiers(context Context, nullifiers [][32]byte) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	for _, nullifier := range nullifiers {
		if nullifier == ([32]byte{}) {
			continue
		}
		if err := accessor.Put(nullifierBucket.Key(nullifier[:]), []byte{1}); err != nil {
			return err
		}
	}
	return nil
}

// IsSpentNullifier returns whether the nullifier has been marked spent.
func IsSpentNullifier(context Context, nullifier [32]byte) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}
	return accessor.Has(nullifierBucket.Key(nullifier[:]))
}
