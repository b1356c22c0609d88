package dbaccess

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/rollupnet/rollupd/database"
	"github.com/rollupnet/rollupd/rolluptx"
)

var (
	rollupBucket    = database.MakeBucket([]byte("rollups"))
	nextRollupIDKey = database.MakeBucket([]byte("meta")).Key([]byte("next-rollup-id"))
)

func rollupKey(id uint64) []byte {
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], id)
	return rollupBucket.Key(idBytes[:])
}

// NextRollupID returns the id the next published rollup will carry.  Ids are
// monotonically increasing; no two rollups with the same id are ever
// published.
func NextRollupID(context Context) (uint64, error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, err
	}
	current, err := accessor.Get(nextRollupIDKey)
	if database.IsNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(current), nil
}

// StoreRollup stores the rollup under its id and advances the next-rollup-id
// counter when the rollup's id is at or past it.
func StoreRollup(context Context, rollup *rolluptx.Rollup) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	serialized, err := rollup.SerializeBytes()
	if err != nil {
		return err
	}
	if err := accessor.Put(rollupKey(rollup.ID), serialized); err != nil {
		return err
	}

	nextID, err := NextRollupID(context)
	if err != nil {
		return err
	}
	if rollup.ID >= nextID {
		var next [8]byte
		binary.BigEndian.PutUint64(next[:], rollup.ID+1)
		return accessor.Put(nextRollupIDKey, next[:])
	}
	return nil
}

// FetchRollup returns the rollup with the given id.
func FetchRollup(context Context, id uint64) (*rolluptx.Rollup, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}
	serialized, err := accessor.Get(rollupKey(id))
	if database.IsNotFoundError(err) {
		return nil, errors.Wrapf(err, "couldn't find rollup %d", id)
	}
	if err != nil {
		return nil, err
	}
	return rolluptx.DeserializeRollup(serialized)
}

// RollupsAfter returns every stored rollup with an id at or above fromID, in
// id order.
func RollupsAfter(context Context, fromID uint64) ([]*rolluptx.Rollup, error) {
	cursor, err := context.cursor(rollupBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var rollups []*rolluptx.Rollup
	for cursor.Next() {
		serialized, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		rollup, err := rolluptx.DeserializeRollup(serialized)
		if err != nil {
			return nil, err
		}
		if rollup.ID < fromID {
			continue
		}
		rollups = append(rollups, rollup)
	}
	return rollups, nil
}
