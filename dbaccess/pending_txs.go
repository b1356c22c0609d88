package dbaccess

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/rollupnet/rollupd/database"
	"github.com/rollupnet/rollupd/rolluptx"
)

var (
	pendingTxBucket      = database.MakeBucket([]byte("pending-txs"))
	pendingTxIndexBucket = database.MakeBucket([]byte("pending-tx-index"))
	pendingTxSeqKey      = database.MakeBucket([]byte("meta")).Key([]byte("pending-tx-sequence"))
)

// StorePendingTx appends the transaction to the pending pool.  Pool order is
// insertion order, so the transaction is stored under the next sequence
// number and indexed by id for deletion.
func StorePendingTx(context Context, tx *rolluptx.RollupTx) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	seq, err := nextPendingTxSequence(accessor)
	if err != nil {
		return err
	}
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)

	serialized, err := tx.SerializeBytes()
	if err != nil {
		return err
	}
	if err := accessor.Put(pendingTxBucket.Key(seqBytes[:]), serialized); err != nil {
		return err
	}
	return accessor.Put(pendingTxIndexBucket.Key(tx.ID[:]), seqBytes[:])
}

// nextPendingTxSequence allocates the next pool sequence number.
func nextPendingTxSequence(accessor database.DataAccessor) (uint64, error) {
	seq := uint64(0)
	current, err := accessor.Get(pendingTxSeqKey)
	if err != nil && !database.IsNotFoundError(err) {
		return 0, err
	}
	if err == nil {
		seq = binary.BigEndian.Uint64(current)
	}
	var next [8]byte
	binary.BigEndian.PutUint64(next[:], seq+1)
	if err := accessor.Put(pendingTxSeqKey, next[:]); err != nil {
		return 0, err
	}
	return seq, nil
}

// PendingTxs returns every pending transaction in insertion order.
func PendingTxs(context Context) ([]*rolluptx.RollupTx, error) {
	cursor, err := context.cursor(pendingTxBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var txs []*rolluptx.RollupTx
	for cursor.Next() {
		serialized, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		tx, err := rolluptx.DeserializeTx(serialized)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// HasPendingTx returns whether a pending transaction with the given id
// exists.
func HasPendingTx(context Context, id rolluptx.TxID) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}
	return accessor.Has(pendingTxIndexBucket.Key(id[:]))
}

// DeletePendingTxs removes the given transactions from the pending pool.
// Unknown ids are ignored.
func DeletePendingTxs(context Context, ids []rolluptx.TxID) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	for _, id := range ids {
		indexKey := pendingTxIndexBucket.Key(id[:])
		seqBytes, err := accessor.Get(indexKey)
		if database.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "failed to look up pending tx %s", id)
		}
		if err := accessor.Delete(pendingTxBucket.Key(seqBytes)); err != nil {
			return err
		}
		if err := accessor.Delete(indexKey); err != nil {
			return err
		}
	}
	return nil
}
