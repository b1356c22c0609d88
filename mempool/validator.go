// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/rollupnet/rollupd/rolluptx"
)

// NullifierView is a read-only view of the nullifier set after the most
// recently settled block.
type NullifierView interface {
	// IsSpent returns whether the nullifier is present in the settled
	// nullifier tree.
	IsSpent(nullifier [32]byte) (bool, error)
}

// DepositView reads a user's on-chain pending deposit balance after the most
// recently settled block.
type DepositView interface {
	// UserPendingDeposit returns the funds the owner has deposited to the
	// settlement contract but not yet consumed, for the given asset.
	UserPendingDeposit(assetID uint32, owner [rolluptx.OwnerSize]byte) (*big.Int, error)
}

// PendingPool is the slice of the transaction database the validator works
// against.
type PendingPool interface {
	// PendingTxs returns all pending transactions in insertion order.
	PendingTxs() ([]*rolluptx.RollupTx, error)

	// DeleteTxsByID removes the given transactions in a single batch.
	DeleteTxsByID(ids []rolluptx.TxID) error
}

// Validator polices the pending pool on every settled block, evicting
// transactions the settled state has invalidated: double spends, deposits
// whose on-chain pending balance no longer covers them, and everything
// chained off an evicted transaction.
type Validator struct {
	pool       PendingPool
	nullifiers NullifierView
	deposits   DepositView
}

// NewValidator returns a validator over the given pool and settled-state
// views.
func NewValidator(pool PendingPool, nullifiers NullifierView, deposits DepositView) *Validator {
	return &Validator{
		pool:       pool,
		nullifiers: nullifiers,
		deposits:   deposits,
	}
}

// depositKey identifies the running per-(asset, owner) deposit sum.
type depositKey struct {
	assetID uint32
	owner   [rolluptx.OwnerSize]byte
}

// HandleSettledBlock walks the pending pool in insertion order against the
// post-block settled state and deletes every transaction that can no longer
// settle.  Rejections are ordinary policy outcomes, not errors.
func (v *Validator) HandleSettledBlock() error {
	pendingTxs, err := v.pool.PendingTxs()
	if err != nil {
		return errors.Wrap(err, "failed to read pending transactions")
	}

	rejectedCommitments := make(map[[32]byte]struct{})
	consumedDeposits := make(map[depositKey]*big.Int)
	var toDelete []rolluptx.TxID

	for _, tx := range pendingTxs {
		rejected, reason, err := v.checkTx(tx, rejectedCommitments, consumedDeposits)
		if err != nil {
			return err
		}
		if !rejected {
			continue
		}
		log.Debugf("Evicting pending tx %s: %s", tx.ID, reason)
		rejectedCommitments[tx.NoteCommitment1] = struct{}{}
		rejectedCommitments[tx.NoteCommitment2] = struct{}{}
		toDelete = append(toDelete, tx.ID)
	}

	if len(toDelete) == 0 {
		return nil
	}
	log.Infof("Evicting %d of %d pending transactions after settled block",
		len(toDelete), len(pendingTxs))
	return errors.Wrap(v.pool.DeleteTxsByID(toDelete), "failed to delete rejected transactions")
}

// checkTx applies the rejection rules to a single transaction.  Accepted
// deposits accumulate into the running per-(asset, owner) sums.
func (v *Validator) checkTx(tx *rolluptx.RollupTx, rejectedCommitments map[[32]byte]struct{},
	consumedDeposits map[depositKey]*big.Int) (rejected bool, reason string, err error) {

	spent, err := v.isSpent(tx.Nullifier1)
	if err != nil {
		return false, "", err
	}
	if !spent {
		spent, err = v.isSpent(tx.Nullifier2)
		if err != nil {
			return false, "", err
		}
	}
	if spent {
		return true, "nullifier already spent", nil
	}

	exceedsDeposit := false
	var key depositKey
	var newConsumed *big.Int
	if tx.TxType == rolluptx.TxTypeDeposit {
		key = depositKey{assetID: tx.FeeAssetID, owner: tx.PublicOwner}
		pending, err := v.deposits.UserPendingDeposit(key.assetID, key.owner)
		if err != nil {
			return false, "", errors.Wrap(err, "failed to read pending deposit")
		}
		consumed, ok := consumedDeposits[key]
		if !ok {
			consumed = new(big.Int)
		}
		publicValue := tx.PublicValue
		if publicValue == nil {
			publicValue = new(big.Int)
		}
		newConsumed = new(big.Int).Add(consumed, publicValue)
		// A rejected deposit does not consume balance: later, smaller
		// deposits for the same key may still fit.
		exceedsDeposit = newConsumed.Cmp(pending) > 0
	}
	if exceedsDeposit {
		return true, "deposit exceeds on-chain pending balance", nil
	}

	if tx.HasBackwardLink() {
		if _, ok := rejectedCommitments[tx.BackwardLink]; ok {
			return true, "chains off a rejected transaction", nil
		}
	}

	if tx.TxType == rolluptx.TxTypeDeposit {
		consumedDeposits[key] = newConsumed
	}
	return false, "", nil
}

// isSpent reports nullifier membership, treating the zero nullifier (an
// unused input) as unspent.
func (v *Validator) isSpent(nullifier [32]byte) (bool, error) {
	if nullifier == ([32]byte{}) {
		return false, nil
	}
	spent, err := v.nullifiers.IsSpent(nullifier)
	return spent, errors.Wrap(err, "failed to read nullifier")
}
