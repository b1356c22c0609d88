// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package devprover is the development-network proving backend: proofs are
// placeholders and "publication" settles instantly into the local store.  It
// exists so a sequencer can run end-to-end without a SNARK prover or a
// settlement connection; production deployments plug real implementations
// into the same coordinator contracts.
package devprover

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	"github.com/rollupnet/rollupd/coordinator"
	"github.com/rollupnet/rollupd/database"
	"github.com/rollupnet/rollupd/dbaccess"
	"github.com/rollupnet/rollupd/rolluptx"
)

// Backend implements the coordinator's proving and publication contracts plus
// the settled-state views the pool validator reads.
type Backend struct {
	db database.Database

	mtx         sync.Mutex
	pendingTxs  []*rolluptx.RollupTx
	interrupted bool
}

// NewBackend returns a backend over the given store.
func NewBackend(db database.Database) *Backend {
	return &Backend{db: db}
}

// CreateRollup builds a placeholder circuit input and records the chunk's
// transactions for the eventual publication bookkeeping.
func (b *Backend) CreateRollup(txs []*rolluptx.RollupTx, bridgeCallDatas []rolluptx.BridgeCallData,
	assetIDs []uint32, isFirst bool) (*coordinator.CircuitInput, error) {

	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.interrupted {
		return nil, errors.New("dev prover interrupted")
	}
	if isFirst {
		b.pendingTxs = nil
	}
	b.pendingTxs = append(b.pendingTxs, txs...)

	hasher := sha3.NewLegacyKeccak256()
	for _, tx := range txs {
		hasher.Write(tx.ID[:])
	}
	return &coordinator.CircuitInput{Data: hasher.Sum(nil)}, nil
}

// Create returns a placeholder proof over the circuit input.
func (b *Backend) Create(txs []*rolluptx.RollupTx, circuitInput *coordinator.CircuitInput) (*coordinator.InnerProof, error) {
	b.mtx.Lock()
	interrupted := b.interrupted
	b.mtx.Unlock()
	if interrupted {
		return nil, errors.New("dev prover interrupted")
	}
	return &coordinator.InnerProof{Data: circuitInput.Data}, nil
}

// AggregateRollupProofs assembles the rollup record from the recorded
// transactions, drawing the next rollup id from the store.
func (b *Backend) AggregateRollupProofs(innerProofs []*coordinator.InnerProof,
	paddedBridgeCallDatas []rolluptx.BridgeCallData, assetIDs []uint32) (*rolluptx.Rollup, error) {

	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.interrupted {
		return nil, errors.New("dev prover interrupted")
	}

	rollupID, err := dbaccess.NextRollupID(dbaccess.NoTx(b.db))
	if err != nil {
		return nil, err
	}

	hasher := sha3.NewLegacyKeccak256()
	txIDs := make([]rolluptx.TxID, len(b.pendingTxs))
	for i, tx := range b.pendingTxs {
		txIDs[i] = tx.ID
		hasher.Write(tx.ID[:])
	}
	return &rolluptx.Rollup{
		ID:              rollupID,
		Created:         time.Now(),
		TxIDs:           txIDs,
		BridgeCallDatas: paddedBridgeCallDatas,
		AssetIDs:        assetIDs,
		ProofData:       hasher.Sum(nil),
	}, nil
}

// PublishRollup settles the rollup locally: the record is stored, the spent
// nullifiers are marked, and the carried transactions leave the pending
// pool, all in one database transaction.
func (b *Backend) PublishRollup(rollup *rolluptx.Rollup, estimatedGas uint64) (bool, error) {
	b.mtx.Lock()
	publishedTxs := b.pendingTxs
	b.pendingTxs = nil
	b.mtx.Unlock()

	settled := time.Now()
	rollup.Settled = &settled

	context, err := dbaccess.NewTx(b.db)
	if err != nil {
		return false, err
	}
	defer context.Rollback()

	if err := dbaccess.StoreRollup(context, rollup); err != nil {
		return false, err
	}
	var nullifiers [][32]byte
	for _, tx := range publishedTxs {
		nullifiers = append(nullifiers, tx.Nullifier1, tx.Nullifier2)
	}
	if err := dbaccess.StoreSpentNullifiers(context, nullifiers); err != nil {
		return false, err
	}
	if err := dbaccess.DeletePendingTxs(context, rollup.TxIDs); err != nil {
		return false, err
	}
	if err := context.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Interrupt tears down in-flight work.
func (b *Backend) Interrupt() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.interrupted = true
}

// PendingTxs returns the pool in insertion order.  Part of the validator's
// PendingPool contract.
func (b *Backend) PendingTxs() ([]*rolluptx.RollupTx, error) {
	return dbaccess.PendingTxs(dbaccess.NoTx(b.db))
}

// DeleteTxsByID removes the given transactions in one batch.  Part of the
// validator's PendingPool contract.
func (b *Backend) DeleteTxsByID(ids []rolluptx.TxID) error {
	context, err := dbaccess.NewTx(b.db)
	if err != nil {
		return err
	}
	defer context.Rollback()
	if err := dbaccess.DeletePendingTxs(context, ids); err != nil {
		return err
	}
	return context.Commit()
}

// IsSpent reports nullifier membership in the settled set.  Part of the
// validator's NullifierView contract.
func (b *Backend) IsSpent(nullifier [32]byte) (bool, error) {
	return dbaccess.IsSpentNullifier(dbaccess.NoTx(b.db), nullifier)
}

// devPendingDeposit is the per-(asset, owner) balance the development chain
// pretends every user has deposited.
var devPendingDeposit = new(big.Int).Lsh(big.NewInt(1), 128)

// UserPendingDeposit returns the development chain's bottomless pending
// balance.  Part of the validator's DepositView contract.
func (b *Backend) UserPendingDeposit(assetID uint32, owner [rolluptx.OwnerSize]byte) (*big.Int, error) {
	return devPendingDeposit, nil
}
