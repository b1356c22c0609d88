// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math/big"
	"testing"
	"time"

	"github.com/rollupnet/rollupd/rolluptx"
)

// fakePool is an in-memory pending pool recording deletions.
type fakePool struct {
	txs     []*rolluptx.RollupTx
	deleted []rolluptx.TxID
}

func (p *fakePool) PendingTxs() ([]*rolluptx.RollupTx, error) {
	return p.txs, nil
}

func (p *fakePool) DeleteTxsByID(ids []rolluptx.TxID) error {
	p.deleted = append(p.deleted, ids...)
	return nil
}

// fakeNullifierView marks a fixed set of nullifiers spent.
type fakeNullifierView struct {
	spent map[[32]byte]bool
}

func (v *fakeNullifierView) IsSpent(nullifier [32]byte) (bool, error) {
	return v.spent[nullifier], nil
}

// fakeDepositView serves fixed per-(asset, owner) pending balances.
type fakeDepositView struct {
	pending map[uint32]map[[rolluptx.OwnerSize]byte]*big.Int
}

func (v *fakeDepositView) UserPendingDeposit(assetID uint32,
	owner [rolluptx.OwnerSize]byte) (*big.Int, error) {

	byOwner, ok := v.pending[assetID]
	if !ok {
		return new(big.Int), nil
	}
	pending, ok := byOwner[owner]
	if !ok {
		return new(big.Int), nil
	}
	return pending, nil
}

var validatorTxSeq byte

func newPoolTx(txType rolluptx.TxType) *rolluptx.RollupTx {
	validatorTxSeq++
	tx := &rolluptx.RollupTx{
		TxType:  txType,
		Created: time.Date(2021, 11, 11, 9, 0, 0, 0, time.UTC),
	}
	tx.NoteCommitment1[0] = validatorTxSeq
	tx.NoteCommitment1[1] = 1
	tx.NoteCommitment2[0] = validatorTxSeq
	tx.NoteCommitment2[1] = 2
	tx.Nullifier1[0] = validatorTxSeq
	tx.Nullifier1[1] = 3
	tx.Nullifier2[0] = validatorTxSeq
	tx.Nullifier2[1] = 4
	tx.ID = rolluptx.CalcTxID(tx)
	return tx
}

func newPoolDeposit(owner byte, value int64) *rolluptx.RollupTx {
	tx := newPoolTx(rolluptx.TxTypeDeposit)
	tx.PublicOwner[0] = owner
	tx.PublicValue = big.NewInt(value)
	tx.ID = rolluptx.CalcTxID(tx)
	return tx
}

func deletedSet(pool *fakePool) map[rolluptx.TxID]bool {
	deleted := make(map[rolluptx.TxID]bool)
	for _, id := range pool.deleted {
		deleted[id] = true
	}
	return deleted
}

func TestValidatorEvictsSpentNullifiers(t *testing.T) {
	spentTx := newPoolTx(rolluptx.TxTypeTransfer)
	freshTx := newPoolTx(rolluptx.TxTypeTransfer)
	pool := &fakePool{txs: []*rolluptx.RollupTx{spentTx, freshTx}}
	nullifiers := &fakeNullifierView{spent: map[[32]byte]bool{spentTx.Nullifier2: true}}
	validator := NewValidator(pool, nullifiers, &fakeDepositView{})

	if err := validator.HandleSettledBlock(); err != nil {
		t.Fatalf("TestValidatorEvictsSpentNullifiers: unexpected error: %+v", err)
	}
	deleted := deletedSet(pool)
	if !deleted[spentTx.ID] {
		t.Error("TestValidatorEvictsSpentNullifiers: spent tx not evicted")
	}
	if deleted[freshTx.ID] {
		t.Error("TestValidatorEvictsSpentNullifiers: fresh tx evicted")
	}
}

func TestValidatorDepositCap(t *testing.T) {
	// Three 10,000 deposits against a 19,999 pending balance: the third
	// exceeds the running sum and is evicted, and everything chained off
	// it cascades.  Deposits chained off accepted txs survive.
	deposit1 := newPoolDeposit('O', 10000)
	deposit2 := newPoolDeposit('O', 10000)
	deposit3 := newPoolDeposit('O', 10000)
	send4 := newPoolTx(rolluptx.TxTypeTransfer)
	send4.BackwardLink = deposit3.NoteCommitment1
	send5 := newPoolTx(rolluptx.TxTypeTransfer)
	send5.BackwardLink = send4.NoteCommitment1

	pool := &fakePool{txs: []*rolluptx.RollupTx{deposit1, deposit2, deposit3, send4, send5}}
	deposits := &fakeDepositView{pending: map[uint32]map[[rolluptx.OwnerSize]byte]*big.Int{
		0: {deposit1.PublicOwner: big.NewInt(19999)},
	}}
	validator := NewValidator(pool, &fakeNullifierView{}, deposits)

	if err := validator.HandleSettledBlock(); err != nil {
		t.Fatalf("TestValidatorDepositCap: unexpected error: %+v", err)
	}
	deleted := deletedSet(pool)
	for _, tx := range []*rolluptx.RollupTx{deposit3, send4, send5} {
		if !deleted[tx.ID] {
			t.Errorf("TestValidatorDepositCap: tx %s not evicted", tx.ID)
		}
	}
	for _, tx := range []*rolluptx.RollupTx{deposit1, deposit2} {
		if deleted[tx.ID] {
			t.Errorf("TestValidatorDepositCap: tx %s wrongly evicted", tx.ID)
		}
	}

	if len(pool.deleted) != 3 {
		t.Errorf("TestValidatorDepositCap: %d evictions, want 3", len(pool.deleted))
	}
}

func TestValidatorLaterSmallerDepositFits(t *testing.T) {
	// A rejected deposit does not consume balance: a later, smaller
	// deposit for the same owner still fits.
	bigDeposit := newPoolDeposit('P', 30000)
	smallDeposit := newPoolDeposit('P', 5000)
	pool := &fakePool{txs: []*rolluptx.RollupTx{bigDeposit, smallDeposit}}
	deposits := &fakeDepositView{pending: map[uint32]map[[rolluptx.OwnerSize]byte]*big.Int{
		0: {bigDeposit.PublicOwner: big.NewInt(20000)},
	}}
	validator := NewValidator(pool, &fakeNullifierView{}, deposits)

	if err := validator.HandleSettledBlock(); err != nil {
		t.Fatalf("TestValidatorLaterSmallerDepositFits: unexpected error: %+v", err)
	}
	deleted := deletedSet(pool)
	if !deleted[bigDeposit.ID] {
		t.Error("TestValidatorLaterSmallerDepositFits: oversized deposit not evicted")
	}
	if deleted[smallDeposit.ID] {
		t.Error("TestValidatorLaterSmallerDepositFits: later smaller deposit evicted")
	}
}

func TestValidatorChainOffAcceptedTxSurvives(t *testing.T) {
	parent := newPoolTx(rolluptx.TxTypeTransfer)
	child := newPoolTx(rolluptx.TxTypeTransfer)
	child.BackwardLink = parent.NoteCommitment2
	pool := &fakePool{txs: []*rolluptx.RollupTx{parent, child}}
	validator := NewValidator(pool, &fakeNullifierView{}, &fakeDepositView{})

	if err := validator.HandleSettledBlock(); err != nil {
		t.Fatalf("TestValidatorChainOffAcceptedTxSurvives: unexpected error: %+v", err)
	}
	if len(pool.deleted) != 0 {
		t.Errorf("TestValidatorChainOffAcceptedTxSurvives: %d evictions, want 0",
			len(pool.deleted))
	}
}

func TestValidatorRejectedDepositDoesNotConsume(t *testing.T) {
	// A deposit evicted for chaining off a rejected tx must not count
	// toward the owner's running sum.
	spentParent := newPoolTx(rolluptx.TxTypeTransfer)
	chainedDeposit := newPoolDeposit('Q', 15000)
	chainedDeposit.BackwardLink = spentParent.NoteCommitment1
	chainedDeposit.ID = rolluptx.CalcTxID(chainedDeposit)
	laterDeposit := newPoolDeposit('Q', 15000)

	pool := &fakePool{txs: []*rolluptx.RollupTx{spentParent, chainedDeposit, laterDeposit}}
	nullifiers := &fakeNullifierView{spent: map[[32]byte]bool{spentParent.Nullifier1: true}}
	deposits := &fakeDepositView{pending: map[uint32]map[[rolluptx.OwnerSize]byte]*big.Int{
		0: {chainedDeposit.PublicOwner: big.NewInt(20000)},
	}}
	validator := NewValidator(pool, nullifiers, deposits)

	if err := validator.HandleSettledBlock(); err != nil {
		t.Fatalf("TestValidatorRejectedDepositDoesNotConsume: unexpected error: %+v", err)
	}
	deleted := deletedSet(pool)
	if !deleted[spentParent.ID] || !deleted[chainedDeposit.ID] {
		t.Error("TestValidatorRejectedDepositDoesNotConsume: chain rejection did not cascade")
	}
	if deleted[laterDeposit.ID] {
		t.Error("TestValidatorRejectedDepositDoesNotConsume: later deposit evicted " +
			"despite the rejected one not consuming balance")
	}
}

func TestValidatorZeroNullifierIsUnspent(t *testing.T) {
	// A zero nullifier marks an unused input and never reads as spent,
	// even when the view would claim otherwise.
	tx := newPoolTx(rolluptx.TxTypeTransfer)
	tx.Nullifier2 = [32]byte{}
	tx.ID = rolluptx.CalcTxID(tx)
	pool := &fakePool{txs: []*rolluptx.RollupTx{tx}}
	nullifiers := &fakeNullifierView{spent: map[[32]byte]bool{{}: true}}
	validator := NewValidator(pool, nullifiers, &fakeDepositView{})

	if err := validator.HandleSettledBlock(); err != nil {
		t.Fatalf("TestValidatorZeroNullifierIsUnspent: unexpected error: %+v", err)
	}
	if len(pool.deleted) != 0 {
		t.Error("TestValidatorZeroNullifierIsUnspent: tx with zero nullifier evicted")
	}
}
