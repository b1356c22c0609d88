// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rolluptx

import (
	"math/big"
	"reflect"
	"testing"
	"time"
)

func TestRollupTxSerialization(t *testing.T) {
	bridgeCallData := BridgeCallData{BridgeAddressID: 3, InputAssetIDA: 1, OutputAssetIDA: 2}
	feeValue, ok := new(big.Int).SetString("250000000000000000000", 10)
	if !ok {
		t.Fatal("TestRollupTxSerialization: failed to parse fee value")
	}
	tx := &RollupTx{
		TxType:         TxTypeDefiDeposit,
		Created:        time.Date(2021, 11, 11, 9, 10, 0, 0, time.UTC),
		FeeAssetID:     1,
		FeeValue:       feeValue,
		ExcessGas:      1 << 40,
		BridgeCallData: &bridgeCallData,
		PublicValue:    new(big.Int),
	}
	tx.NoteCommitment1[5] = 0xaa
	tx.NoteCommitment2[6] = 0xbb
	tx.Nullifier1[7] = 0xcc
	tx.BackwardLink[8] = 0xdd
	tx.ID = CalcTxID(tx)

	serialized, err := tx.SerializeBytes()
	if err != nil {
		t.Fatalf("TestRollupTxSerialization: serialize failed: %+v", err)
	}
	decoded, err := DeserializeTx(serialized)
	if err != nil {
		t.Fatalf("TestRollupTxSerialization: deserialize failed: %+v", err)
	}
	if decoded.ID != tx.ID || decoded.TxType != tx.TxType ||
		decoded.FeeAssetID != tx.FeeAssetID || decoded.ExcessGas != tx.ExcessGas {

		t.Fatalf("TestRollupTxSerialization: round trip mismatch: got %+v, want %+v",
			decoded, tx)
	}
	if !decoded.Created.Equal(tx.Created) {
		t.Errorf("TestRollupTxSerialization: created is %s, want %s",
			decoded.Created, tx.Created)
	}
	if decoded.FeeValue.Cmp(tx.FeeValue) != 0 {
		t.Errorf("TestRollupTxSerialization: fee value is %s, want %s",
			decoded.FeeValue, tx.FeeValue)
	}
	if decoded.BridgeCallData == nil || *decoded.BridgeCallData != bridgeCallData {
		t.Errorf("TestRollupTxSerialization: bridge call data is %+v, want %+v",
			decoded.BridgeCallData, bridgeCallData)
	}
	if decoded.NoteCommitment1 != tx.NoteCommitment1 ||
		decoded.NoteCommitment2 != tx.NoteCommitment2 ||
		decoded.Nullifier1 != tx.Nullifier1 ||
		decoded.BackwardLink != tx.BackwardLink {

		t.Error("TestRollupTxSerialization: commitment fields mangled")
	}
	reserialized, err := decoded.SerializeBytes()
	if err != nil {
		t.Fatalf("TestRollupTxSerialization: reserialize failed: %+v", err)
	}
	if !reflect.DeepEqual(reserialized, serialized) {
		t.Error("TestRollupTxSerialization: reserialized bytes differ")
	}
}

func TestDeserializeTxRejectsUnknownType(t *testing.T) {
	tx := &RollupTx{TxType: TxTypeTransfer, Created: time.Unix(0, 0)}
	serialized, err := tx.SerializeBytes()
	if err != nil {
		t.Fatalf("TestDeserializeTxRejectsUnknownType: serialize failed: %+v", err)
	}
	// The type byte sits right after the 32-byte id.
	serialized[TxIDSize] = byte(NumTxTypes)
	if _, err := DeserializeTx(serialized); err == nil {
		t.Fatal("TestDeserializeTxRejectsUnknownType: no error for unknown tx type")
	}
}

func TestCalcTxIDCommitsToProofFields(t *testing.T) {
	tx1 := &RollupTx{TxType: TxTypeTransfer}
	tx1.NoteCommitment1[0] = 1
	tx2 := &RollupTx{TxType: TxTypeTransfer}
	tx2.NoteCommitment1[0] = 2

	if CalcTxID(tx1) == CalcTxID(tx2) {
		t.Error("TestCalcTxIDCommitsToProofFields: distinct txs share an id")
	}
	if CalcTxID(tx1) != CalcTxID(tx1) {
		t.Error("TestCalcTxIDCommitsToProofFields: id is not deterministic")
	}
}
