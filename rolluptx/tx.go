// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rolluptx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// TxIDSize is the size of a transaction id in bytes.
const TxIDSize = 32

// TxID is the keccak-256 hash of a transaction's proof data and uniquely
// identifies a pending transaction.
type TxID [TxIDSize]byte

// String returns the TxID as a hex string.
func (id TxID) String() string {
	return hex.EncodeToString(id[:])
}

// OwnerSize is the size of a Layer-1 address in bytes.
const OwnerSize = 20

// RollupTx is a pending transaction together with the decoded view of its
// proof-data fields the coordinator selects on.  Instances are read from the
// pending pool at the start of a tick and never mutated.
type RollupTx struct {
	// ID is the keccak-256 hash of the proof data.
	ID TxID

	// TxType is the proof kind.
	TxType TxType

	// Created is the time the transaction entered the pending pool.
	Created time.Time

	// FeeAssetID is the asset the fee is paid in.
	FeeAssetID uint32

	// FeeValue is the fee paid, in the fee asset's base units.  Fee values
	// are wei-scale and may exceed 64 bits.
	FeeValue *big.Int

	// ExcessGas is the gas-denominated fee paid above the minimum quoted
	// for this transaction's type.  This is the pool from which bridges
	// recover their fixed costs.
	ExcessGas int64

	// BridgeCallData identifies the bridge interaction for DEFI_DEPOSIT
	// transactions and is nil for every other type.
	BridgeCallData *BridgeCallData

	// NoteCommitment1 and NoteCommitment2 are the commitments of the two
	// output notes.  Later transactions chain to this one by naming either
	// commitment in their backward link.
	NoteCommitment1 [32]byte
	NoteCommitment2 [32]byte

	// Nullifier1 and Nullifier2 are revealed when the input notes are
	// spent.  A zero nullifier means the corresponding input is unused.
	Nullifier1 [32]byte
	Nullifier2 [32]byte

	// BackwardLink is the note commitment of a predecessor transaction
	// whose output this transaction consumes, or all zeros when the
	// transaction has no predecessor.
	BackwardLink [32]byte

	// PublicValue and PublicOwner describe the Layer-1 side of a DEPOSIT
	// and are zero for every other type.
	PublicValue *big.Int
	PublicOwner [OwnerSize]byte
}

// HasBackwardLink returns whether the transaction chains off a predecessor.
func (tx *RollupTx) HasBackwardLink() bool {
	return tx.BackwardLink != [32]byte{}
}

// IsDefi returns whether the transaction is a DeFi deposit.
func (tx *RollupTx) IsDefi() bool {
	return tx.TxType == TxTypeDefiDeposit
}

const (
	// feeValueEncodedSize is the fixed width fee values are serialized at.
	feeValueEncodedSize = 32

	// publicValueEncodedSize is the fixed width deposit values are
	// serialized at.
	publicValueEncodedSize = 32
)

// Serialize encodes the transaction into w in the pending-pool storage
// format.
func (tx *RollupTx) Serialize(w io.Writer) error {
	var scratch [32]byte

	writeBytes := func(b []byte) error {
		_, err := w.Write(b)
		return errors.WithStack(err)
	}

	if err := writeBytes(tx.ID[:]); err != nil {
		return err
	}
	if err := writeBytes([]byte{byte(tx.TxType)}); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(scratch[:8], uint64(tx.Created.UnixNano()))
	if err := writeBytes(scratch[:8]); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(scratch[:4], tx.FeeAssetID)
	if err := writeBytes(scratch[:4]); err != nil {
		return err
	}
	feeValue := tx.FeeValue
	if feeValue == nil {
		feeValue = new(big.Int)
	}
	if feeValue.BitLen() > feeValueEncodedSize*8 {
		return errors.Errorf("fee value %s exceeds %d bytes", feeValue, feeValueEncodedSize)
	}
	feeValue.FillBytes(scratch[:])
	if err := writeBytes(scratch[:]); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(scratch[:8], uint64(tx.ExcessGas))
	if err := writeBytes(scratch[:8]); err != nil {
		return err
	}
	var bridgeCallData [32]byte
	if tx.BridgeCallData != nil {
		bridgeCallData = tx.BridgeCallData.Bytes()
	}
	if err := writeBytes(bridgeCallData[:]); err != nil {
		return err
	}
	for _, field := range [][32]byte{
		tx.NoteCommitment1, tx.NoteCommitment2,
		tx.Nullifier1, tx.Nullifier2,
		tx.BackwardLink,
	} {
		if err := writeBytes(field[:]); err != nil {
			return err
		}
	}
	publicValue := tx.PublicValue
	if publicValue == nil {
		publicValue = new(big.Int)
	}
	if publicValue.BitLen() > publicValueEncodedSize*8 {
		return errors.Errorf("public value %s exceeds %d bytes", publicValue, publicValueEncodedSize)
	}
	publicValue.FillBytes(scratch[:])
	if err := writeBytes(scratch[:]); err != nil {
		return err
	}
	return writeBytes(tx.PublicOwner[:])
}

// Deserialize decodes a transaction from r.  It is the inverse of Serialize.
func (tx *RollupTx) Deserialize(r io.Reader) error {
	var scratch [32]byte

	readBytes := func(b []byte) error {
		_, err := io.ReadFull(r, b)
		return errors.WithStack(err)
	}

	if err := readBytes(tx.ID[:]); err != nil {
		return err
	}
	if err := readBytes(scratch[:1]); err != nil {
		return err
	}
	tx.TxType = TxType(scratch[0])
	if int(tx.TxType) >= NumTxTypes {
		return errors.Errorf("unknown transaction type %d", scratch[0])
	}
	if err := readBytes(scratch[:8]); err != nil {
		return err
	}
	tx.Created = time.Unix(0, int64(binary.BigEndian.Uint64(scratch[:8]))).UTC()
	if err := readBytes(scratch[:4]); err != nil {
		return err
	}
	tx.FeeAssetID = binary.BigEndian.Uint32(scratch[:4])
	if err := readBytes(scratch[:]); err != nil {
		return err
	}
	tx.FeeValue = new(big.Int).SetBytes(scratch[:])
	if err := readBytes(scratch[:8]); err != nil {
		return err
	}
	tx.ExcessGas = int64(binary.BigEndian.Uint64(scratch[:8]))
	if err := readBytes(scratch[:]); err != nil {
		return err
	}
	tx.BridgeCallData = nil
	if scratch != [32]byte{} {
		bridgeCallData, err := BridgeCallDataFromBytes(scratch)
		if err != nil {
			return err
		}
		tx.BridgeCallData = &bridgeCallData
	}
	for _, field := range []*[32]byte{
		&tx.NoteCommitment1, &tx.NoteCommitment2,
		&tx.Nullifier1, &tx.Nullifier2,
		&tx.BackwardLink,
	} {
		if err := readBytes(field[:]); err != nil {
			return err
		}
	}
	if err := readBytes(scratch[:]); err != nil {
		return err
	}
	tx.PublicValue = new(big.Int).SetBytes(scratch[:])
	return readBytes(tx.PublicOwner[:])
}

// SerializeBytes returns the transaction in its storage encoding.
func (tx *RollupTx) SerializeBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeTx decodes a transaction from its storage encoding.
func DeserializeTx(b []byte) (*RollupTx, error) {
	tx := &RollupTx{}
	if err := tx.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return tx, nil
}

// CalcTxID computes the transaction id over the proof-data fields.  The id is
// the keccak-256 hash the settlement layer derives, so clients can compute it
// before submission.
func CalcTxID(tx *RollupTx) TxID {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte{byte(tx.TxType)})
	hasher.Write(tx.NoteCommitment1[:])
	hasher.Write(tx.NoteCommitment2[:])
	hasher.Write(tx.Nullifier1[:])
	hasher.Write(tx.Nullifier2[:])
	hasher.Write(tx.BackwardLink[:])
	var id TxID
	copy(id[:], hasher.Sum(nil))
	return id
}
