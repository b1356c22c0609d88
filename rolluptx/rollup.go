// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rolluptx

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Rollup is an aggregated batch of transactions together with its outer proof,
// ready for (or already accepted by) the settlement layer.
type Rollup struct {
	// ID is the rollup's monotonically increasing sequence number.  No two
	// rollups with the same id are ever published.
	ID uint64

	// Created is the time aggregation completed.
	Created time.Time

	// TxIDs lists the transactions carried by the rollup, in rollup order.
	TxIDs []TxID

	// BridgeCallDatas is the bridge-call vector, right-padded with zero
	// entries to the deployment's bridge-slot count.
	BridgeCallDatas []BridgeCallData

	// AssetIDs lists the fee-paying assets referenced by the rollup.
	AssetIDs []uint32

	// ProofData is the aggregated outer proof.
	ProofData []byte

	// Settled is the time the settlement layer accepted the rollup, or nil
	// while publication is pending.
	Settled *time.Time
}

// Serialize encodes the rollup into w in its storage format.
func (r *Rollup) Serialize(w io.Writer) error {
	var scratch [32]byte

	writeBytes := func(b []byte) error {
		_, err := w.Write(b)
		return errors.WithStack(err)
	}
	writeUint64 := func(v uint64) error {
		binary.BigEndian.PutUint64(scratch[:8], v)
		return writeBytes(scratch[:8])
	}

	if err := writeUint64(r.ID); err != nil {
		return err
	}
	if err := writeUint64(uint64(r.Created.UnixNano())); err != nil {
		return err
	}
	if err := writeUint64(uint64(len(r.TxIDs))); err != nil {
		return err
	}
	for _, txID := range r.TxIDs {
		if err := writeBytes(txID[:]); err != nil {
			return err
		}
	}
	if err := writeUint64(uint64(len(r.BridgeCallDatas))); err != nil {
		return err
	}
	for _, bridgeCallData := range r.BridgeCallDatas {
		encoded := bridgeCallData.Bytes()
		if err := writeBytes(encoded[:]); err != nil {
			return err
		}
	}
	if err := writeUint64(uint64(len(r.AssetIDs))); err != nil {
		return err
	}
	for _, assetID := range r.AssetIDs {
		binary.BigEndian.PutUint32(scratch[:4], assetID)
		if err := writeBytes(scratch[:4]); err != nil {
			return err
		}
	}
	if err := writeUint64(uint64(len(r.ProofData))); err != nil {
		return err
	}
	if err := writeBytes(r.ProofData); err != nil {
		return err
	}
	if r.Settled == nil {
		scratch[0] = 0
		return writeBytes(scratch[:1])
	}
	scratch[0] = 1
	if err := writeBytes(scratch[:1]); err != nil {
		return err
	}
	return writeUint64(uint64(r.Settled.UnixNano()))
}

// Deserialize decodes a rollup from r.  It is the inverse of Serialize.
func (r *Rollup) Deserialize(reader io.Reader) error {
	var scratch [32]byte

	readBytes := func(b []byte) error {
		_, err := io.ReadFull(reader, b)
		return errors.WithStack(err)
	}
	readUint64 := func() (uint64, error) {
		if err := readBytes(scratch[:8]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(scratch[:8]), nil
	}

	id, err := readUint64()
	if err != nil {
		return err
	}
	r.ID = id
	createdNanos, err := readUint64()
	if err != nil {
		return err
	}
	r.Created = time.Unix(0, int64(createdNanos)).UTC()
	numTxs, err := readUint64()
	if err != nil {
		return err
	}
	r.TxIDs = make([]TxID, numTxs)
	for i := range r.TxIDs {
		if err := readBytes(r.TxIDs[i][:]); err != nil {
			return err
		}
	}
	numBridgeCalls, err := readUint64()
	if err != nil {
		return err
	}
	r.BridgeCallDatas = make([]BridgeCallData, numBridgeCalls)
	for i := range r.BridgeCallDatas {
		if err := readBytes(scratch[:]); err != nil {
			return err
		}
		r.BridgeCallDatas[i], err = BridgeCallDataFromBytes(scratch)
		if err != nil {
			return err
		}
	}
	numAssets, err := readUint64()
	if err != nil {
		return err
	}
	r.AssetIDs = make([]uint32, numAssets)
	for i := range r.AssetIDs {
		if err := readBytes(scratch[:4]); err != nil {
			return err
		}
		r.AssetIDs[i] = binary.BigEndian.Uint32(scratch[:4])
	}
	proofSize, err := readUint64()
	if err != nil {
		return err
	}
	r.ProofData = make([]byte, proofSize)
	if err := readBytes(r.ProofData); err != nil {
		return err
	}
	if err := readBytes(scratch[:1]); err != nil {
		return err
	}
	r.Settled = nil
	if scratch[0] != 0 {
		settledNanos, err := readUint64()
		if err != nil {
			return err
		}
		settled := time.Unix(0, int64(settledNanos)).UTC()
		r.Settled = &settled
	}
	return nil
}

// SerializeBytes returns the rollup in its storage encoding.
func (r *Rollup) SerializeBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeRollup decodes a rollup from its storage encoding.
func DeserializeRollup(b []byte) (*Rollup, error) {
	rollup := &Rollup{}
	if err := rollup.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return rollup, nil
}
