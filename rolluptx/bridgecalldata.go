// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rolluptx

import (
	"math/big"

	"github.com/pkg/errors"
)

// The on-chain encoding packs a bridge call into the low 248 bits of a
// 256-bit word:
//
//   bits [0, 32)    bridge address id
//   bits [32, 62)   input asset id A
//   bits [62, 92)   input asset id B
//   bits [92, 122)  output asset id A
//   bits [122, 152) output asset id B
//   bits [152, 184) bit config
//   bits [184, 248) aux data
//
// Each asset id field is 30 bits wide.  Bit 29 of an asset id field marks a
// virtual asset: an off-chain identity whose value references the interaction
// nonce that created it rather than a Layer-1 token.
const (
	bridgeAddressIDShift = 0
	inputAssetIDAShift   = 32
	inputAssetIDBShift   = 62
	outputAssetIDAShift  = 92
	outputAssetIDBShift  = 122
	bitConfigShift       = 152
	auxDataShift         = 184

	bridgeAddressIDBits = 32
	assetIDBits         = 30
	bitConfigBits       = 32
	auxDataBits         = 64
)

// VirtualAssetIDFlag is set on a 30-bit asset id field when the asset is
// virtual.  The remaining 29 bits then hold the interaction nonce of the
// interaction that created the asset.
const VirtualAssetIDFlag = uint32(1) << 29

// Bit config flags.
const (
	bitConfigSecondInputInUse  = 1 << 0
	bitConfigSecondOutputInUse = 1 << 1
)

// BridgeCallData identifies a single DeFi bridge invocation: which bridge
// contract, which input and output assets, and the bridge-specific aux data.
// The zero value is not a valid bridge call and doubles as padding in the
// published bridge-call vector.
type BridgeCallData struct {
	BridgeAddressID uint32
	InputAssetIDA   uint32
	InputAssetIDB   uint32
	OutputAssetIDA  uint32
	OutputAssetIDB  uint32
	AuxData         uint64

	// SecondInputInUse and SecondOutputInUse report whether the B-side
	// asset fields carry a real asset.  A zero asset id is a valid asset
	// (ETH), so presence cannot be inferred from the id alone.
	SecondInputInUse  bool
	SecondOutputInUse bool
}

// IsZero returns whether b is the zero (padding) bridge call.
func (b BridgeCallData) IsZero() bool {
	return b == BridgeCallData{}
}

// bitConfig packs the presence flags into the bit-config field.
func (b BridgeCallData) bitConfig() uint64 {
	var config uint64
	if b.SecondInputInUse {
		config |= bitConfigSecondInputInUse
	}
	if b.SecondOutputInUse {
		config |= bitConfigSecondOutputInUse
	}
	return config
}

// BigInt returns the 256-bit on-chain encoding of the bridge call data.
func (b BridgeCallData) BigInt() *big.Int {
	result := new(big.Int)
	or := func(value uint64, shift uint) {
		part := new(big.Int).Lsh(new(big.Int).SetUint64(value), shift)
		result.Or(result, part)
	}
	or(uint64(b.BridgeAddressID), bridgeAddressIDShift)
	or(uint64(b.InputAssetIDA), inputAssetIDAShift)
	or(uint64(b.InputAssetIDB), inputAssetIDBShift)
	or(uint64(b.OutputAssetIDA), outputAssetIDAShift)
	or(uint64(b.OutputAssetIDB), outputAssetIDBShift)
	or(b.bitConfig(), bitConfigShift)
	or(b.AuxData, auxDataShift)
	return result
}

// Bytes returns the encoding as a big-endian 32-byte word, the form the
// published rollup carries.
func (b BridgeCallData) Bytes() [32]byte {
	var buf [32]byte
	b.BigInt().FillBytes(buf[:])
	return buf
}

// extractBits returns the width-bit field of value starting at shift.
func extractBits(value *big.Int, shift, width uint) uint64 {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), width), big.NewInt(1))
	field := new(big.Int).Rsh(value, shift)
	return field.And(field, mask).Uint64()
}

// BridgeCallDataFromBigInt decodes a 256-bit on-chain bridge call encoding.
// An error is returned if bits above the encoded width are set.
func BridgeCallDataFromBigInt(value *big.Int) (BridgeCallData, error) {
	if value.Sign() < 0 || value.BitLen() > auxDataShift+auxDataBits {
		return BridgeCallData{}, errors.Errorf("bridge call data %s out of range", value)
	}
	config := extractBits(value, bitConfigShift, bitConfigBits)
	if config &^ (bitConfigSecondInputInUse | bitConfigSecondOutputInUse) != 0 {
		return BridgeCallData{}, errors.Errorf("bridge call data has unknown bit config %x", config)
	}
	return BridgeCallData{
		BridgeAddressID:   uint32(extractBits(value, bridgeAddressIDShift, bridgeAddressIDBits)),
		InputAssetIDA:     uint32(extractBits(value, inputAssetIDAShift, assetIDBits)),
		InputAssetIDB:     uint32(extractBits(value, inputAssetIDBShift, assetIDBits)),
		OutputAssetIDA:    uint32(extractBits(value, outputAssetIDAShift, assetIDBits)),
		OutputAssetIDB:    uint32(extractBits(value, outputAssetIDBShift, assetIDBits)),
		AuxData:           extractBits(value, auxDataShift, auxDataBits),
		SecondInputInUse:  config&bitConfigSecondInputInUse != 0,
		SecondOutputInUse: config&bitConfigSecondOutputInUse != 0,
	}, nil
}

// BridgeCallDataFromBytes decodes the big-endian 32-byte form.
func BridgeCallDataFromBytes(buf [32]byte) (BridgeCallData, error) {
	return BridgeCallDataFromBigInt(new(big.Int).SetBytes(buf[:]))
}

// IsVirtualAsset returns whether the given 30-bit asset id field refers to a
// virtual asset.
func IsVirtualAsset(assetID uint32) bool {
	return assetID&VirtualAssetIDFlag != 0
}
