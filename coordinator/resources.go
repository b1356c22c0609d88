// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"github.com/rollupnet/rollupd/rolluptx"
)

// RollupResources accumulates the multi-dimensional resource usage of a batch
// under construction: Layer-1 gas, Layer-1 calldata, the ordered bridge-call
// vector, and the fee-paying asset set.
type RollupResources struct {
	// GasUsed is the estimated Layer-1 gas of the batch, including the
	// verification gas reserved for every slot and the one-shot gas of
	// each admitted bridge.
	GasUsed uint64

	// CallDataUsed is the Layer-1 calldata consumed by the batch, in
	// bytes.
	CallDataUsed uint64

	// BridgeCallDatas is the ordered set of admitted bridge calls.  Its
	// length never exceeds the deployment's bridge-slot count.
	BridgeCallDatas []rolluptx.BridgeCallData

	// AssetIDs is the ordered set of fee-paying assets referenced by the
	// batch.  Its length never exceeds the deployment's asset count.
	AssetIDs []uint32
}

// HasBridge returns whether the bridge call is already admitted.
func (r *RollupResources) HasBridge(bridgeCallData rolluptx.BridgeCallData) bool {
	for _, existing := range r.BridgeCallDatas {
		if existing == bridgeCallData {
			return true
		}
	}
	return false
}

// AddBridge appends the bridge call to the admitted set.
func (r *RollupResources) AddBridge(bridgeCallData rolluptx.BridgeCallData) {
	r.BridgeCallDatas = append(r.BridgeCallDatas, bridgeCallData)
}

// HasAsset returns whether the asset is already in the batch's asset set.
func (r *RollupResources) HasAsset(assetID uint32) bool {
	for _, existing := range r.AssetIDs {
		if existing == assetID {
			return true
		}
	}
	return false
}

// AddAsset appends the asset to the batch's asset set.
func (r *RollupResources) AddAsset(assetID uint32) {
	r.AssetIDs = append(r.AssetIDs, assetID)
}
