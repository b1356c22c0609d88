// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fees

import (
	"github.com/rollupnet/rollupd/coordinator"
	"github.com/rollupnet/rollupd/rolluptx"
)

// Default per-type gas quotes.  These mirror the cost model of the settlement
// contract: every slot carries the shared verification gas, and each type
// adds the gas of its own on-chain side effects.
var defaultTxGas = map[rolluptx.TxType]uint64{
	rolluptx.TxTypeDeposit:         75000,
	rolluptx.TxTypeTransfer:        55000,
	rolluptx.TxTypeWithdrawLowGas:  65000,
	rolluptx.TxTypeWithdrawHighGas: 95000,
	rolluptx.TxTypeAccount:         60000,
	rolluptx.TxTypeDefiDeposit:     70000,
	rolluptx.TxTypeDefiClaim:       80000,
}

// Default per-type calldata sizes in bytes.
var defaultTxCallData = map[rolluptx.TxType]uint64{
	rolluptx.TxTypeDeposit:         185,
	rolluptx.TxTypeTransfer:        129,
	rolluptx.TxTypeWithdrawLowGas:  185,
	rolluptx.TxTypeWithdrawHighGas: 185,
	rolluptx.TxTypeAccount:         129,
	rolluptx.TxTypeDefiDeposit:     185,
	rolluptx.TxTypeDefiClaim:       129,
}

const defaultBaseVerificationGas = 50000

// StaticResolver is a TxFeeResolver quoting from fixed tables and the bridge
// registry.  It serves deployments whose fee schedule is set at start-up; a
// live gas oracle can replace it without the coordinator noticing.
type StaticResolver struct {
	bridgeResolver  coordinator.BridgeResolver
	feePayingAssets map[uint32]bool
}

// NewStaticResolver returns a resolver quoting the default cost tables.
// feePayingAssets lists the assets fees may be paid in.
func NewStaticResolver(bridgeResolver coordinator.BridgeResolver,
	feePayingAssets []uint32) *StaticResolver {

	assets := make(map[uint32]bool, len(feePayingAssets))
	for _, assetID := range feePayingAssets {
		assets[assetID] = true
	}
	return &StaticResolver{
		bridgeResolver:  bridgeResolver,
		feePayingAssets: assets,
	}
}

// UnadjustedBaseVerificationGas returns the verification gas reserved for
// every rollup slot.
func (r *StaticResolver) UnadjustedBaseVerificationGas() uint64 {
	return defaultBaseVerificationGas
}

// UnadjustedTxGas returns the full gas cost of a transaction of the given
// type.
func (r *StaticResolver) UnadjustedTxGas(assetID uint32, txType rolluptx.TxType) uint64 {
	return defaultTxGas[txType]
}

// TxCallData returns the calldata a transaction of the given type occupies.
func (r *StaticResolver) TxCallData(txType rolluptx.TxType) uint64 {
	return defaultTxCallData[txType]
}

// bridgeConfig finds the registry entry for the bridge call, or false.
func (r *StaticResolver) bridgeConfig(bridgeCallData rolluptx.BridgeCallData) (coordinator.BridgeConfig, bool) {
	for _, config := range r.bridgeResolver.BridgeConfigs() {
		if config.BridgeCallData == bridgeCallData {
			return config, true
		}
	}
	return coordinator.BridgeConfig{}, false
}

// SingleBridgeTxGas returns the bridge-cost share quoted into one bridge
// transaction's minimum fee.
func (r *StaticResolver) SingleBridgeTxGas(bridgeCallData rolluptx.BridgeCallData) uint64 {
	config, ok := r.bridgeConfig(bridgeCallData)
	if !ok || config.NumTxs == 0 {
		return 0
	}
	return config.Gas / uint64(config.NumTxs)
}

// FullBridgeGasFromContract returns the bridge's full fixed gas cost.
func (r *StaticResolver) FullBridgeGasFromContract(bridgeCallData rolluptx.BridgeCallData) uint64 {
	config, ok := r.bridgeConfig(bridgeCallData)
	if !ok {
		return 0
	}
	return config.Gas
}

// IsFeePayingAsset returns whether fees may be paid in the asset.
func (r *StaticResolver) IsFeePayingAsset(assetID uint32) bool {
	return r.feePayingAssets[assetID]
}

// MaxUnadjustedGas returns the largest per-transaction gas quote.
func (r *StaticResolver) MaxUnadjustedGas() uint64 {
	max := uint64(0)
	for _, gas := range defaultTxGas {
		if gas > max {
			max = gas
		}
	}
	return max
}

// MaxTxCallData returns the largest per-transaction calldata quote.
func (r *StaticResolver) MaxTxCallData() uint64 {
	max := uint64(0)
	for _, callData := range defaultTxCallData {
		if callData > max {
			max = callData
		}
	}
	return max
}
