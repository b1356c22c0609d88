// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"github.com/rollupnet/rollupd/rolluptx"
)

// BridgeConfig describes the publication policy of a single DeFi bridge.
type BridgeConfig struct {
	// BridgeCallData identifies the bridge invocation this config applies
	// to.
	BridgeCallData rolluptx.BridgeCallData

	// NumTxs is the number of transactions the bridge's fixed cost is
	// quoted across when pricing a single bridge transaction.
	NumTxs uint32

	// Gas is the full Layer-1 gas cost of executing the bridge
	// interaction.
	Gas uint64

	// RollupFrequency expresses how often the bridge must be serviced, in
	// base publish intervals.  Bridges with a frequency below one are
	// excluded from deadline tracking and enter rollups on profitability
	// alone.
	RollupFrequency int32
}

// BridgeResolver yields the current bridge configuration set.
//
// The interface contract requires that all of these methods are safe for
// concurrent access.
type BridgeResolver interface {
	// BridgeConfigs returns the configuration of every known bridge.
	BridgeConfigs() []BridgeConfig

	// BridgeDescription returns a human-readable description of the given
	// bridge call, or false when none is registered.
	BridgeDescription(bridgeCallData rolluptx.BridgeCallData) (string, bool)
}

// TxFeeResolver quotes the gas and calldata cost of transactions and bridge
// interactions.  All gas figures are unadjusted Layer-1 gas.
type TxFeeResolver interface {
	// UnadjustedBaseVerificationGas returns the verification gas reserved
	// for every transaction slot of a rollup, filled or not.
	UnadjustedBaseVerificationGas() uint64

	// UnadjustedTxGas returns the full gas cost of a transaction of the
	// given type paying fees in the given asset, including the base
	// verification gas of its slot.
	UnadjustedTxGas(assetID uint32, txType rolluptx.TxType) uint64

	// TxCallData returns the Layer-1 calldata, in bytes, a transaction of
	// the given type occupies in a published rollup.
	TxCallData(txType rolluptx.TxType) uint64

	// SingleBridgeTxGas returns the portion of a bridge's fixed cost
	// quoted into the minimum fee of one of its transactions.
	SingleBridgeTxGas(bridgeCallData rolluptx.BridgeCallData) uint64

	// FullBridgeGasFromContract returns the bridge's full fixed Layer-1
	// gas cost as configured on the settlement contract.
	FullBridgeGasFromContract(bridgeCallData rolluptx.BridgeCallData) uint64

	// IsFeePayingAsset returns whether fees may be paid in the given
	// asset.  Only fee-paying assets occupy a slot in the rollup's asset
	// vector.
	IsFeePayingAsset(assetID uint32) bool

	// MaxUnadjustedGas returns the largest gas cost any single
	// transaction can have.
	MaxUnadjustedGas() uint64

	// MaxTxCallData returns the largest calldata cost any single
	// transaction can have.
	MaxTxCallData() uint64
}

// CircuitInput is the witness data of a single inner rollup circuit.  The
// coordinator treats it as opaque and only moves it between the creation and
// proving steps.
type CircuitInput struct {
	Data []byte
}

// InnerProof is a proof of a single inner rollup.
type InnerProof struct {
	Data []byte
}

// RollupCreator builds inner rollup circuits and proves them.
//
// CreateRollup mutates the shared Merkle world-state and must therefore never
// be called concurrently; Create is a pure function of its inputs and may run
// in parallel.
type RollupCreator interface {
	// CreateRollup builds the circuit input for one inner rollup from a
	// chunk of transactions.
	CreateRollup(txs []*rolluptx.RollupTx, bridgeCallDatas []rolluptx.BridgeCallData,
		assetIDs []uint32, isFirst bool) (*CircuitInput, error)

	// Create produces the inner proof for a previously built circuit
	// input.
	Create(txs []*rolluptx.RollupTx, circuitInput *CircuitInput) (*InnerProof, error)

	// Interrupt tears down in-flight proof construction.
	Interrupt()
}

// RollupAggregator aggregates inner proofs into the outer proof published on
// the settlement layer.
type RollupAggregator interface {
	// AggregateRollupProofs combines the inner proofs into a publishable
	// rollup.  The bridge-call-data vector is right-padded with zeros to
	// the deployment's bridge-slot count.
	AggregateRollupProofs(innerProofs []*InnerProof, paddedBridgeCallDatas []rolluptx.BridgeCallData,
		assetIDs []uint32) (*rolluptx.Rollup, error)

	// Interrupt tears down in-flight aggregation.
	Interrupt()
}

// RollupPublisher submits an aggregated rollup to the settlement layer.
type RollupPublisher interface {
	// PublishRollup publishes the rollup and returns whether the
	// settlement layer accepted it.
	PublishRollup(rollup *rolluptx.Rollup, estimatedGas uint64) (bool, error)
}

// MetricsReporter records rollup profiles for monitoring.  Reporting failures
// never affect the publication outcome.
type MetricsReporter interface {
	// RecordRollupProfile records the profile of a completed selection.
	RecordRollupProfile(profile *RollupProfile) error
}
