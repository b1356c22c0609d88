// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"time"
)

const (
	// NumBridgeCallsPerBlock is the fixed number of bridge-call-data slots
	// in a published rollup.  The on-chain verifier expects exactly this
	// many entries, so the published vector is right-padded with zeros.
	NumBridgeCallsPerBlock = 32

	// NumberOfAssets is the fixed number of distinct fee-paying asset ids
	// a single rollup may reference.
	NumberOfAssets = 16
)

// Params defines the deployment-wide parameters the coordinator is constructed
// with.  Unlike most other configuration these never change for the lifetime
// of a deployment - the on-chain verification keys are generated from them.
type Params struct {
	// NumInnerRollupTxs is the number of transactions carried by a single
	// inner rollup proof.
	NumInnerRollupTxs int

	// NumOuterRollupProofs is the number of inner proofs aggregated into
	// the outer proof published on the settlement layer.
	NumOuterRollupProofs int

	// MaxGasForRollup is the Layer-1 gas limit for the settlement
	// transaction carrying a published rollup.
	MaxGasForRollup uint64

	// MaxCallDataForRollup is the Layer-1 calldata budget, in bytes, for a
	// published rollup.
	MaxCallDataForRollup uint64

	// PublishInterval is the base publish interval.  A rollup containing
	// any non-DeFi-deposit transaction older than the last interval
	// boundary is published regardless of profitability; DeFi deposits
	// are held to their bridge's deadline instead.  Intervals below one
	// second disable deadline tracking altogether.
	PublishInterval time.Duration
}

// TotalSlots returns the total number of transaction slots in a published
// rollup.
func (p *Params) TotalSlots() int {
	return p.NumInnerRollupTxs * p.NumOuterRollupProofs
}

// MainnetParams defines the deployment parameters for the production
// settlement contract.
var MainnetParams = Params{
	NumInnerRollupTxs:    28,
	NumOuterRollupProofs: 32,
	MaxGasForRollup:      12000000,
	MaxCallDataForRollup: 120000,
	PublishInterval:      4 * time.Hour,
}

// DevnetParams defines small-shape parameters used by the development
// network, where proving time matters more than amortization.
var DevnetParams = Params{
	NumInnerRollupTxs:    3,
	NumOuterRollupProofs: 2,
	MaxGasForRollup:      12000000,
	MaxCallDataForRollup: 120000,
	PublishInterval:      10 * time.Second,
}
