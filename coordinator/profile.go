// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"time"

	"github.com/rollupnet/rollupd/rolluptx"
)

// BridgeProfile summarizes one bridge's standing within a selected batch.
type BridgeProfile struct {
	// BridgeCallData identifies the bridge.
	BridgeCallData rolluptx.BridgeCallData

	// NumTxs is the number of the bridge's transactions in the batch.
	NumTxs int

	// GasAccrued is the gas the batch's transactions accrue toward the
	// bridge's fixed cost.
	GasAccrued uint64

	// BridgeGas is the bridge's full fixed cost.
	BridgeGas uint64

	// EarliestTx is the creation time of the oldest of the bridge's
	// transactions in the batch.
	EarliestTx time.Time
}

// RollupProfile summarizes a completed selection and the publish decision
// made on it.
type RollupProfile struct {
	// Published reports whether the batch was accepted by the settlement
	// layer.
	Published bool

	// TotalTxs is the number of selected transactions.
	TotalTxs int

	// RollupSize is the total number of transaction slots available.
	RollupSize int

	// TotalGas is the estimated Layer-1 gas of the batch, including
	// reserved verification gas for empty slots.
	TotalGas uint64

	// TotalCallData is the Layer-1 calldata of the batch in bytes.
	TotalCallData uint64

	// GasBalance is the gas-denominated fee surplus of the batch: fees
	// collected above cost.  A non-negative balance means the batch is
	// economically profitable on its own.
	GasBalance int64

	// NumTxsPerType counts the selected transactions by type.
	NumTxsPerType [rolluptx.NumTxTypes]int

	// InnerChains and OuterChains count backward links between selected
	// transactions that land in the same inner rollup and in different
	// inner rollups respectively.
	InnerChains int
	OuterChains int

	// EarliestNonDefiTx is the creation time of the oldest selected
	// non-DeFi-deposit transaction; the zero time when there is none.
	EarliestNonDefiTx time.Time

	// BridgeProfiles summarizes each admitted bridge, in admission order.
	BridgeProfiles []BridgeProfile
}

// buildProfile computes the profile of the current selection.
func (c *Coordinator) buildProfile() *RollupProfile {
	profile := &RollupProfile{
		TotalTxs:      len(c.selected),
		RollupSize:    c.totalSlots,
		TotalGas:      c.consumed.GasUsed,
		TotalCallData: c.consumed.CallDataUsed,
	}

	bridgeProfileIdx := make(map[rolluptx.BridgeCallData]int)
	for _, bridgeCallData := range c.consumed.BridgeCallDatas {
		bridgeProfileIdx[bridgeCallData] = len(profile.BridgeProfiles)
		profile.BridgeProfiles = append(profile.BridgeProfiles, BridgeProfile{
			BridgeCallData: bridgeCallData,
			BridgeGas:      c.cfg.FeeResolver.FullBridgeGasFromContract(bridgeCallData),
		})
	}

	var excessGas int64
	for _, tx := range c.selected {
		profile.NumTxsPerType[tx.TxType]++
		excessGas += tx.ExcessGas

		if tx.TxType == rolluptx.TxTypeDefiDeposit {
			idx, ok := bridgeProfileIdx[*tx.BridgeCallData]
			if !ok {
				panic(AssertError("selected DeFi transaction references an unadmitted bridge"))
			}
			bridgeProfile := &profile.BridgeProfiles[idx]
			contribution := c.cfg.FeeResolver.SingleBridgeTxGas(*tx.BridgeCallData)
			if tx.ExcessGas > 0 {
				contribution += uint64(tx.ExcessGas)
			}
			if contribution > bridgeProfile.BridgeGas {
				contribution = bridgeProfile.BridgeGas
			}
			bridgeProfile.GasAccrued += contribution
			if bridgeProfile.NumTxs == 0 || tx.Created.Before(bridgeProfile.EarliestTx) {
				bridgeProfile.EarliestTx = tx.Created
			}
			bridgeProfile.NumTxs++
		} else if profile.EarliestNonDefiTx.IsZero() || tx.Created.Before(profile.EarliestNonDefiTx) {
			profile.EarliestNonDefiTx = tx.Created
		}
	}

	// The balance is the surplus the senders paid above their minimums,
	// plus the bridge-cost shares quoted into DeFi minimums, less the
	// verification gas reserved for slots nothing pays for and the full
	// fixed cost of every admitted bridge.
	gasBalance := excessGas
	for _, tx := range c.selected {
		if tx.TxType == rolluptx.TxTypeDefiDeposit {
			gasBalance += int64(c.cfg.FeeResolver.SingleBridgeTxGas(*tx.BridgeCallData))
		}
	}
	emptySlots := c.totalSlots - len(c.selected)
	gasBalance -= int64(emptySlots) * int64(c.cfg.FeeResolver.UnadjustedBaseVerificationGas())
	for _, bridgeProfile := range profile.BridgeProfiles {
		gasBalance -= int64(bridgeProfile.BridgeGas)
	}
	profile.GasBalance = gasBalance

	profile.InnerChains, profile.OuterChains = c.countChains()
	return profile
}

// countChains counts backward links between selected transactions, split by
// whether the linked transactions land in the same inner rollup chunk.
func (c *Coordinator) countChains() (innerChains, outerChains int) {
	chunkSize := c.cfg.Params.NumInnerRollupTxs
	chunkByCommitment := make(map[[32]byte]int, len(c.selected)*2)
	for i, tx := range c.selected {
		chunkByCommitment[tx.NoteCommitment1] = i / chunkSize
		chunkByCommitment[tx.NoteCommitment2] = i / chunkSize
	}
	for i, tx := range c.selected {
		if !tx.HasBackwardLink() {
			continue
		}
		parentChunk, ok := chunkByCommitment[tx.BackwardLink]
		if !ok {
			continue
		}
		if parentChunk == i/chunkSize {
			innerChains++
		} else {
			outerChains++
		}
	}
	return innerChains, outerChains
}

// shouldPublish decides whether the selected batch is published now.  The
// batch goes out when publication is forced, when it is profitable on its
// own, when any selected transaction has crossed its deadline, or when the
// batch has no headroom left for another transaction.
func (c *Coordinator) shouldPublish(profile *RollupProfile, flush bool, timeouts RollupTimeouts) bool {
	if profile.TotalTxs == 0 {
		return false
	}
	if flush {
		log.Debugf("Publishing rollup: flush forced")
		return true
	}
	if profile.GasBalance >= 0 {
		log.Debugf("Publishing rollup: profitable (gas balance %d)", profile.GasBalance)
		return true
	}
	if timeouts.BaseTimeout != nil && !profile.EarliestNonDefiTx.IsZero() &&
		profile.EarliestNonDefiTx.Before(timeouts.BaseTimeout.Time) {

		log.Debugf("Publishing rollup: base deadline %s crossed",
			timeouts.BaseTimeout.Time)
		return true
	}
	for _, bridgeProfile := range profile.BridgeProfiles {
		timeout, ok := timeouts.BridgeTimeouts[bridgeProfile.BridgeCallData]
		if ok && bridgeProfile.EarliestTx.Before(timeout.Time) {
			log.Debugf("Publishing rollup: bridge %d deadline %s crossed",
				bridgeProfile.BridgeCallData.BridgeAddressID, timeout.Time)
			return true
		}
	}
	if c.cfg.Params.MaxGasForRollup-profile.TotalGas < c.cfg.FeeResolver.MaxUnadjustedGas() {
		log.Debugf("Publishing rollup: no gas headroom for another transaction")
		return true
	}
	if c.cfg.Params.MaxCallDataForRollup-profile.TotalCallData < c.cfg.FeeResolver.MaxTxCallData() {
		log.Debugf("Publishing rollup: no calldata headroom for another transaction")
		return true
	}
	if profile.TotalTxs == profile.RollupSize {
		log.Debugf("Publishing rollup: out of slots")
		return true
	}
	return false
}

// logProfile writes a human-readable summary of the selection to the
// coordinator log.
func logProfile(profile *RollupProfile) {
	log.Infof("Rollup profile: %d/%d txs, gas %d, calldata %d, gas balance %d, "+
		"%d bridges, published: %t", profile.TotalTxs, profile.RollupSize,
		profile.TotalGas, profile.TotalCallData, profile.GasBalance,
		len(profile.BridgeProfiles), profile.Published)
	for _, bridgeProfile := range profile.BridgeProfiles {
		log.Debugf("  bridge %d: %d txs, accrued %d/%d gas, earliest tx %s",
			bridgeProfile.BridgeCallData.BridgeAddressID, bridgeProfile.NumTxs,
			bridgeProfile.GasAccrued, bridgeProfile.BridgeGas,
			bridgeProfile.EarliestTx)
	}
}
