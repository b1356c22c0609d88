// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"github.com/rollupnet/rollupd/rolluptx"
)

// BridgeTxQueue holds the pending DeFi deposits of a single bridge until
// their accumulated fees cover the bridge's fixed cost, or until the queue
// head crosses the bridge's publish deadline.
//
// Queues are rebuilt from the freshly read pending pool on every coordinator
// tick; they are not durable state.
type BridgeTxQueue struct {
	bridgeCallData rolluptx.BridgeCallData
	feeResolver    TxFeeResolver
	timeout        *Timeout

	txs        []*rolluptx.RollupTx
	gasAccrued uint64
}

// NewBridgeTxQueue returns an empty queue for the given bridge call.  The
// timeout is the bridge's deadline from the current rollup timeouts, or nil
// when the bridge is not frequency-tracked.
func NewBridgeTxQueue(bridgeCallData rolluptx.BridgeCallData, feeResolver TxFeeResolver,
	timeout *Timeout) *BridgeTxQueue {

	return &BridgeTxQueue{
		bridgeCallData: bridgeCallData,
		feeResolver:    feeResolver,
		timeout:        timeout,
	}
}

// contribution returns the gas the transaction accrues toward the bridge's
// fixed cost: the quoted per-transaction share plus the excess the sender
// paid above their minimum, clamped at the full bridge gas so a single
// over-payer cannot skew the accrual past what the bridge can consume.
func (q *BridgeTxQueue) contribution(tx *rolluptx.RollupTx) uint64 {
	bridgeGas := q.feeResolver.FullBridgeGasFromContract(q.bridgeCallData)
	contribution := q.feeResolver.SingleBridgeTxGas(q.bridgeCallData)
	if tx.ExcessGas > 0 {
		contribution += uint64(tx.ExcessGas)
	}
	if contribution > bridgeGas {
		contribution = bridgeGas
	}
	return contribution
}

// AddTx appends the transaction to the queue and accrues its gas
// contribution.
func (q *BridgeTxQueue) AddTx(tx *rolluptx.RollupTx) {
	q.txs = append(q.txs, tx)
	q.gasAccrued += q.contribution(tx)
}

// Len returns the number of queued transactions.
func (q *BridgeTxQueue) Len() int {
	return len(q.txs)
}

// GasAccrued returns the gas accrued toward the bridge's fixed cost.
func (q *BridgeTxQueue) GasAccrued() uint64 {
	return q.gasAccrued
}

// TransactionHasTimedOut returns whether the transaction was created before
// the bridge's deadline and must therefore be serviced now.
func (q *BridgeTxQueue) TransactionHasTimedOut(tx *rolluptx.RollupTx) bool {
	return q.timeout != nil && tx.Created.Before(q.timeout.Time)
}

// TxsToRollup decides which queued transactions may enter the current batch.
//
// The bridge may enter at all only when it is profitable (accrued gas covers
// the full bridge gas) or its queue head has timed out.  When it may, queued
// transactions are taken greedily in insertion order while each candidate
// fits in the remaining slots, would not push the asset set past maxAssets,
// and keeps the remaining gas and calldata non-negative; the bridge's
// one-shot gas is charged once with the first taken transaction.  The take
// stops at the first candidate that does not fit.
//
// currentAssetIDs is not mutated; assets newly referenced by the taken
// transactions are reported in the returned resources.
func (q *BridgeTxQueue) TxsToRollup(slotsRemaining int, currentAssetIDs []uint32,
	maxAssets int, gasRemaining uint64, callDataRemaining uint64) ([]*rolluptx.RollupTx, RollupResources) {

	var consumed RollupResources
	if len(q.txs) == 0 {
		return nil, consumed
	}

	bridgeGas := q.feeResolver.FullBridgeGasFromContract(q.bridgeCallData)
	profitable := q.gasAccrued >= bridgeGas
	deadlined := q.TransactionHasTimedOut(q.txs[0])
	if !profitable && !deadlined {
		return nil, consumed
	}

	hasAsset := func(assetID uint32) bool {
		for _, existing := range currentAssetIDs {
			if existing == assetID {
				return true
			}
		}
		return consumed.HasAsset(assetID)
	}

	numTaken := 0
	for _, tx := range q.txs {
		if numTaken == slotsRemaining {
			break
		}

		txGas := q.feeResolver.UnadjustedTxGas(tx.FeeAssetID, rolluptx.TxTypeDefiDeposit) -
			q.feeResolver.UnadjustedBaseVerificationGas()
		if numTaken == 0 {
			// The bridge's fixed gas is paid once, with the first
			// transaction that brings the bridge into the batch.
			txGas += bridgeGas
		}
		txCallData := q.feeResolver.TxCallData(rolluptx.TxTypeDefiDeposit)

		newAsset := q.feeResolver.IsFeePayingAsset(tx.FeeAssetID) && !hasAsset(tx.FeeAssetID)
		if newAsset && len(currentAssetIDs)+len(consumed.AssetIDs) == maxAssets {
			break
		}
		if consumed.GasUsed+txGas > gasRemaining {
			break
		}
		if consumed.CallDataUsed+txCallData > callDataRemaining {
			break
		}

		consumed.GasUsed += txGas
		consumed.CallDataUsed += txCallData
		if newAsset {
			consumed.AddAsset(tx.FeeAssetID)
		}
		numTaken++
	}

	if numTaken == 0 {
		return nil, RollupResources{}
	}

	taken := q.txs[:numTaken]
	q.txs = q.txs[numTaken:]
	for _, tx := range taken {
		contribution := q.contribution(tx)
		if contribution > q.gasAccrued {
			q.gasAccrued = 0
		} else {
			q.gasAccrued -= contribution
		}
	}
	return taken, consumed
}
