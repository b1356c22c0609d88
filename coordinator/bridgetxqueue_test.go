// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"testing"
	"time"
)

func TestBridgeTxQueueProfitability(t *testing.T) {
	// A 1,000,000-gas bridge accrues 200,000 excess per transaction: the
	// queue must hold until the fifth transaction arrives, then release
	// all five at once.
	bridge := testBridge(1)
	feeResolver := newFakeFeeResolver()
	feeResolver.fullBridgeGas[bridge] = 1000000
	queue := NewBridgeTxQueue(bridge, feeResolver, nil)

	created := time.Date(2021, 11, 11, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		queue.AddTx(newTestDefiTx(bridge, created, 200000))
		txs, _ := queue.TxsToRollup(10, nil, 4, 10000000, 100000)
		if len(txs) != 0 {
			t.Fatalf("TestBridgeTxQueueProfitability: released %d txs after %d adds, want 0",
				len(txs), i+1)
		}
	}
	if queue.GasAccrued() != 800000 {
		t.Fatalf("TestBridgeTxQueueProfitability: accrued %d gas after 4 adds, want 800000",
			queue.GasAccrued())
	}

	queue.AddTx(newTestDefiTx(bridge, created, 200000))
	txs, consumed := queue.TxsToRollup(10, nil, 4, 10000000, 100000)
	if len(txs) != 5 {
		t.Fatalf("TestBridgeTxQueueProfitability: released %d txs, want 5", len(txs))
	}
	// The bridge's one-shot gas is charged once, with the first
	// transaction: 5 per-tx deltas of 1000 plus 1,000,000 bridge gas.
	if consumed.GasUsed != 5*1000+1000000 {
		t.Errorf("TestBridgeTxQueueProfitability: consumed %d gas, want %d",
			consumed.GasUsed, 5*1000+1000000)
	}
	if consumed.CallDataUsed != 5*100 {
		t.Errorf("TestBridgeTxQueueProfitability: consumed %d calldata, want %d",
			consumed.CallDataUsed, 5*100)
	}
	if queue.Len() != 0 {
		t.Errorf("TestBridgeTxQueueProfitability: %d txs left queued, want 0", queue.Len())
	}
}

func TestBridgeTxQueueDeadline(t *testing.T) {
	// An unprofitable queue releases once its head predates the bridge
	// deadline.
	bridge := testBridge(1)
	feeResolver := newFakeFeeResolver()
	feeResolver.fullBridgeGas[bridge] = 1000000

	deadline := time.Date(2021, 11, 11, 10, 0, 0, 0, time.UTC)
	queue := NewBridgeTxQueue(bridge, feeResolver, &Timeout{Time: deadline, RollupNumber: 10})

	afterDeadline := newTestDefiTx(bridge, deadline.Add(time.Minute), 0)
	queue.AddTx(afterDeadline)
	if txs, _ := queue.TxsToRollup(10, nil, 4, 10000000, 100000); len(txs) != 0 {
		t.Fatalf("TestBridgeTxQueueDeadline: released %d txs with an undeadlined head, want 0",
			len(txs))
	}

	queue = NewBridgeTxQueue(bridge, feeResolver, &Timeout{Time: deadline, RollupNumber: 10})
	beforeDeadline := newTestDefiTx(bridge, deadline.Add(-time.Minute), 0)
	queue.AddTx(beforeDeadline)
	queue.AddTx(afterDeadline)
	txs, _ := queue.TxsToRollup(10, nil, 4, 10000000, 100000)
	// Once the head is deadlined the whole queue rides along, in
	// insertion order.
	if len(txs) != 2 {
		t.Fatalf("TestBridgeTxQueueDeadline: released %d txs, want 2", len(txs))
	}
	if txs[0] != beforeDeadline || txs[1] != afterDeadline {
		t.Error("TestBridgeTxQueueDeadline: released txs out of insertion order")
	}
}

func TestBridgeTxQueueResourceLimits(t *testing.T) {
	bridge := testBridge(1)
	created := time.Date(2021, 11, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		slotsRemaining int
		currentAssets  []uint32
		maxAssets      int
		gasRemaining   uint64
		callDataLeft   uint64
		numQueued      int
		wantTaken      int
	}{
		{
			name:           "slots cap the take",
			slotsRemaining: 2,
			maxAssets:      4,
			gasRemaining:   10000000,
			callDataLeft:   100000,
			numQueued:      5,
			wantTaken:      2,
		},
		{
			name:           "gas runs out mid-queue",
			slotsRemaining: 10,
			maxAssets:      4,
			gasRemaining:   1000 + 1000 + 1000, // bridge gas is 1000 in this test
			callDataLeft:   100000,
			numQueued:      5,
			wantTaken:      2,
		},
		{
			name:           "calldata runs out mid-queue",
			slotsRemaining: 10,
			maxAssets:      4,
			gasRemaining:   10000000,
			callDataLeft:   250,
			numQueued:      5,
			wantTaken:      2,
		},
		{
			name:           "asset set saturated",
			slotsRemaining: 10,
			currentAssets:  []uint32{1, 2},
			maxAssets:      2,
			gasRemaining:   10000000,
			callDataLeft:   100000,
			numQueued:      3,
			wantTaken:      0,
		},
	}

	for _, test := range tests {
		feeResolver := newFakeFeeResolver()
		feeResolver.fullBridgeGas[bridge] = 1000
		queue := NewBridgeTxQueue(bridge, feeResolver, nil)
		for i := 0; i < test.numQueued; i++ {
			queue.AddTx(newTestDefiTx(bridge, created, 1000))
		}
		txs, _ := queue.TxsToRollup(test.slotsRemaining, test.currentAssets,
			test.maxAssets, test.gasRemaining, test.callDataLeft)
		if len(txs) != test.wantTaken {
			t.Errorf("TestBridgeTxQueueResourceLimits (%s): took %d txs, want %d",
				test.name, len(txs), test.wantTaken)
		}
	}
}

func TestBridgeTxQueueContributionClamp(t *testing.T) {
	// A single over-payer cannot accrue more than the full bridge gas.
	bridge := testBridge(1)
	feeResolver := newFakeFeeResolver()
	feeResolver.fullBridgeGas[bridge] = 500000
	queue := NewBridgeTxQueue(bridge, feeResolver, nil)

	queue.AddTx(newTestDefiTx(bridge, time.Date(2021, 11, 11, 9, 0, 0, 0, time.UTC), 10000000))
	if queue.GasAccrued() != 500000 {
		t.Errorf("TestBridgeTxQueueContributionClamp: accrued %d, want 500000",
			queue.GasAccrued())
	}
}
