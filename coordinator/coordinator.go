// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/rollupnet/rollupd/params"
	"github.com/rollupnet/rollupd/rolluptx"
)

// coordinatorState tracks which phase of a tick the coordinator is in.
type coordinatorState int32

const (
	// stateBuilding covers everything from selection through aggregation.
	stateBuilding coordinatorState = iota

	// statePublishing covers the settlement-layer publication call.
	statePublishing
)

func (s coordinatorState) String() string {
	switch s {
	case stateBuilding:
		return "BUILDING"
	case statePublishing:
		return "PUBLISHING"
	}
	return "UNKNOWN"
}

// Config houses the collaborators and parameters a Coordinator is constructed
// with.
type Config struct {
	// Params are the deployment parameters.
	Params *params.Params

	// FeeResolver quotes transaction and bridge costs.
	FeeResolver TxFeeResolver

	// Creator builds and proves inner rollups.
	Creator RollupCreator

	// Aggregator combines inner proofs into the outer proof.
	Aggregator RollupAggregator

	// Publisher submits aggregated rollups to the settlement layer.
	Publisher RollupPublisher

	// Metrics, if non-nil, records rollup profiles.  Failures are logged
	// and swallowed.
	Metrics MetricsReporter
}

// Coordinator assembles pending transactions into a batch under the
// deployment's resource constraints and decides when the batch is published.
//
// A Coordinator runs a single tick: the pipeline constructs a fresh one,
// calls ProcessPendingTxs once with a snapshot of the pending pool, and
// discards it.  Interrupt may be called concurrently from another goroutine;
// every other method is single-threaded.
type Coordinator struct {
	cfg        Config
	totalSlots int

	stateMtx    sync.Mutex
	state       coordinatorState
	interrupted int32

	selected             []*rolluptx.RollupTx
	consumed             RollupResources
	discardedCommitments map[[32]byte]struct{}
	bridgeQueues         map[rolluptx.BridgeCallData]*BridgeTxQueue
}

// New returns a Coordinator for a single tick.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Params == nil {
		return nil, errors.New("coordinator requires deployment params")
	}
	if cfg.FeeResolver == nil || cfg.Creator == nil || cfg.Aggregator == nil ||
		cfg.Publisher == nil {

		return nil, errors.New("coordinator requires all collaborators")
	}
	return &Coordinator{
		cfg:                  cfg,
		totalSlots:           cfg.Params.TotalSlots(),
		state:                stateBuilding,
		discardedCommitments: make(map[[32]byte]struct{}),
		bridgeQueues:         make(map[rolluptx.BridgeCallData]*BridgeTxQueue),
	}, nil
}

// Interrupt requests that the coordinator stop at its next checkpoint and
// asks the proving collaborators to tear down in-flight work.  Once the
// coordinator has moved past the publishing checkpoint the interrupt has no
// effect; if shouldThrowIfFailToStop is set an error is returned in that
// case.
func (c *Coordinator) Interrupt(shouldThrowIfFailToStop bool) error {
	c.stateMtx.Lock()
	defer c.stateMtx.Unlock()

	if c.state != stateBuilding {
		if shouldThrowIfFailToStop {
			return errors.Errorf("coordinator cannot be stopped in state %s", c.state)
		}
		return nil
	}
	atomic.StoreInt32(&c.interrupted, 1)
	c.cfg.Creator.Interrupt()
	c.cfg.Aggregator.Interrupt()
	return nil
}

// checkpoint checks the interrupt flag.  When it is set the current selection
// is abandoned and ErrInterrupted returned.
func (c *Coordinator) checkpoint() error {
	if atomic.LoadInt32(&c.interrupted) != 0 {
		c.selected = nil
		return ErrInterrupted
	}
	return nil
}

// setState transitions the coordinator's state.
func (c *Coordinator) setState(state coordinatorState) {
	c.stateMtx.Lock()
	defer c.stateMtx.Unlock()
	c.state = state
}

// ProcessPendingTxs runs one tick: select a batch from the pending snapshot,
// decide whether to publish it, and if so aggregate and publish.
//
// The returned profile describes the selection whether or not it was
// published.  ErrInterrupted is returned when an interrupt surfaced at a
// checkpoint.  Collaborator failures abandon the batch, are logged, and are
// not returned: the pending transactions are untouched and will be
// reconsidered on the next tick.
func (c *Coordinator) ProcessPendingTxs(pendingTxs []*rolluptx.RollupTx, flush bool,
	timeouts RollupTimeouts) (*RollupProfile, error) {

	log.Debugf("Considering %d pending transactions for the next rollup",
		len(pendingTxs))

	c.consumed = RollupResources{
		GasUsed: uint64(c.totalSlots) * c.cfg.FeeResolver.UnadjustedBaseVerificationGas(),
	}
	c.selectTxs(pendingTxs, flush, timeouts)

	// Checkpoint: selection complete.
	if err := c.checkpoint(); err != nil {
		return nil, err
	}

	if len(c.selected) > c.totalSlots {
		panic(AssertError("selected more transactions than rollup slots"))
	}
	if len(c.consumed.BridgeCallDatas) > params.NumBridgeCallsPerBlock {
		panic(AssertError("selected more bridges than bridge slots"))
	}
	if len(c.consumed.AssetIDs) > params.NumberOfAssets {
		panic(AssertError("selected more assets than asset slots"))
	}

	profile := c.buildProfile()
	publish := c.shouldPublish(profile, flush, timeouts)

	if c.cfg.Metrics != nil {
		if err := c.cfg.Metrics.RecordRollupProfile(profile); err != nil {
			log.Warnf("Failed to record rollup profile: %s", err)
		}
	}

	if !publish {
		logProfile(profile)
		return profile, nil
	}

	accepted, err := c.aggregateAndPublish(profile)
	if err != nil {
		if IsInterruptError(err) {
			return nil, err
		}
		log.Errorf("Failed to publish rollup, abandoning batch: %+v", err)
		logProfile(profile)
		return profile, nil
	}
	profile.Published = accepted
	logProfile(profile)
	return profile, nil
}

// selectTxs iterates the pre-sorted pending snapshot and admits transactions
// until the snapshot is exhausted or every slot is filled.
func (c *Coordinator) selectTxs(pendingTxs []*rolluptx.RollupTx, flush bool,
	timeouts RollupTimeouts) {

	// Claims convert settled bridge interactions back into spendable
	// notes, so they are favored: bring them to the front, preserving
	// submission order within each group.
	sorted := make([]*rolluptx.RollupTx, len(pendingTxs))
	copy(sorted, pendingTxs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TxType == rolluptx.TxTypeDefiClaim &&
			sorted[j].TxType != rolluptx.TxTypeDefiClaim
	})

	for _, tx := range sorted {
		if len(c.selected) == c.totalSlots {
			break
		}
		if tx.TxType == rolluptx.TxTypeAccount {
			c.processAccountTx(tx)
			continue
		}
		c.processTx(tx, flush, timeouts)
	}
}

// processAccountTx admits an account transaction when it fits.  Account
// transactions pay no fee and create no notes anyone chains to, so a misfit
// is skipped rather than discarded.
func (c *Coordinator) processAccountTx(tx *rolluptx.RollupTx) {
	gasDelta := c.txGasDelta(tx.FeeAssetID, tx.TxType)
	txCallData := c.cfg.FeeResolver.TxCallData(tx.TxType)
	if !c.fitsResources(gasDelta, txCallData) {
		log.Tracef("Skipping account tx %s: does not fit", tx.ID)
		return
	}
	c.consumed.GasUsed += gasDelta
	c.consumed.CallDataUsed += txCallData
	c.selected = append(c.selected, tx)
}

// processTx admits a fee-paying transaction, applying the asset-saturation
// and chain-on-discarded rules common to every non-account type before
// dispatching DeFi deposits to bridge admission.
func (c *Coordinator) processTx(tx *rolluptx.RollupTx, flush bool, timeouts RollupTimeouts) {
	assetID := tx.FeeAssetID
	if c.cfg.FeeResolver.IsFeePayingAsset(assetID) && !c.consumed.HasAsset(assetID) &&
		len(c.consumed.AssetIDs) == params.NumberOfAssets {

		c.discardTx(tx, "asset set saturated")
		return
	}
	if tx.HasBackwardLink() {
		if _, ok := c.discardedCommitments[tx.BackwardLink]; ok {
			c.discardTx(tx, "chains off a discarded transaction")
			return
		}
	}

	if tx.TxType == rolluptx.TxTypeDefiDeposit {
		c.processDefiTx(tx, flush, timeouts)
		return
	}

	gasDelta := c.txGasDelta(assetID, tx.TxType)
	txCallData := c.cfg.FeeResolver.TxCallData(tx.TxType)
	if !c.fitsResources(gasDelta, txCallData) {
		c.discardTx(tx, "does not fit remaining gas or calldata")
		return
	}
	c.consumed.GasUsed += gasDelta
	c.consumed.CallDataUsed += txCallData
	c.recordAsset(assetID)
	c.selected = append(c.selected, tx)
}

// processDefiTx decides a DeFi deposit's fate.  Deposits that cannot enter
// now are left in the pending pool untouched: unlike other types they stay
// valid for a later rollup once their bridge becomes viable.
func (c *Coordinator) processDefiTx(tx *rolluptx.RollupTx, flush bool, timeouts RollupTimeouts) {
	bridgeCallData := *tx.BridgeCallData

	// The bridge is already in the batch: only this transaction's own
	// resources are at stake.
	if c.consumed.HasBridge(bridgeCallData) {
		c.maybeSelectDefiTx(tx, false)
		return
	}

	if len(c.consumed.BridgeCallDatas) == params.NumBridgeCallsPerBlock {
		log.Tracef("Skipping defi tx %s: no bridge slot left", tx.ID)
		return
	}

	if flush {
		c.maybeSelectDefiTx(tx, true)
		return
	}

	queue := c.bridgeQueue(bridgeCallData, timeouts)
	if queue.TransactionHasTimedOut(tx) {
		c.maybeSelectDefiTx(tx, true)
		return
	}

	queue.AddTx(tx)
	txs, consumed := queue.TxsToRollup(c.totalSlots-len(c.selected),
		c.consumed.AssetIDs, params.NumberOfAssets,
		c.cfg.Params.MaxGasForRollup-c.consumed.GasUsed,
		c.cfg.Params.MaxCallDataForRollup-c.consumed.CallDataUsed)
	if len(txs) == 0 {
		return
	}
	log.Debugf("Bridge %d is viable, taking %d queued txs",
		bridgeCallData.BridgeAddressID, len(txs))
	c.selected = append(c.selected, txs...)
	c.consumed.GasUsed += consumed.GasUsed
	c.consumed.CallDataUsed += consumed.CallDataUsed
	for _, newAssetID := range consumed.AssetIDs {
		c.consumed.AddAsset(newAssetID)
	}
	c.consumed.AddBridge(bridgeCallData)
}

// maybeSelectDefiTx admits a single DeFi deposit subject to the resource
// check, charging the bridge's one-shot gas when the bridge is not yet in the
// batch.  A misfit leaves the transaction in the pending pool.
func (c *Coordinator) maybeSelectDefiTx(tx *rolluptx.RollupTx, chargeBridgeGas bool) {
	bridgeCallData := *tx.BridgeCallData
	gasDelta := c.txGasDelta(tx.FeeAssetID, tx.TxType)
	if chargeBridgeGas {
		gasDelta += c.cfg.FeeResolver.FullBridgeGasFromContract(bridgeCallData)
	}
	txCallData := c.cfg.FeeResolver.TxCallData(tx.TxType)
	if !c.fitsResources(gasDelta, txCallData) {
		log.Tracef("Leaving defi tx %s pending: does not fit", tx.ID)
		return
	}
	c.consumed.GasUsed += gasDelta
	c.consumed.CallDataUsed += txCallData
	c.recordAsset(tx.FeeAssetID)
	if chargeBridgeGas {
		c.consumed.AddBridge(bridgeCallData)
	}
	c.selected = append(c.selected, tx)
}

// bridgeQueue returns the tick's queue for the bridge, creating it with the
// bridge's deadline on first use.
func (c *Coordinator) bridgeQueue(bridgeCallData rolluptx.BridgeCallData,
	timeouts RollupTimeouts) *BridgeTxQueue {

	queue, ok := c.bridgeQueues[bridgeCallData]
	if ok {
		return queue
	}
	var timeout *Timeout
	if bridgeTimeout, ok := timeouts.BridgeTimeouts[bridgeCallData]; ok {
		timeout = &bridgeTimeout
	}
	queue = NewBridgeTxQueue(bridgeCallData, c.cfg.FeeResolver, timeout)
	c.bridgeQueues[bridgeCallData] = queue
	return queue
}

// txGasDelta returns the gas a transaction adds on top of its slot's already
// reserved base verification gas.
func (c *Coordinator) txGasDelta(assetID uint32, txType rolluptx.TxType) uint64 {
	return c.cfg.FeeResolver.UnadjustedTxGas(assetID, txType) -
		c.cfg.FeeResolver.UnadjustedBaseVerificationGas()
}

// fitsResources returns whether the given gas and calldata deltas keep the
// batch inside the rollup limits.
func (c *Coordinator) fitsResources(gasDelta, callDataDelta uint64) bool {
	return c.consumed.GasUsed+gasDelta <= c.cfg.Params.MaxGasForRollup &&
		c.consumed.CallDataUsed+callDataDelta <= c.cfg.Params.MaxCallDataForRollup
}

// recordAsset adds the fee asset to the batch's asset set if it pays fees and
// is not yet present.
func (c *Coordinator) recordAsset(assetID uint32) {
	if c.cfg.FeeResolver.IsFeePayingAsset(assetID) && !c.consumed.HasAsset(assetID) {
		c.consumed.AddAsset(assetID)
	}
}

// discardTx drops the transaction from consideration and poisons its note
// commitments so chained descendants are discarded as well.
func (c *Coordinator) discardTx(tx *rolluptx.RollupTx, reason string) {
	log.Tracef("Discarding tx %s: %s", tx.ID, reason)
	c.discardedCommitments[tx.NoteCommitment1] = struct{}{}
	c.discardedCommitments[tx.NoteCommitment2] = struct{}{}
}
